package stagecontext

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type KeyContext string

var (
	keySessionID      KeyContext = "session_id"
	keyStage          KeyContext = "stage"
	keyStageStartTime KeyContext = "stage_start_time"
)

// StageMetadata holds metadata for one pipeline stage execution
type StageMetadata struct {
	SessionID string
	Stage     string
	StartTime time.Time
}

// StageBegin derives a stage context carrying session metadata.
// A non-positive timeout leaves the parent's deadline in place.
func StageBegin(parentCtx context.Context, sessionID, stage string, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keySessionID, sessionID)
	ctx = context.WithValue(ctx, keyStage, stage)
	ctx = context.WithValue(ctx, keyStageStartTime, time.Now())

	return ctx, cancel
}

// GetSessionID extracts the session ID from context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keySessionID).(string)
	return id, ok
}

// GetStage extracts the stage name from context
func GetStage(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(keyStage).(string)
	return stage, ok
}

// GetStageStartTime extracts the stage start time from context
func GetStageStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStageStartTime).(time.Time)
	return startTime, ok
}

// GetStageMetadata extracts all stage metadata from context
func GetStageMetadata(ctx context.Context) *StageMetadata {
	sessionID, _ := GetSessionID(ctx)
	stage, _ := GetStage(ctx)
	startTime, _ := GetStageStartTime(ctx)

	return &StageMetadata{
		SessionID: sessionID,
		Stage:     stage,
		StartTime: startTime,
	}
}

// Fields returns the stage name and elapsed time as zap fields. session_id is left to the
// caller's logger.
func Fields(ctx context.Context) []zap.Field {
	meta := GetStageMetadata(ctx)
	fields := []zap.Field{
		zap.String("stage", meta.Stage),
	}
	if !meta.StartTime.IsZero() {
		fields = append(fields, zap.Duration("elapsed", time.Since(meta.StartTime)))
	}
	return fields
}
