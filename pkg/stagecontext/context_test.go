package stagecontext

import (
	"context"
	"testing"
	"time"
)

func TestStageBegin(t *testing.T) {
	ctx, cancel := StageBegin(context.Background(), "user-1", "summarizing", time.Minute)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected deadline")
	}

	meta := GetStageMetadata(ctx)
	if meta.SessionID != "user-1" || meta.Stage != "summarizing" || meta.StartTime.IsZero() {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	fields := Fields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	for _, f := range fields {
		if f.Key == "session_id" {
			t.Fatalf("session_id belongs to the session logger, not stage fields")
		}
	}
}

func TestStageBegin_NoTimeout(t *testing.T) {
	ctx, cancel := StageBegin(context.Background(), "user-1", "uploading", 0)
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("unexpected deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatalf("cancel did not propagate")
	}
}
