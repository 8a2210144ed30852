package pipeline

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/domain/repositories"
	"github.com/johnquangdev/minutes360/pkg/ai"
	"github.com/johnquangdev/minutes360/pkg/stagecontext"
)

// Transcriber turns an uploaded media file into text
type Transcriber interface {
	Transcribe(ctx context.Context, file *entities.UploadedFile, progress ai.ProgressFunc) (*ai.TranscriptionResult, error)
}

// Summarizer produces summary sections and action items from text
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (entities.SummarySections, error)
	ExtractTasks(ctx context.Context, text string) ([]entities.Task, error)
}

// BoardClient is the task-board API used at the publish stage
type BoardClient interface {
	ListBoards(ctx context.Context) ([]entities.Board, error)
	ListLists(ctx context.Context, boardID string) ([]entities.List, error)
	ListMembers(ctx context.Context, boardID string) ([]entities.Member, error)
	CreateCard(ctx context.Context, card entities.CardRequest) (*entities.Card, error)
	CreateChecklist(ctx context.Context, cardID, name string) (*entities.Checklist, error)
	AddCheckItem(ctx context.Context, checklistID, name string) (*entities.CheckItem, error)
}

// CredentialStore holds the task-board credentials of the session
type CredentialStore interface {
	Get() entities.Credentials
	Set(apiKey, token string) entities.Credentials
	Masked() entities.Credentials
}

// Timeouts bound the remote calls of the non-cancellable stages
type Timeouts struct {
	Summarize    time.Duration
	ExtractTasks time.Duration
	Publish      time.Duration
}

// Dependencies groups the collaborators of an Orchestrator
type Dependencies struct {
	Transcriber Transcriber
	Summarizer  Summarizer
	Boards      BoardClient
	Credentials CredentialStore
	History     repositories.HistoryRepository
	Timeouts    Timeouts
	Logger      *zap.Logger
}

// Orchestrator drives one session through upload, transcription, summary, task
// extraction and publishing. At most one stage operation runs at a time.
type Orchestrator struct {
	id          string
	transcriber Transcriber
	summarizer  Summarizer
	boards      BoardClient
	creds       CredentialStore
	history     repositories.HistoryRepository
	timeouts    Timeouts
	logger      *zap.Logger

	mu           sync.Mutex
	stage        entities.Stage
	progress     int
	uploadStatus entities.UploadStatus
	lastError    string
	lastActivity time.Time

	file            *entities.UploadedFile
	attempt         int
	cancelUpload    context.CancelFunc
	cancelRequested bool

	transcript *entities.Transcript
	summary    *entities.Summary
	tasks      []entities.Task
	keywords   []string
	lastCard   *entities.Card

	boardCache    []entities.Board
	selectedBoard string
	lists         map[string][]entities.List
	members       map[string][]entities.Member
}

// NewOrchestrator creates an idle pipeline for the given session
func NewOrchestrator(sessionID string, deps Dependencies) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		id:           sessionID,
		transcriber:  deps.Transcriber,
		summarizer:   deps.Summarizer,
		boards:       deps.Boards,
		creds:        deps.Credentials,
		history:      deps.History,
		timeouts:     deps.Timeouts,
		logger:       logger.With(zap.String("session_id", sessionID)),
		stage:        entities.StageIdle,
		uploadStatus: entities.UploadStatusNone,
		lastActivity: time.Now(),
		lists:        make(map[string][]entities.List),
		members:      make(map[string][]entities.Member),
	}
}

// ID returns the session identifier
func (o *Orchestrator) ID() string {
	return o.id
}

// Stage returns the current stage
func (o *Orchestrator) Stage() entities.Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// Progress returns the upload progress percentage
func (o *Orchestrator) Progress() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// LastActivity returns when the session was last used
func (o *Orchestrator) LastActivity() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActivity
}

// IsBusy reports whether a stage operation is in flight
func (o *Orchestrator) IsBusy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage.IsBusy()
}

// enter moves the session into a busy stage after check passes; mu must not be held.
// It returns the stage to restore when the operation fails.
func (o *Orchestrator) enter(busy entities.Stage, check func() error) (entities.Stage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastActivity = time.Now()
	if o.stage.IsBusy() {
		return "", errors.ErrPrecondition(fmt.Sprintf("cannot start %s while %s is in progress", busy, o.stage))
	}
	if check != nil {
		if err := check(); err != nil {
			return "", err
		}
	}

	prev := o.stage
	o.stage = busy
	o.lastError = ""
	return prev, nil
}

// fail restores prev and records the error message; mu must be held
func (o *Orchestrator) fail(prev entities.Stage, err error) {
	o.stage = prev
	o.lastError = errorMessage(err)
}

// errorMessage is the user-facing text of err, with the upstream body when there is one
func errorMessage(err error) string {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		return err.Error()
	}
	if remote, ok := errors.AsRemote(err); ok && remote.UpstreamBody != "" {
		return fmt.Sprintf("%s: %s", appErr.Message, remote.UpstreamBody)
	}
	return appErr.Message
}

// SubmitFile uploads file for transcription. The file is kept until a transcript is obtained
// so RetryUpload can resend it.
func (o *Orchestrator) SubmitFile(ctx context.Context, file *entities.UploadedFile) (*entities.Transcript, error) {
	if file == nil {
		return nil, errors.ErrValidation("please select a file to upload")
	}
	if len(file.Data) == 0 {
		return nil, errors.ErrValidation("selected file is empty")
	}

	uploadCtx, cancel := stagecontext.StageBegin(ctx, o.id, string(entities.StageUploading), 0)
	defer cancel()

	var attempt int
	prev, err := o.enter(entities.StageUploading, func() error {
		o.attempt++
		attempt = o.attempt
		o.file = file
		o.progress = 0
		o.uploadStatus = entities.UploadStatusUploading
		o.cancelUpload = cancel
		o.cancelRequested = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("📤 Upload started", append(stagecontext.Fields(uploadCtx), zap.String("file_name", file.Name))...)

	result, err := o.transcriber.Transcribe(uploadCtx, file, func(sent, total int64) {
		o.reportProgress(attempt, sent, total)
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelUpload = nil
	o.lastActivity = time.Now()

	// an acknowledged cancel wins even when the transcriber already returned
	if o.cancelRequested || (err != nil && stdErrors.Is(err, context.Canceled)) {
		o.progress = 0
		o.uploadStatus = entities.UploadStatusCancelled
		cancelled := errors.ErrCancelled(err)
		o.fail(prev, cancelled)
		o.logger.Info("Upload cancelled", stagecontext.Fields(uploadCtx)...)
		return nil, cancelled
	}

	if err != nil {
		o.uploadStatus = entities.UploadStatusFailed
		uploadErr := errors.ErrUpload(err)
		o.fail(prev, uploadErr)
		o.logger.Error("❌ Upload failed", append(stagecontext.Fields(uploadCtx), zap.Error(err))...)
		return nil, uploadErr
	}

	o.transcript = entities.NewTranscript(result.Text, file.Name, result.DurationSeconds)
	o.summary = nil
	o.tasks = nil
	o.keywords = nil
	o.lastCard = nil
	o.file = nil
	o.progress = 100
	o.uploadStatus = entities.UploadStatusSucceeded
	o.stage = entities.StageTranscribed

	o.logger.Info("✅ Transcript received", append(stagecontext.Fields(uploadCtx),
		zap.String("file_name", file.Name),
		zap.Int("text_length", len(result.Text)),
	)...)
	return o.transcript.Clone(), nil
}

// RetryUpload resubmits the file of the last failed or cancelled upload
func (o *Orchestrator) RetryUpload(ctx context.Context) (*entities.Transcript, error) {
	o.mu.Lock()
	file := o.file
	busy := o.stage.IsBusy()
	o.mu.Unlock()

	if busy {
		return nil, errors.ErrPrecondition("an operation is already in progress")
	}
	if file == nil {
		return nil, errors.ErrPrecondition("no file to retry, please select a file")
	}
	return o.SubmitFile(ctx, file)
}

// Cancel aborts the in-flight upload. It returns false when no upload is running.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancelUpload == nil || o.stage != entities.StageUploading {
		return false
	}
	o.cancelRequested = true
	o.progress = 0
	o.cancelUpload()
	return true
}

func (o *Orchestrator) reportProgress(attempt int, sent, total int64) {
	if total <= 0 {
		return
	}
	pct := int(sent * 100 / total)
	if pct > 100 {
		pct = 100
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if attempt != o.attempt || o.stage != entities.StageUploading || o.cancelRequested {
		return
	}
	if pct > o.progress {
		o.progress = pct
	}
}
