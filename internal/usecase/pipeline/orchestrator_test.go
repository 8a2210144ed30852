package pipeline

import (
	"context"
	stdErrors "errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/adapter/repository"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/credential"
	"github.com/johnquangdev/minutes360/pkg/ai"
)

type fakeTranscriber struct {
	mu      sync.Mutex
	calls   int
	text    string
	err     error
	started chan struct{}
	block   bool
	// release, when set, holds the call until closed and ignores ctx
	release chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, file *entities.UploadedFile, progress ai.ProgressFunc) (*ai.TranscriptionResult, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()

	total := file.Size()
	progress(total/2, total)

	if f.block {
		if f.started != nil {
			close(f.started)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.release != nil {
		if f.started != nil {
			close(f.started)
		}
		<-f.release
	}
	if err != nil {
		return nil, err
	}
	progress(total, total)
	d := 125.0
	return &ai.TranscriptionResult{Text: f.text, DurationSeconds: &d}, nil
}

type fakeSummarizer struct {
	mu        sync.Mutex
	sections  entities.SummarySections
	sumErr    error
	tasks     []entities.Task
	taskErr   error
	taskInput string
	sumCalls  int
	gate      chan struct{}
	entered   chan struct{}
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (entities.SummarySections, error) {
	f.mu.Lock()
	f.sumCalls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.sections, f.sumErr
}

func (f *fakeSummarizer) ExtractTasks(ctx context.Context, text string) ([]entities.Task, error) {
	f.mu.Lock()
	f.taskInput = text
	f.mu.Unlock()
	return f.tasks, f.taskErr
}

type fakeBoards struct {
	mu         sync.Mutex
	cards      []entities.CardRequest
	lists      []entities.List
	err        error
	checklists []string
	items      []string
	itemErr    error
}

func (f *fakeBoards) ListBoards(ctx context.Context) ([]entities.Board, error) {
	return []entities.Board{{ID: "b1", Name: "Team"}}, nil
}

func (f *fakeBoards) ListLists(ctx context.Context, boardID string) ([]entities.List, error) {
	return f.lists, nil
}

func (f *fakeBoards) ListMembers(ctx context.Context, boardID string) ([]entities.Member, error) {
	return []entities.Member{{ID: "m1", FullName: "Ann Lee"}}, nil
}

func (f *fakeBoards) CreateCard(ctx context.Context, card entities.CardRequest) (*entities.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards = append(f.cards, card)
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Card{ID: "c1", Name: card.Name, Description: card.Description, ListID: card.ListID}, nil
}

func (f *fakeBoards) CreateChecklist(ctx context.Context, cardID, name string) (*entities.Checklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checklists = append(f.checklists, cardID+"/"+name)
	return &entities.Checklist{ID: "cl1", Name: name, CardID: cardID}, nil
}

func (f *fakeBoards) AddCheckItem(ctx context.Context, checklistID, name string) (*entities.CheckItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemErr != nil && len(f.items) > 0 {
		return nil, f.itemErr
	}
	f.items = append(f.items, name)
	return &entities.CheckItem{ID: fmt.Sprintf("i%d", len(f.items)), Name: name, State: "incomplete"}, nil
}

type harness struct {
	o           *Orchestrator
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	boards      *fakeBoards
	creds       *credential.Store
	history     *repository.HistoryRepository
}

func newHarness(apiKey, token string) *harness {
	h := &harness{
		transcriber: &fakeTranscriber{text: "we agreed on the budget"},
		summarizer: &fakeSummarizer{sections: entities.SummarySections{
			KeyDiscussionPoints: "Budget budget timeline",
			DecisionsMade:       "Ship on Friday",
			ActionItems:         "Ann writes release notes",
			PendingQuestions:    "Hiring plan",
		}},
		boards:  &fakeBoards{lists: []entities.List{{ID: "l1", Name: "To Do", BoardID: "b1"}}},
		creds:   credential.NewStore(apiKey, token),
		history: repository.NewHistoryRepository(),
	}
	h.o = NewOrchestrator("user-1", Dependencies{
		Transcriber: h.transcriber,
		Summarizer:  h.summarizer,
		Boards:      h.boards,
		Credentials: h.creds,
		History:     h.history,
		Timeouts:    Timeouts{Summarize: time.Second, ExtractTasks: time.Second, Publish: time.Second},
	})
	return h
}

func testFile() *entities.UploadedFile {
	return &entities.UploadedFile{Name: "standup.mp3", Data: make([]byte, 1000), MimeType: "audio/mpeg"}
}

func isCode(err error, code errors.ErrorCode) bool {
	return stdErrors.Is(err, errors.Kind(code))
}

// toSummarized runs upload and summarize
func (h *harness) toSummarized(t *testing.T) {
	t.Helper()
	if _, err := h.o.SubmitFile(context.Background(), testFile()); err != nil {
		t.Fatalf("SubmitFile: %v", err)
	}
	if _, err := h.o.Summarize(context.Background()); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
}

func TestSubmitFile_NilFile(t *testing.T) {
	h := newHarness("", "")
	_, err := h.o.SubmitFile(context.Background(), nil)
	if !isCode(err, errors.ErrorCode_VALIDATION) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if h.o.Stage() != entities.StageIdle {
		t.Fatalf("stage changed to %s", h.o.Stage())
	}
}

func TestSubmitFile_Success(t *testing.T) {
	h := newHarness("", "")
	tr, err := h.o.SubmitFile(context.Background(), testFile())
	if err != nil {
		t.Fatalf("SubmitFile: %v", err)
	}
	if tr.Text != "we agreed on the budget" || tr.FileName != "standup.mp3" || *tr.DurationSeconds != 125 {
		t.Fatalf("unexpected transcript %+v", tr)
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StageTranscribed || s.Progress != 100 || s.UploadStatus != entities.UploadStatusSucceeded {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.PendingFile != "" {
		t.Fatalf("file should be discarded after transcription")
	}
}

func TestSubmitFile_FailureKeepsFileForRetry(t *testing.T) {
	h := newHarness("", "")
	h.transcriber.err = errors.ErrRemoteService("transcription", 500, "boom", nil)

	_, err := h.o.SubmitFile(context.Background(), testFile())
	if !isCode(err, errors.ErrorCode_UPLOAD_FAILED) {
		t.Fatalf("expected UPLOAD_FAILED, got %v", err)
	}
	if remote, ok := errors.AsRemote(err); !ok || remote.UpstreamStatus != 500 {
		t.Fatalf("upload error should expose the remote cause: %v", err)
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StageIdle || s.UploadStatus != entities.UploadStatusFailed || s.PendingFile != "standup.mp3" {
		t.Fatalf("unexpected state after failure %+v", s)
	}
	if s.Transcript != nil {
		t.Fatalf("no transcript expected")
	}

	h.transcriber.mu.Lock()
	h.transcriber.err = nil
	h.transcriber.mu.Unlock()

	if _, err := h.o.RetryUpload(context.Background()); err != nil {
		t.Fatalf("RetryUpload: %v", err)
	}
	if h.o.Stage() != entities.StageTranscribed || h.transcriber.calls != 2 {
		t.Fatalf("retry did not transcribe (stage %s, calls %d)", h.o.Stage(), h.transcriber.calls)
	}
}

func TestRetryUpload_NoFile(t *testing.T) {
	h := newHarness("", "")
	if _, err := h.o.RetryUpload(context.Background()); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}
}

func TestCancelUpload(t *testing.T) {
	h := newHarness("", "")
	h.transcriber.block = true
	h.transcriber.started = make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := h.o.SubmitFile(context.Background(), testFile())
		errCh <- err
	}()

	<-h.transcriber.started
	if h.o.Stage() != entities.StageUploading || h.o.Progress() != 50 {
		t.Fatalf("expected uploading at 50%%, got %s at %d", h.o.Stage(), h.o.Progress())
	}

	// a second upload is rejected while the first is in flight
	if _, err := h.o.SubmitFile(context.Background(), testFile()); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION for concurrent upload, got %v", err)
	}

	if !h.o.Cancel() {
		t.Fatalf("Cancel returned false during upload")
	}
	if err := <-errCh; !isCode(err, errors.ErrorCode_CANCELLED) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StageIdle || s.Progress != 0 || s.UploadStatus != entities.UploadStatusCancelled {
		t.Fatalf("unexpected state after cancel %+v", s)
	}
	if s.Transcript != nil {
		t.Fatalf("cancelled upload stored a transcript")
	}
	if h.o.Cancel() {
		t.Fatalf("Cancel returned true with nothing in flight")
	}
}

func TestCancelUpload_ResponseAfterCancel(t *testing.T) {
	h := newHarness("", "")
	h.transcriber.started = make(chan struct{})
	h.transcriber.release = make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := h.o.SubmitFile(context.Background(), testFile())
		errCh <- err
	}()

	<-h.transcriber.started
	if !h.o.Cancel() {
		t.Fatalf("Cancel returned false during upload")
	}
	close(h.transcriber.release)

	if err := <-errCh; !isCode(err, errors.ErrorCode_CANCELLED) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}

	s := h.o.Snapshot()
	if s.Transcript != nil {
		t.Fatalf("cancelled upload stored a transcript")
	}
	if s.Stage != entities.StageIdle || s.Progress != 0 || s.UploadStatus != entities.UploadStatusCancelled {
		t.Fatalf("unexpected state after cancel %+v", s)
	}

	// the file is kept so the upload can be retried
	h.transcriber.started = nil
	h.transcriber.release = nil
	if _, err := h.o.RetryUpload(context.Background()); err != nil {
		t.Fatalf("RetryUpload after cancel: %v", err)
	}
	if h.o.Stage() != entities.StageTranscribed {
		t.Fatalf("expected transcribed after retry, got %s", h.o.Stage())
	}
}

func TestSummarize_WithoutTranscript(t *testing.T) {
	h := newHarness("", "")
	_, err := h.o.Summarize(context.Background())
	if !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}
	if h.o.Stage() != entities.StageIdle || h.summarizer.sumCalls != 0 {
		t.Fatalf("summarize without transcript changed state")
	}
}

func TestSummarize_EachCallAppendsRecord(t *testing.T) {
	h := newHarness("", "")
	h.toSummarized(t)

	sum, err := h.o.Summarize(context.Background())
	if err != nil {
		t.Fatalf("second Summarize: %v", err)
	}
	if sum.ActionItems != "Ann writes release notes" || sum.DurationSeconds == nil {
		t.Fatalf("unexpected summary %+v", sum)
	}

	records := h.o.History()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Fatalf("records share an identifier")
	}
	if h.o.Stage() != entities.StageSummarized {
		t.Fatalf("unexpected stage %s", h.o.Stage())
	}
}

func TestSummarize_FailureRestoresTranscribed(t *testing.T) {
	h := newHarness("", "")
	h.o.SubmitFile(context.Background(), testFile())
	h.summarizer.sumErr = errors.ErrRemoteService("summarization", 503, "down", nil)

	_, err := h.o.Summarize(context.Background())
	if !isCode(err, errors.ErrorCode_SUMMARIZATION_FAILED) {
		t.Fatalf("expected SUMMARIZATION_FAILED, got %v", err)
	}
	s := h.o.Snapshot()
	if s.Stage != entities.StageTranscribed || s.Transcript == nil || s.Summary != nil {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.LastError == "" || h.history.Len() != 0 {
		t.Fatalf("failure not recorded or record appended")
	}
}

func TestSummarize_ConcurrentCallsAreSerialized(t *testing.T) {
	h := newHarness("", "")
	h.o.SubmitFile(context.Background(), testFile())
	h.summarizer.gate = make(chan struct{})
	h.summarizer.entered = make(chan struct{}, 1)

	errCh := make(chan error, 1)
	go func() {
		_, err := h.o.Summarize(context.Background())
		errCh <- err
	}()
	<-h.summarizer.entered

	if _, err := h.o.Summarize(context.Background()); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION for concurrent summarize, got %v", err)
	}
	if _, err := h.o.ExtractTasks(context.Background()); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION while summarizing, got %v", err)
	}

	close(h.summarizer.gate)
	if err := <-errCh; err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if h.history.Len() != 1 {
		t.Fatalf("expected exactly one record, got %d", h.history.Len())
	}
}

func TestExtractTasks(t *testing.T) {
	h := newHarness("", "")
	h.summarizer.tasks = []entities.Task{entities.NewTask("Ann", "Write release notes", "", entities.PriorityHigh)}
	h.toSummarized(t)

	set, err := h.o.ExtractTasks(context.Background())
	if err != nil {
		t.Fatalf("ExtractTasks: %v", err)
	}
	if h.summarizer.taskInput != "Ann writes release notes" {
		t.Fatalf("extractor received %q, want the action items", h.summarizer.taskInput)
	}
	if len(set.Tasks) != 1 || len(set.Keywords) == 0 || set.Keywords[0] != "budget" {
		t.Fatalf("unexpected task set %+v", set)
	}
	if h.o.Stage() != entities.StageTasksReady {
		t.Fatalf("unexpected stage %s", h.o.Stage())
	}
}

func TestExtractTasks_FailureIsNonFatal(t *testing.T) {
	h := newHarness("", "")
	h.summarizer.taskErr = errors.ErrRemoteService("summarization", 500, "oops", nil)
	h.toSummarized(t)

	set, err := h.o.ExtractTasks(context.Background())
	if !isCode(err, errors.ErrorCode_TASK_EXTRACTION_FAILED) {
		t.Fatalf("expected TASK_EXTRACTION_FAILED, got %v", err)
	}
	if set == nil || len(set.Tasks) != 0 || len(set.Keywords) == 0 {
		t.Fatalf("expected empty tasks and keywords, got %+v", set)
	}
	if h.o.Stage() != entities.StageTasksReady {
		t.Fatalf("stage should advance to tasks_ready, got %s", h.o.Stage())
	}
}

func TestExtractTasks_WithoutSummary(t *testing.T) {
	h := newHarness("", "")
	if _, err := h.o.ExtractTasks(context.Background()); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}
}

func TestPublish_RequiresCredentials(t *testing.T) {
	for _, creds := range [][2]string{{"", ""}, {"k", ""}, {"", "t"}} {
		h := newHarness(creds[0], creds[1])
		_, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
		if !isCode(err, errors.ErrorCode_CONFIGURATION) {
			t.Fatalf("expected CONFIGURATION, got %v", err)
		}

		h.toSummarized(t)
		h.o.ExtractTasks(context.Background())
		_, err = h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
		if !isCode(err, errors.ErrorCode_CONFIGURATION) {
			t.Fatalf("expected CONFIGURATION with a summary, got %v", err)
		}
		if len(h.boards.cards) != 0 {
			t.Fatalf("card created without credentials")
		}
	}
}

func TestPublish_ValidationAndPrecondition(t *testing.T) {
	h := newHarness("k", "t")
	if _, err := h.o.Publish(context.Background(), PublishRequest{}); !isCode(err, errors.ErrorCode_VALIDATION) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if _, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"}); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}

	h.toSummarized(t)
	if _, err := h.o.SelectBoard(context.Background(), "b1"); err != nil {
		t.Fatalf("SelectBoard: %v", err)
	}
	_, err := h.o.Publish(context.Background(), PublishRequest{BoardID: "b1", ListID: "other"})
	if !isCode(err, errors.ErrorCode_VALIDATION) {
		t.Fatalf("expected VALIDATION for a list outside the board, got %v", err)
	}
	if h.o.Stage() != entities.StageSummarized {
		t.Fatalf("rejected publish changed stage to %s", h.o.Stage())
	}
}

func TestPublish_ZeroTasksPlaceholder(t *testing.T) {
	h := newHarness("k", "t")
	h.toSummarized(t)
	h.o.ExtractTasks(context.Background())

	card, err := h.o.Publish(context.Background(), PublishRequest{BoardID: "b1", ListID: "l1"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if card.Description != "No specific tasks were extracted from the meeting." {
		t.Fatalf("unexpected description %q", card.Description)
	}
	if h.boards.cards[0].Name != h.o.Snapshot().Summary.Title {
		t.Fatalf("card name should be the summary title")
	}
	if card.Checklist != nil || len(h.boards.checklists) != 0 {
		t.Fatalf("no checklist expected without tasks, got %v", h.boards.checklists)
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StagePublished || len(s.Tasks) != 0 || len(s.Keywords) != 0 || s.LastCard == nil {
		t.Fatalf("unexpected state after publish %+v", s)
	}
	if s.Summary == nil || s.Transcript == nil {
		t.Fatalf("publish must keep transcript and summary")
	}
}

func TestPublish_RendersTasks(t *testing.T) {
	h := newHarness("k", "t")
	h.summarizer.tasks = []entities.Task{
		entities.NewTask("Ann", "Write notes", "2024-05-01", entities.PriorityHigh),
		entities.NewTask("Bo", "Book room", entities.NoDueDate, entities.PriorityNone),
	}
	h.toSummarized(t)
	h.o.ExtractTasks(context.Background())

	card, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := "Ann: Write notes (Due: 2024-05-01) [High]\nBo: Book room"
	if card.Description != want {
		t.Fatalf("description = %q, want %q", card.Description, want)
	}
}

func TestPublish_AddsTaskChecklist(t *testing.T) {
	h := newHarness("k", "t")
	h.summarizer.tasks = []entities.Task{
		entities.NewTask("Ann", "Write notes", "2024-05-01", entities.PriorityHigh),
		entities.NewTask("Bo", "Book room", entities.NoDueDate, entities.PriorityNone),
	}
	h.toSummarized(t)
	h.o.ExtractTasks(context.Background())

	card, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(h.boards.checklists) != 1 || h.boards.checklists[0] != "c1/"+entities.ChecklistName {
		t.Fatalf("unexpected checklists %v", h.boards.checklists)
	}
	want := []string{"Ann: Write notes (Due: 2024-05-01) [High]", "Bo: Book room"}
	if !reflect.DeepEqual(h.boards.items, want) {
		t.Fatalf("check items = %v, want %v", h.boards.items, want)
	}
	if card.Checklist == nil || len(card.Checklist.Items) != 2 || card.ChecklistError != "" {
		t.Fatalf("unexpected card checklist %+v (%q)", card.Checklist, card.ChecklistError)
	}
}

func TestPublish_ChecklistFailureIsNonFatal(t *testing.T) {
	h := newHarness("k", "t")
	h.summarizer.tasks = []entities.Task{
		entities.NewTask("Ann", "Write notes", "", entities.PriorityNone),
		entities.NewTask("Bo", "Book room", "", entities.PriorityNone),
	}
	h.boards.itemErr = errors.ErrRemoteService("trello", 429, "rate limited", nil)
	h.toSummarized(t)
	h.o.ExtractTasks(context.Background())

	card, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
	if err != nil {
		t.Fatalf("checklist failure must not fail publish: %v", err)
	}
	if card.ChecklistError == "" || card.Checklist == nil || len(card.Checklist.Items) != 1 {
		t.Fatalf("expected a partial checklist with an error, got %+v (%q)", card.Checklist, card.ChecklistError)
	}
	if len(h.boards.cards) != 1 {
		t.Fatalf("expected exactly one card, got %d", len(h.boards.cards))
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StagePublished || s.LastError == "" {
		t.Fatalf("expected published with the checklist error recorded, got %+v", s)
	}
	if s.LastCard == nil || s.LastCard.ChecklistError == "" {
		t.Fatalf("last card should carry the checklist error")
	}
}

func TestPublish_FailureRestoresStage(t *testing.T) {
	h := newHarness("k", "t")
	h.boards.err = errors.ErrRemoteService("trello", 400, "invalid list", nil)
	h.toSummarized(t)
	h.o.ExtractTasks(context.Background())

	_, err := h.o.Publish(context.Background(), PublishRequest{ListID: "l1"})
	if !isCode(err, errors.ErrorCode_PUBLISH_FAILED) {
		t.Fatalf("expected PUBLISH_FAILED, got %v", err)
	}
	if h.o.Stage() != entities.StageTasksReady {
		t.Fatalf("expected tasks_ready after failed publish, got %s", h.o.Stage())
	}
}

func TestEdits(t *testing.T) {
	h := newHarness("", "")
	if _, err := h.o.EditTranscript("x"); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}
	if _, err := h.o.AddTask(entities.Task{Description: "x"}); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}

	h.toSummarized(t)
	tr, err := h.o.EditTranscript("corrected text")
	if err != nil || tr.Text != "corrected text" {
		t.Fatalf("EditTranscript: %+v %v", tr, err)
	}

	title := "Weekly sync"
	sum, err := h.o.EditSummary(entities.SummaryPatch{Title: &title})
	if err != nil || sum.Title != "Weekly sync" || sum.DecisionsMade != "Ship on Friday" {
		t.Fatalf("EditSummary: %+v %v", sum, err)
	}

	tasks, err := h.o.AddTask(entities.Task{Description: "Follow up"})
	if err != nil || len(tasks) != 1 || tasks[0].Assignee != entities.UnassignedTask || tasks[0].DueDate != entities.NoDueDate {
		t.Fatalf("AddTask: %+v %v", tasks, err)
	}
	tasks, err = h.o.UpdateTask(0, entities.Task{Assignee: "Ann", Description: "Follow up", Priority: entities.PriorityLow})
	if err != nil || tasks[0].Assignee != "Ann" || tasks[0].Priority != entities.PriorityLow {
		t.Fatalf("UpdateTask: %+v %v", tasks, err)
	}
	if _, err := h.o.UpdateTask(3, entities.Task{}); !isCode(err, errors.ErrorCode_VALIDATION) {
		t.Fatalf("expected VALIDATION for bad index, got %v", err)
	}
	if _, err := h.o.AddTask(entities.Task{Priority: "Critical"}); !isCode(err, errors.ErrorCode_VALIDATION) {
		t.Fatalf("expected VALIDATION for bad priority, got %v", err)
	}
	tasks, err = h.o.DeleteTask(0)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("DeleteTask: %+v %v", tasks, err)
	}
	if h.o.Stage() != entities.StageSummarized {
		t.Fatalf("edits changed the stage to %s", h.o.Stage())
	}
}

func TestLoadRecord(t *testing.T) {
	h := newHarness("", "")
	h.toSummarized(t)
	record := h.o.History()[0]

	h.o.EditTranscript("edited later")
	h.o.ExtractTasks(context.Background())

	loaded, err := h.o.LoadRecord(record.ID)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if loaded.Transcript.Text != "we agreed on the budget" {
		t.Fatalf("unexpected record transcript %q", loaded.Transcript.Text)
	}

	s := h.o.Snapshot()
	if s.Stage != entities.StageSummarized || s.Transcript.Text != "we agreed on the budget" || len(s.Tasks) != 0 {
		t.Fatalf("unexpected state after load %+v", s)
	}

	// editing the live copy must not reach the stored record
	h.o.EditTranscript("changed again")
	stored, _ := h.history.Get(record.ID)
	if stored.Transcript.Text != "we agreed on the budget" {
		t.Fatalf("stored record was mutated")
	}

	if _, err := h.o.LoadRecord(stored.ID); err != nil {
		t.Fatalf("second load: %v", err)
	}
}

func TestLoadRecord_NotFound(t *testing.T) {
	h := newHarness("", "")
	h.toSummarized(t)
	other := entities.NewMeetingRecord(nil, nil)
	if _, err := h.o.LoadRecord(other.ID); !isCode(err, errors.ErrorCode_NOT_FOUND) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSetCredentialsDropsBoardCache(t *testing.T) {
	h := newHarness("key-1234", "token-5678")
	if _, err := h.o.Boards(context.Background()); err != nil {
		t.Fatalf("Boards: %v", err)
	}
	if _, err := h.o.SelectBoard(context.Background(), "b1"); err != nil {
		t.Fatalf("SelectBoard: %v", err)
	}
	s := h.o.Snapshot()
	if s.SelectedBoardID != "b1" || len(s.Lists) != 1 || len(s.Members) != 1 || len(s.Boards) != 1 {
		t.Fatalf("board data not cached %+v", s)
	}

	masked := h.o.SetCredentials("", "new-token-9999")
	if masked.Token != "**********9999" || masked.APIKey != "****1234" {
		t.Fatalf("unexpected masked credentials %+v", masked)
	}
	s = h.o.Snapshot()
	if s.SelectedBoardID != "" || s.Lists != nil || s.Boards != nil {
		t.Fatalf("board cache survived a credential change %+v", s)
	}
	if h.creds.Get().APIKey != "key-1234" {
		t.Fatalf("empty api key overwrote the stored one")
	}
}

func TestCardPreview(t *testing.T) {
	h := newHarness("", "")
	if _, err := h.o.CardPreview(); !isCode(err, errors.ErrorCode_PRECONDITION) {
		t.Fatalf("expected PRECONDITION, got %v", err)
	}
	h.toSummarized(t)
	preview, err := h.o.CardPreview()
	if err != nil {
		t.Fatalf("CardPreview: %v", err)
	}
	if preview.Description != entities.NoTasksDescription || len(preview.Keywords) == 0 {
		t.Fatalf("unexpected preview %+v", preview)
	}
}
