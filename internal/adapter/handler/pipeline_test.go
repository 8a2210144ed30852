package handler

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/adapter/repository"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/credential"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
	"github.com/johnquangdev/minutes360/pkg/ai"
	"github.com/johnquangdev/minutes360/pkg/config"
	"github.com/johnquangdev/minutes360/pkg/validator"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(_ context.Context, file *entities.UploadedFile, progress ai.ProgressFunc) (*ai.TranscriptionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	progress(file.Size(), file.Size())
	return &ai.TranscriptionResult{Text: s.text}, nil
}

type stubSummarizer struct {
	tasks   []entities.Task
	taskErr error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string) (entities.SummarySections, error) {
	return entities.SummarySections{
		KeyDiscussionPoints: "Budget budget timeline",
		ActionItems:         "Ann drafts the plan",
	}, nil
}

func (s *stubSummarizer) ExtractTasks(_ context.Context, _ string) ([]entities.Task, error) {
	return s.tasks, s.taskErr
}

type stubBoards struct{}

func (stubBoards) ListBoards(context.Context) ([]entities.Board, error) {
	return []entities.Board{{ID: "b1", Name: "Team"}}, nil
}

func (stubBoards) ListLists(context.Context, string) ([]entities.List, error) {
	return []entities.List{{ID: "l1", Name: "To Do"}}, nil
}

func (stubBoards) ListMembers(context.Context, string) ([]entities.Member, error) {
	return []entities.Member{{ID: "m1", FullName: "Ann Lee", Username: "ann"}}, nil
}

func (stubBoards) CreateCard(_ context.Context, card entities.CardRequest) (*entities.Card, error) {
	return &entities.Card{ID: "c1", Name: card.Name, Description: card.Description, ListID: card.ListID}, nil
}

func (stubBoards) CreateChecklist(_ context.Context, cardID, name string) (*entities.Checklist, error) {
	return &entities.Checklist{ID: "cl1", Name: name, CardID: cardID}, nil
}

func (stubBoards) AddCheckItem(_ context.Context, _, name string) (*entities.CheckItem, error) {
	return &entities.CheckItem{ID: "i1", Name: name, State: "incomplete"}, nil
}

type singleSession struct {
	o *pipeline.Orchestrator
}

func (s singleSession) Get(string) *pipeline.Orchestrator {
	return s.o
}

type testServer struct {
	e           *echo.Echo
	o           *pipeline.Orchestrator
	transcriber *stubTranscriber
	summarizer  *stubSummarizer
}

func newTestServer(t *testing.T, apiKey, token string, maxUpload int64) *testServer {
	t.Helper()
	ts := &testServer{
		transcriber: &stubTranscriber{text: "we agreed on the budget"},
		summarizer:  &stubSummarizer{tasks: []entities.Task{entities.NewTask("Ann", "Draft plan", "", entities.PriorityHigh)}},
	}
	ts.o = pipeline.NewOrchestrator("u1", pipeline.Dependencies{
		Transcriber: ts.transcriber,
		Summarizer:  ts.summarizer,
		Boards:      stubBoards{},
		Credentials: credential.NewStore(apiKey, token),
		History:     repository.NewHistoryRepository(),
		Timeouts:    pipeline.Timeouts{Summarize: time.Second, ExtractTasks: time.Second, Publish: time.Second},
	})

	fakeAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return HandleError(nil, c, errors.ErrUnauthenticated())
			}
			c.Set("user", entities.NewUser("u1", "ann@example.com", "Ann"))
			return next(c)
		}
	}

	ts.e = echo.New()
	ts.e.Validator = validator.New()
	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	NewRouter(cfg, nil, NewPipeline(singleSession{o: ts.o}, maxUpload, nil), fakeAuth).Setup(ts.e)
	return ts
}

type envelope struct {
	Code           interface{}       `json:"code"`
	Message        string            `json:"message"`
	Info           string            `json:"info"`
	Details        map[string]string `json:"details"`
	UpstreamStatus int               `json:"upstream_status"`
	Data           json.RawMessage   `json:"data"`
}

// code returns the symbolic error code of an error envelope
func (e envelope) code() string {
	return fmt.Sprint(e.Code)
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer test")
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (ts *testServer) doJSON(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	return ts.do(t, method, path, strings.NewReader(body), echo.MIMEApplicationJSON)
}

func (ts *testServer) upload(t *testing.T, name string, data []byte) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if name != "" {
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	} else {
		w.WriteField("note", "no file")
	}
	w.Close()
	return ts.do(t, http.MethodPost, "/v1/pipeline/upload", &buf, w.FormDataContentType())
}

func TestPipelineHandler_RequiresUser(t *testing.T) {
	ts := newTestServer(t, "", "", 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/pipeline/state", nil)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPipelineHandler_FullFlow(t *testing.T) {
	ts := newTestServer(t, "key-1234", "token-5678", 0)

	status, env := ts.upload(t, "standup.mp3", []byte("audio-bytes"))
	if status != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d (%s)", status, env.Message)
	}
	var transcript struct {
		Text     string `json:"text"`
		FileName string `json:"file_name"`
		Duration string `json:"duration"`
	}
	json.Unmarshal(env.Data, &transcript)
	if transcript.Text != "we agreed on the budget" || transcript.FileName != "standup.mp3" {
		t.Fatalf("unexpected transcript %+v", transcript)
	}
	if transcript.Duration != "Unknown" {
		t.Fatalf("expected unknown duration, got %q", transcript.Duration)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")
	if status != http.StatusOK {
		t.Fatalf("summarize: expected 200, got %d (%s)", status, env.Message)
	}
	var summary struct {
		Title         string `json:"title"`
		DecisionsMade string `json:"decisions_made"`
	}
	json.Unmarshal(env.Data, &summary)
	if !strings.HasPrefix(summary.Title, "Meeting Summary - ") {
		t.Fatalf("unexpected title %q", summary.Title)
	}
	if summary.DecisionsMade != entities.NoDecisionsText {
		t.Fatalf("expected placeholder decisions, got %q", summary.DecisionsMade)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/tasks/extract", "")
	if status != http.StatusOK {
		t.Fatalf("extract: expected 200, got %d (%s)", status, env.Message)
	}
	var set struct {
		Tasks []struct {
			Index    int    `json:"index"`
			Assignee string `json:"assignee"`
			Priority string `json:"priority"`
		} `json:"tasks"`
		Keywords []string `json:"keywords"`
	}
	json.Unmarshal(env.Data, &set)
	if len(set.Tasks) != 1 || set.Tasks[0].Assignee != "Ann" || set.Tasks[0].Priority != "High" {
		t.Fatalf("unexpected tasks %+v", set.Tasks)
	}
	if len(set.Keywords) == 0 || set.Keywords[0] != "budget" {
		t.Fatalf("unexpected keywords %v", set.Keywords)
	}

	status, env = ts.doJSON(t, http.MethodGet, "/v1/pipeline/card/preview", "")
	if status != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d", status)
	}
	var preview struct {
		Description string `json:"description"`
	}
	json.Unmarshal(env.Data, &preview)
	if preview.Description != "Ann: Draft plan [High]" {
		t.Fatalf("unexpected card description %q", preview.Description)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/publish", `{"list_id":"l1"}`)
	if status != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d (%s)", status, env.Message)
	}
	var card struct {
		ID        string `json:"id"`
		Checklist *struct {
			Name  string   `json:"name"`
			Items []string `json:"items"`
		} `json:"checklist"`
	}
	json.Unmarshal(env.Data, &card)
	if card.Checklist == nil || card.Checklist.Name != entities.ChecklistName || len(card.Checklist.Items) != 1 {
		t.Fatalf("expected a checklist with one item, got %+v", card.Checklist)
	}

	status, env = ts.doJSON(t, http.MethodGet, "/v1/pipeline/state", "")
	if status != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", status)
	}
	var state struct {
		Stage        string `json:"stage"`
		Progress     int    `json:"progress"`
		HistoryCount int    `json:"history_count"`
		LastCard     *struct {
			ID string `json:"id"`
		} `json:"last_card"`
		Tasks []json.RawMessage `json:"tasks"`
	}
	json.Unmarshal(env.Data, &state)
	if state.Stage != string(entities.StagePublished) || state.Progress != 100 || state.HistoryCount != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.LastCard == nil || state.LastCard.ID != "c1" {
		t.Fatalf("expected last card c1, got %+v", state.LastCard)
	}
	if len(state.Tasks) != 0 {
		t.Fatalf("expected tasks cleared after publish, got %d", len(state.Tasks))
	}
}

func TestPipelineHandler_UploadValidation(t *testing.T) {
	ts := newTestServer(t, "", "", 4)

	status, env := ts.upload(t, "", nil)
	if status != http.StatusBadRequest || env.code() != errors.ErrorCode_VALIDATION.String() {
		t.Fatalf("missing file: expected 400 VALIDATION, got %d %s", status, env.code())
	}

	status, env = ts.upload(t, "big.mp3", []byte("too many bytes"))
	if status != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized file: expected 413, got %d (%s)", status, env.Message)
	}

	status, env = ts.upload(t, "empty.mp3", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty file: expected 400, got %d (%s)", status, env.Message)
	}
}

func TestPipelineHandler_UploadFailureReportsUpstream(t *testing.T) {
	ts := newTestServer(t, "", "", 0)
	ts.transcriber.err = fmt.Errorf("post upload: %w",
		errors.ErrRemoteService("transcription", http.StatusServiceUnavailable, "down for maintenance", nil))

	status, env := ts.upload(t, "standup.mp3", []byte("audio"))
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	if env.code() != errors.ErrorCode_UPLOAD_FAILED.String() {
		t.Fatalf("expected UPLOAD_FAILED, got %s", env.code())
	}
	if env.UpstreamStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected upstream status 503, got %d", env.UpstreamStatus)
	}

	// the file is kept for a retry
	ts.transcriber.err = nil
	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/upload/retry", "")
	if status != http.StatusOK {
		t.Fatalf("retry: expected 200, got %d (%s)", status, env.Message)
	}
}

func TestPipelineHandler_StageOrder(t *testing.T) {
	ts := newTestServer(t, "", "", 0)

	status, env := ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")
	if status != http.StatusConflict || env.code() != errors.ErrorCode_PRECONDITION.String() {
		t.Fatalf("summarize without transcript: expected 409 PRECONDITION, got %d %s", status, env.code())
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/publish", `{"list_id":"l1"}`)
	if status != http.StatusPreconditionFailed || env.code() != errors.ErrorCode_CONFIGURATION.String() {
		t.Fatalf("publish without credentials: expected 412 CONFIGURATION, got %d %s", status, env.code())
	}
}

func TestPipelineHandler_ExtractTasksFailureKeepsData(t *testing.T) {
	ts := newTestServer(t, "", "", 0)
	ts.summarizer.taskErr = stdErrors.New("extractor unavailable")

	ts.upload(t, "standup.mp3", []byte("audio"))
	ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")

	status, env := ts.doJSON(t, http.MethodPost, "/v1/pipeline/tasks/extract", "")
	if status != http.StatusBadGateway || env.code() != errors.ErrorCode_TASK_EXTRACTION_FAILED.String() {
		t.Fatalf("expected 502 TASK_EXTRACTION_FAILED, got %d %s", status, env.code())
	}
	var set struct {
		Tasks    []json.RawMessage `json:"tasks"`
		Keywords []string          `json:"keywords"`
	}
	if err := json.Unmarshal(env.Data, &set); err != nil {
		t.Fatalf("expected task set alongside the error: %v", err)
	}
	if set.Tasks == nil || len(set.Tasks) != 0 {
		t.Fatalf("expected empty task list, got %v", set.Tasks)
	}
	if len(set.Keywords) == 0 {
		t.Fatalf("expected keywords despite the failure")
	}
	if got := ts.o.Stage(); got != entities.StageTasksReady {
		t.Fatalf("expected tasks_ready, got %s", got)
	}
}

func TestPipelineHandler_TaskEdits(t *testing.T) {
	ts := newTestServer(t, "", "", 0)
	ts.upload(t, "standup.mp3", []byte("audio"))
	ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")
	ts.doJSON(t, http.MethodPost, "/v1/pipeline/tasks/extract", "")

	status, env := ts.doJSON(t, http.MethodPost, "/v1/pipeline/tasks", `{"description":"Book room","priority":"Low"}`)
	if status != http.StatusOK {
		t.Fatalf("add: expected 200, got %d (%s)", status, env.Message)
	}
	var set struct {
		Tasks []struct {
			Assignee string `json:"assignee"`
			DueDate  string `json:"due_date"`
		} `json:"tasks"`
	}
	json.Unmarshal(env.Data, &set)
	if len(set.Tasks) != 2 || set.Tasks[1].Assignee != entities.UnassignedTask || set.Tasks[1].DueDate != entities.NoDueDate {
		t.Fatalf("unexpected tasks after add %+v", set.Tasks)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/tasks", `{"description":"Book room","priority":"whenever"}`)
	if status != http.StatusBadRequest || env.Details["Priority"] != "priority" {
		t.Fatalf("bad priority: expected 400 with details, got %d %v", status, env.Details)
	}

	status, _ = ts.doJSON(t, http.MethodPut, "/v1/pipeline/tasks/7", `{"description":"x"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("out of range index: expected 400, got %d", status)
	}

	status, _ = ts.doJSON(t, http.MethodPut, "/v1/pipeline/tasks/first", `{"description":"x"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("non-numeric index: expected 400, got %d", status)
	}

	status, env = ts.doJSON(t, http.MethodDelete, "/v1/pipeline/tasks/0", "")
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d (%s)", status, env.Message)
	}
	json.Unmarshal(env.Data, &set)
	if len(set.Tasks) != 1 {
		t.Fatalf("expected one task after delete, got %d", len(set.Tasks))
	}
}

func TestPipelineHandler_EditSummary(t *testing.T) {
	ts := newTestServer(t, "", "", 0)
	ts.upload(t, "standup.mp3", []byte("audio"))
	ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")

	status, env := ts.doJSON(t, http.MethodPatch, "/v1/pipeline/summary", `{"title":"Weekly sync"}`)
	if status != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d (%s)", status, env.Message)
	}
	var summary struct {
		Title               string `json:"title"`
		KeyDiscussionPoints string `json:"key_discussion_points"`
	}
	json.Unmarshal(env.Data, &summary)
	if summary.Title != "Weekly sync" || summary.KeyDiscussionPoints != "Budget budget timeline" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	status, _ = ts.doJSON(t, http.MethodPatch, "/v1/pipeline/summary", `{"title":"  "}`)
	if status != http.StatusBadRequest {
		t.Fatalf("empty title: expected 400, got %d", status)
	}

	status, env = ts.doJSON(t, http.MethodPut, "/v1/pipeline/transcript", `{"text":"corrected"}`)
	if status != http.StatusOK {
		t.Fatalf("transcript edit: expected 200, got %d (%s)", status, env.Message)
	}
}

func TestPipelineHandler_History(t *testing.T) {
	ts := newTestServer(t, "", "", 0)
	ts.upload(t, "standup.mp3", []byte("audio"))
	ts.doJSON(t, http.MethodPost, "/v1/pipeline/summarize", "")

	status, env := ts.doJSON(t, http.MethodGet, "/v1/pipeline/history", "")
	if status != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", status)
	}
	var items []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	json.Unmarshal(env.Data, &items)
	if len(items) != 1 {
		t.Fatalf("expected one history item, got %d", len(items))
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/history/"+items[0].ID+"/load", "")
	if status != http.StatusOK {
		t.Fatalf("load: expected 200, got %d (%s)", status, env.Message)
	}

	status, _ = ts.doJSON(t, http.MethodPost, "/v1/pipeline/history/not-a-uuid/load", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", status)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/history/00000000-0000-0000-0000-000000000001/load", "")
	if status != http.StatusNotFound || env.code() != errors.ErrorCode_NOT_FOUND.String() {
		t.Fatalf("unknown id: expected 404, got %d %s", status, env.code())
	}
}

func TestPipelineHandler_Boards(t *testing.T) {
	ts := newTestServer(t, "", "", 0)

	status, env := ts.doJSON(t, http.MethodGet, "/v1/pipeline/credentials", "")
	if status != http.StatusOK {
		t.Fatalf("credentials: expected 200, got %d", status)
	}
	var creds struct {
		APIKey     string `json:"api_key"`
		Token      string `json:"token"`
		Configured bool   `json:"configured"`
	}
	json.Unmarshal(env.Data, &creds)
	if creds.Configured {
		t.Fatalf("expected unconfigured credentials")
	}

	status, env = ts.doJSON(t, http.MethodPut, "/v1/pipeline/credentials", `{"api_key":"abcdefgh","token":"tok-9876"}`)
	if status != http.StatusOK {
		t.Fatalf("set credentials: expected 200, got %d (%s)", status, env.Message)
	}
	json.Unmarshal(env.Data, &creds)
	if creds.APIKey != "****efgh" || creds.Token != "****9876" || !creds.Configured {
		t.Fatalf("unexpected masked credentials %+v", creds)
	}

	status, env = ts.doJSON(t, http.MethodGet, "/v1/pipeline/boards", "")
	if status != http.StatusOK {
		t.Fatalf("boards: expected 200, got %d", status)
	}

	status, env = ts.doJSON(t, http.MethodPost, "/v1/pipeline/boards/b1/select", "")
	if status != http.StatusOK {
		t.Fatalf("select: expected 200, got %d (%s)", status, env.Message)
	}
	var selection struct {
		BoardID string `json:"board_id"`
		Lists   []struct {
			ID string `json:"id"`
		} `json:"lists"`
		Members []struct {
			FullName string `json:"full_name"`
		} `json:"members"`
	}
	json.Unmarshal(env.Data, &selection)
	if selection.BoardID != "b1" || len(selection.Lists) != 1 || selection.Members[0].FullName != "Ann Lee" {
		t.Fatalf("unexpected selection %+v", selection)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "", "", 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"environment":"test"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
