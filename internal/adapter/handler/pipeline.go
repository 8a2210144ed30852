package handler

import (
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	pipelineDTO "github.com/johnquangdev/minutes360/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/minutes360/internal/adapter/presenter"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
)

// SessionProvider hands out the pipeline orchestrator of a signed-in user
type SessionProvider interface {
	Get(userID string) *pipeline.Orchestrator
}

// Pipeline handles the meeting pipeline HTTP requests
type Pipeline struct {
	sessions      SessionProvider
	maxUploadSize int64
	logger        *zap.Logger
}

// NewPipeline creates a new pipeline handler. maxUploadSize <= 0 disables the size check.
func NewPipeline(sessions SessionProvider, maxUploadSize int64, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		sessions:      sessions,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// orchestrator resolves the caller's session
func (h *Pipeline) orchestrator(c echo.Context) (*pipeline.Orchestrator, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(user.ID), nil
}

// State handles GET /pipeline/state
// @Summary      Pipeline state
// @Description  Returns the stage, progress and artifacts of the caller's session
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.StateResponse
// @Failure      401  {object}  common.ErrorResponse  "User not authenticated"
// @Router       /pipeline/state [get]
func (h *Pipeline) State(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToStateResponse(o.Snapshot()))
}

// Upload handles POST /pipeline/upload
// @Summary      Upload a recording
// @Description  Uploads an audio or video file and waits for its transcription
// @Tags         Pipeline
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Meeting recording"
// @Success      200   {object}  pipeline.TranscriptResponse
// @Failure      400   {object}  common.ErrorResponse  "No file selected"
// @Failure      409   {object}  common.ErrorResponse  "Another operation is in progress"
// @Failure      413   {object}  common.ErrorResponse  "File too large"
// @Failure      499   {object}  common.ErrorResponse  "Upload cancelled by user"
// @Failure      502   {object}  common.ErrorResponse  "Transcription service failed"
// @Router       /pipeline/upload [post]
func (h *Pipeline) Upload(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	file, err := h.readUpload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	h.logger.Info("📤 Upload received",
		zap.String("session_id", o.ID()),
		zap.String("file_name", file.Name),
		zap.Int64("size", file.Size()),
	)

	transcript, err := o.SubmitFile(c.Request().Context(), file)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTranscriptResponse(transcript))
}

// readUpload reads the multipart "file" field into memory
func (h *Pipeline) readUpload(c echo.Context) (*entities.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if stdErrors.Is(err, http.ErrMissingFile) {
			return nil, errors.ErrValidation("No file selected")
		}
		return nil, errors.ErrValidation(fmt.Sprintf("invalid upload: %v", err))
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		appErr := errors.ErrValidation(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadSize))
		appErr.HTTPCode = http.StatusRequestEntityTooLarge
		return nil, appErr
	}

	src, err := header.Open()
	if err != nil {
		return nil, errors.ErrInternal(fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.ErrInternal(fmt.Errorf("read upload: %w", err))
	}

	mimeType := header.Header.Get(echo.HeaderContentType)
	if mimeType == "" {
		mimeType = echo.MIMEOctetStream
	}
	return &entities.UploadedFile{
		Name:     header.Filename,
		Data:     data,
		MimeType: mimeType,
	}, nil
}

// RetryUpload handles POST /pipeline/upload/retry
// @Summary      Retry the last upload
// @Description  Re-submits the file whose upload failed or was cancelled
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.TranscriptResponse
// @Failure      400  {object}  common.ErrorResponse  "No file to retry"
// @Failure      409  {object}  common.ErrorResponse  "Another operation is in progress"
// @Failure      502  {object}  common.ErrorResponse  "Transcription service failed"
// @Router       /pipeline/upload/retry [post]
func (h *Pipeline) RetryUpload(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	transcript, err := o.RetryUpload(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTranscriptResponse(transcript))
}

// CancelUpload handles POST /pipeline/upload/cancel
// @Summary      Cancel the running upload
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.SuccessResponse
// @Router       /pipeline/upload/cancel [post]
func (h *Pipeline) CancelUpload(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]bool{"cancelled": o.Cancel()})
}

// Summarize handles POST /pipeline/summarize
// @Summary      Summarize the transcript
// @Description  Sends the transcript to the summarization service and records the result in history
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.SummaryResponse
// @Failure      409  {object}  common.ErrorResponse  "No transcript or another operation is in progress"
// @Failure      502  {object}  common.ErrorResponse  "Summarization service failed"
// @Router       /pipeline/summarize [post]
func (h *Pipeline) Summarize(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	summary, err := o.Summarize(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToSummaryResponse(summary))
}

// ExtractTasks handles POST /pipeline/tasks/extract
// @Summary      Extract tasks
// @Description  Extracts action items from the summary and keywords from its sections.
// @Description  A failed extraction still returns the (empty) task set alongside the error.
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.TaskSetResponse
// @Failure      409  {object}  common.ErrorResponse  "No summary or another operation is in progress"
// @Failure      502  {object}  common.ErrorResponse  "Task extraction failed"
// @Router       /pipeline/tasks/extract [post]
func (h *Pipeline) ExtractTasks(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	set, err := o.ExtractTasks(c.Request().Context())
	if err != nil {
		if set != nil {
			return handleErrorWithData(h.logger, c, err, presenter.ToTaskSetResponse(set.Tasks, set.Keywords))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskSetResponse(set.Tasks, set.Keywords))
}

// EditTranscript handles PUT /pipeline/transcript
// @Summary      Edit the transcript
// @Tags         Pipeline
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      pipeline.UpdateTranscriptRequest  true  "New transcript text"
// @Success      200      {object}  pipeline.TranscriptResponse
// @Failure      409      {object}  common.ErrorResponse  "No transcript"
// @Router       /pipeline/transcript [put]
func (h *Pipeline) EditTranscript(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req pipelineDTO.UpdateTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	transcript, err := o.EditTranscript(req.Text)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTranscriptResponse(transcript))
}

// EditSummary handles PATCH /pipeline/summary
// @Summary      Edit the summary
// @Description  Updates the given summary sections; omitted fields are kept
// @Tags         Pipeline
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      pipeline.UpdateSummaryRequest  true  "Summary edits"
// @Success      200      {object}  pipeline.SummaryResponse
// @Failure      400      {object}  common.ErrorResponse  "Empty title"
// @Failure      409      {object}  common.ErrorResponse  "No summary"
// @Router       /pipeline/summary [patch]
func (h *Pipeline) EditSummary(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req pipelineDTO.UpdateSummaryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	summary, err := o.EditSummary(entities.SummaryPatch{
		Title:               req.Title,
		KeyDiscussionPoints: req.KeyDiscussionPoints,
		DecisionsMade:       req.DecisionsMade,
		ActionItems:         req.ActionItems,
		PendingQuestions:    req.PendingQuestions,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToSummaryResponse(summary))
}

// AddTask handles POST /pipeline/tasks
// @Summary      Add a task
// @Tags         Pipeline
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      pipeline.TaskRequest  true  "Task"
// @Success      200      {object}  pipeline.TaskSetResponse
// @Failure      400      {object}  common.ErrorResponse  "Invalid task"
// @Router       /pipeline/tasks [post]
func (h *Pipeline) AddTask(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.bindTask(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := o.AddTask(task)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskSetResponse(tasks, o.Snapshot().Keywords))
}

// UpdateTask handles PUT /pipeline/tasks/:index
// @Summary      Replace a task
// @Tags         Pipeline
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        index    path      int                   true  "Task index"
// @Param        request  body      pipeline.TaskRequest  true  "Task"
// @Success      200      {object}  pipeline.TaskSetResponse
// @Failure      400      {object}  common.ErrorResponse  "Invalid task or index"
// @Router       /pipeline/tasks/{index} [put]
func (h *Pipeline) UpdateTask(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	index, err := pathIndex(c, "index")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	task, err := h.bindTask(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := o.UpdateTask(index, task)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskSetResponse(tasks, o.Snapshot().Keywords))
}

// DeleteTask handles DELETE /pipeline/tasks/:index
// @Summary      Delete a task
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      int  true  "Task index"
// @Success      200    {object}  pipeline.TaskSetResponse
// @Failure      400    {object}  common.ErrorResponse  "Invalid index"
// @Router       /pipeline/tasks/{index} [delete]
func (h *Pipeline) DeleteTask(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	index, err := pathIndex(c, "index")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := o.DeleteTask(index)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskSetResponse(tasks, o.Snapshot().Keywords))
}

func (h *Pipeline) bindTask(c echo.Context) (entities.Task, error) {
	var req pipelineDTO.TaskRequest
	if err := c.Bind(&req); err != nil {
		return entities.Task{}, errors.ErrInvalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return entities.Task{}, err
	}
	priority, _ := entities.ParsePriority(req.Priority)
	return entities.NewTask(req.Assignee, req.Description, req.DueDate, priority), nil
}

// CardPreview handles GET /pipeline/card/preview
// @Summary      Preview the meeting card
// @Tags         Pipeline
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.CardPreviewResponse
// @Failure      409  {object}  common.ErrorResponse  "No summary"
// @Router       /pipeline/card/preview [get]
func (h *Pipeline) CardPreview(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	preview, err := o.CardPreview()
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToCardPreviewResponse(preview))
}

// Publish handles POST /pipeline/publish
// @Summary      Publish the meeting card
// @Description  Creates a Trello card from the summary and tasks in the given list, then a checklist with one item per task. A checklist failure is reported in checklist_error and does not fail the request.
// @Tags         Pipeline
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      pipeline.PublishRequest  true  "Destination list"
// @Success      200      {object}  pipeline.CardResponse
// @Failure      400      {object}  common.ErrorResponse  "No list selected"
// @Failure      409      {object}  common.ErrorResponse  "No summary or another operation is in progress"
// @Failure      412      {object}  common.ErrorResponse  "Trello credentials not configured"
// @Failure      502      {object}  common.ErrorResponse  "Trello request failed"
// @Router       /pipeline/publish [post]
func (h *Pipeline) Publish(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req pipelineDTO.PublishRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	// list_id is validated by the orchestrator so missing credentials are reported first
	card, err := o.Publish(c.Request().Context(), pipeline.PublishRequest{
		BoardID: req.BoardID,
		ListID:  req.ListID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToCardResponse(card))
}
