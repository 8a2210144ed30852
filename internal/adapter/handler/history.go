package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/adapter/presenter"
)

// History handles GET /pipeline/history
// @Summary      Meeting history
// @Description  Lists the meetings summarized in this session, oldest first
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  pipeline.HistoryItemResponse
// @Router       /pipeline/history [get]
func (h *Pipeline) History(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToHistoryResponse(o.History()))
}

// LoadRecord handles POST /pipeline/history/:id/load
// @Summary      Load a past meeting
// @Description  Restores the transcript and summary of a history record into the session
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record ID (UUID)"
// @Success      200  {object}  pipeline.MeetingRecordResponse
// @Failure      400  {object}  common.ErrorResponse  "Invalid record ID"
// @Failure      404  {object}  common.ErrorResponse  "Record not found"
// @Failure      409  {object}  common.ErrorResponse  "Another operation is in progress"
// @Router       /pipeline/history/{id}/load [post]
func (h *Pipeline) LoadRecord(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrValidation("invalid record ID"))
	}

	record, err := o.LoadRecord(id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingRecordResponse(record))
}
