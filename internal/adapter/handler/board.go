package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/minutes360/errors"
	pipelineDTO "github.com/johnquangdev/minutes360/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/minutes360/internal/adapter/presenter"
)

// GetCredentials handles GET /pipeline/credentials
// @Summary      Show Trello credentials
// @Description  Returns the session's Trello key and token with all but the last four characters masked
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pipeline.CredentialsResponse
// @Router       /pipeline/credentials [get]
func (h *Pipeline) GetCredentials(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToCredentialsResponse(o.Credentials(), o.CredentialsConfigured()))
}

// SetCredentials handles PUT /pipeline/credentials
// @Summary      Update Trello credentials
// @Description  Replaces the session's Trello key and token; empty fields keep the current value
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      pipeline.CredentialsRequest  true  "Trello key and token"
// @Success      200      {object}  pipeline.CredentialsResponse
// @Router       /pipeline/credentials [put]
func (h *Pipeline) SetCredentials(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req pipelineDTO.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	masked := o.SetCredentials(req.APIKey, req.Token)
	return HandleSuccess(h.logger, c, presenter.ToCredentialsResponse(masked, o.CredentialsConfigured()))
}

// Boards handles GET /pipeline/boards
// @Summary      List boards
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   pipeline.BoardResponse
// @Failure      412  {object}  common.ErrorResponse  "Trello credentials not configured"
// @Failure      502  {object}  common.ErrorResponse  "Trello request failed"
// @Router       /pipeline/boards [get]
func (h *Pipeline) Boards(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	boards, err := o.Boards(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToBoardResponses(boards))
}

// SelectBoard handles POST /pipeline/boards/:id/select
// @Summary      Select a board
// @Description  Loads the lists and members of a board and makes it the default publish target
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Board ID"
// @Success      200  {object}  pipeline.BoardSelectionResponse
// @Failure      400  {object}  common.ErrorResponse  "Missing board ID"
// @Failure      412  {object}  common.ErrorResponse  "Trello credentials not configured"
// @Failure      502  {object}  common.ErrorResponse  "Trello request failed"
// @Router       /pipeline/boards/{id}/select [post]
func (h *Pipeline) SelectBoard(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	selection, err := o.SelectBoard(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToBoardSelectionResponse(selection))
}

// Lists handles GET /pipeline/boards/:id/lists
// @Summary      List the lists of a board
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Board ID"
// @Success      200  {array}   pipeline.ListResponse
// @Failure      412  {object}  common.ErrorResponse  "Trello credentials not configured"
// @Router       /pipeline/boards/{id}/lists [get]
func (h *Pipeline) Lists(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	lists, err := o.Lists(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToListResponses(lists))
}

// Members handles GET /pipeline/boards/:id/members
// @Summary      List the members of a board
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Board ID"
// @Success      200  {array}   pipeline.MemberResponse
// @Failure      412  {object}  common.ErrorResponse  "Trello credentials not configured"
// @Router       /pipeline/boards/{id}/members [get]
func (h *Pipeline) Members(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	members, err := o.Members(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToMemberResponses(members))
}
