package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/interfaces/httpserver/requests"
	"jan-server/services/dialog-api/internal/interfaces/httpserver/responses"
	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

// MessageHandler exposes HTTP entrypoints for dialog messages.
type MessageHandler struct {
	service dialog.Service
	paging  Paging
	log     zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service dialog.Service, paging Paging, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		paging:  paging,
		log:     log.With().Str("handler", "message").Logger(),
	}
}

// Send handles POST /v1/dialogs/:dialog_id/messages
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Param request body requests.SendMessageRequest true "Message"
// @Success 201 {object} responses.MessageView
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}
	dialogID, ok := dialogIDParam(c)
	if !ok {
		return
	}

	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), dialogID, user, req.Text)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.NewMessageView(*msg))
}

// List handles GET /v1/dialogs/:dialog_id/messages
// @Summary List dialog messages
// @Description Returns the full history in send order and marks it as read
// @Tags Messages
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Success 200 {object} responses.MessageListResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}
	dialogID, ok := dialogIDParam(c)
	if !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), dialogID, user)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.MessageListResponse{
		Data:  responses.NewMessageViews(messages),
		Total: int64(len(messages)),
	})
}

// MarkRead handles POST /v1/dialogs/:dialog_id/read
// @Summary Advance the read boundary
// @Description Marks every message up to and including message_id as read
// @Tags Messages
// @Accept json
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Param request body requests.MarkReadRequest true "Boundary"
// @Success 200 {object} responses.MarkReadResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}
	dialogID, ok := dialogIDParam(c)
	if !ok {
		return
	}

	var req requests.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "message_id is required")
		return
	}

	updated, err := h.service.MarkReadUpTo(c.Request.Context(), dialogID, req.MessageID, user)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.MarkReadResponse{Updated: updated})
}

// ListMine handles GET /v1/messages
// @Summary List the caller's messages
// @Description Every message of every dialog the caller takes part in, newest first
// @Tags Messages
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} responses.MessageListResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /v1/messages [get]
func (h *MessageHandler) ListMine(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	page, err := requests.ParsePagination(c, h.paging.DefaultPageSize, h.paging.MaxPageSize)
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	messages, total, err := h.service.ListUserMessages(c.Request.Context(), user, page.PageSize, page.Offset())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.MessageListResponse{
		Data:     responses.NewMessageViews(messages),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
	})
}
