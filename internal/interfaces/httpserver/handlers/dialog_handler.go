package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/interfaces/httpserver/requests"
	"jan-server/services/dialog-api/internal/interfaces/httpserver/responses"
	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

// DialogHandler exposes HTTP entrypoints for dialogs and favorites.
type DialogHandler struct {
	service  dialog.Service
	paging   Paging
	log      zerolog.Logger
	validate *validator.Validate
}

// NewDialogHandler constructs the handler.
func NewDialogHandler(service dialog.Service, paging Paging, log zerolog.Logger) *DialogHandler {
	return &DialogHandler{
		service:  service,
		paging:   paging,
		log:      log.With().Str("handler", "dialog").Logger(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create handles POST /v1/dialogs
// @Summary Open a dialog
// @Description Returns the dialog between the caller and user_id, creating it on first use
// @Tags Dialogs
// @Accept json
// @Produce json
// @Param request body requests.CreateDialogRequest true "Counterpart"
// @Success 201 {object} responses.DialogView "Dialog created"
// @Success 200 {object} responses.DialogView "Dialog already existed"
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs [post]
func (h *DialogHandler) Create(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var req requests.CreateDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if err := h.validate.Struct(req); err != nil {
		platformerrors.WriteValidationError(c, "user_id is required and at most 64 characters")
		return
	}

	ctx := c.Request.Context()
	d, created, err := h.service.CreateDialog(ctx, user, dialog.UserID(req.UserID))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	unread, err := h.service.UnreadCounts(ctx, user, []*dialog.Dialog{d})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, responses.NewDialogView(d, user, unread[d.ID]))
}

// List handles GET /v1/dialogs
// @Summary List the caller's dialogs
// @Description Ranked by the caller's last sent or last received message when a filter is given
// @Tags Dialogs
// @Produce json
// @Param filter query string false "Ranking" Enums(none, last_sent, last_received)
// @Param last_sent query bool false "Same as filter=last_sent"
// @Param last_received query bool false "Same as filter=last_received"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} responses.DialogListResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs [get]
func (h *DialogHandler) List(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	mode, err := requests.ParseRankMode(c)
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	page, err := requests.ParsePagination(c, h.paging.DefaultPageSize, h.paging.MaxPageSize)
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	ranked, err := h.service.ListDialogs(ctx, user, mode)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	start, end := page.Bounds(len(ranked))
	window := ranked[start:end]
	unread, err := h.service.UnreadCounts(ctx, user, window)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.DialogListResponse{
		Data:     responses.NewDialogViews(window, user, unread),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    int64(len(ranked)),
	})
}

// Get handles GET /v1/dialogs/:dialog_id
// @Summary Get a dialog
// @Tags Dialogs
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Success 200 {object} responses.DialogView
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id} [get]
func (h *DialogHandler) Get(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}
	dialogID, ok := dialogIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	d, err := h.service.GetDialog(ctx, dialogID, user)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	unread, err := h.service.UnreadCounts(ctx, user, []*dialog.Dialog{d})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.NewDialogView(d, user, unread[d.ID]))
}

// Favorite handles PATCH /v1/dialogs/:dialog_id/favorite
// @Summary Mark a dialog as favorite
// @Description Idempotent; changed is false when the dialog already was a favorite
// @Tags Dialogs
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Success 200 {object} responses.FavoriteResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id}/favorite [patch]
func (h *DialogHandler) Favorite(c *gin.Context) {
	h.setFavorite(c, h.service.ToggleFavorite)
}

// Unfavorite handles DELETE /v1/dialogs/:dialog_id/favorite
// @Summary Remove a dialog from favorites
// @Tags Dialogs
// @Produce json
// @Param dialog_id path int true "Dialog ID"
// @Success 200 {object} responses.FavoriteResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/dialogs/{dialog_id}/favorite [delete]
func (h *DialogHandler) Unfavorite(c *gin.Context) {
	h.setFavorite(c, h.service.RemoveFavorite)
}

type favoriteFunc func(ctx context.Context, dialogID uint, user dialog.UserID) (*dialog.Dialog, bool, error)

func (h *DialogHandler) setFavorite(c *gin.Context, apply favoriteFunc) {
	user, ok := requester(c)
	if !ok {
		return
	}
	dialogID, ok := dialogIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	d, changed, err := apply(ctx, dialogID, user)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	unread, err := h.service.UnreadCounts(ctx, user, []*dialog.Dialog{d})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FavoriteResponse{
		DialogView: responses.NewDialogView(d, user, unread[d.ID]),
		Changed:    changed,
	})
}
