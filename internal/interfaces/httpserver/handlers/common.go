package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/infrastructure/auth"
	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

// Paging bounds list endpoints.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

func requester(c *gin.Context) (dialog.UserID, bool) {
	user, ok := auth.UserIDFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return "", false
	}
	return user, true
}

func dialogIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("dialog_id"), 10, 64)
	if err != nil || id == 0 {
		platformerrors.WriteValidationError(c, "dialog_id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
