package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/dialog-api/internal/interfaces/httpserver/handlers"
)

func registerDialogRoutes(router gin.IRoutes, handler *handlers.DialogHandler) {
	router.POST("/dialogs", handler.Create)
	router.GET("/dialogs", handler.List)
	router.GET("/dialogs/:dialog_id", handler.Get)
	router.PATCH("/dialogs/:dialog_id/favorite", handler.Favorite)
	router.DELETE("/dialogs/:dialog_id/favorite", handler.Unfavorite)
}
