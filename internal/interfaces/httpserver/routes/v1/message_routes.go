package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/dialog-api/internal/interfaces/httpserver/handlers"
)

func registerMessageRoutes(router gin.IRoutes, handler *handlers.MessageHandler) {
	router.POST("/dialogs/:dialog_id/messages", handler.Send)
	router.GET("/dialogs/:dialog_id/messages", handler.List)
	router.POST("/dialogs/:dialog_id/read", handler.MarkRead)

	router.GET("/messages", handler.ListMine)
}
