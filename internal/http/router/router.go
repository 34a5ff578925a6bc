package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/triage/internal/http/handler"
)

func SetupRoutes(router *gin.Engine, sender handler.StreamSender) {
	router.GET("/healthz", handler.Health)

	v1 := router.Group("/api/v1")
	{
		ZulipRouter(v1.Group("/zulip"), handler.NewReplyHandler(sender))
	}
}

func ZulipRouter(router *gin.RouterGroup, h *handler.ReplyHandler) {
	router.POST("/reply", h.Send)
}
