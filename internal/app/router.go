package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/groupchat-backend/internal/server"
)

func wireRouter(h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    h.Auth,
		AuthMiddleware: m.Auth,
		UserHandler:    h.User,
		GroupHandler:   h.Group,
		MessageHandler: h.Message,
		NoteHandler:    h.Note,
		ObjectHandler:  h.Object,
		SSEHandler:     h.SSE,
	})
}
