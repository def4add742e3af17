package app

import (
	"github.com/yungbote/groupchat-backend/internal/handlers"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/realtime"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Group   *handlers.GroupHandler
	Message *handlers.MessageHandler
	Note    *handlers.NoteHandler
	Object  *handlers.ObjectHandler
	SSE     *handlers.SSEHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(s.Auth),
		User:    handlers.NewUserHandler(s.User),
		Group:   handlers.NewGroupHandler(s.Group),
		Message: handlers.NewMessageHandler(s.Message),
		Note:    handlers.NewNoteHandler(s.Note),
		Object:  handlers.NewObjectHandler(s.Bucket, s.Group),
		SSE:     handlers.NewSSEHandler(hub, s.Group),
	}
}
