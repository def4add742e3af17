package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/groupchat-backend/internal/handlers"
	"github.com/yungbote/groupchat-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	GroupHandler   *handlers.GroupHandler
	MessageHandler *handlers.MessageHandler
	NoteHandler    *handlers.NoteHandler
	ObjectHandler  *handlers.ObjectHandler
	SSEHandler     *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"X-Client-ID"},
		AllowCredentials: true,
	}))

	// public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/auth/request-code", cfg.AuthHandler.RequestCode)
	router.POST("/auth/verify", cfg.AuthHandler.VerifyCode)

	// protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)

	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PATCH("/user", cfg.UserHandler.UpdateName)
	protected.POST("/user/avatar", cfg.UserHandler.UpdateAvatar)
	protected.GET("/users/:user_id", cfg.UserHandler.GetUser)

	protected.POST("/groups", cfg.GroupHandler.Create)
	protected.GET("/groups", cfg.GroupHandler.List)
	protected.GET("/groups/:group_id", cfg.GroupHandler.Get)
	protected.DELETE("/groups/:group_id", cfg.GroupHandler.Delete)
	protected.POST("/groups/:group_id/join", cfg.GroupHandler.Join)
	protected.POST("/groups/:group_id/leave", cfg.GroupHandler.Leave)

	protected.GET("/groups/:group_id/messages", cfg.MessageHandler.List)
	protected.POST("/groups/:group_id/messages", cfg.MessageHandler.Send)
	protected.DELETE("/messages/:message_id", cfg.MessageHandler.Delete)
	protected.POST("/messages/:message_id/attachments", cfg.MessageHandler.AddAttachment)

	protected.POST("/groups/:group_id/objects", cfg.ObjectHandler.Upload)
	protected.POST("/objects/remove", cfg.ObjectHandler.Remove)

	protected.GET("/groups/:group_id/notes", cfg.NoteHandler.List)
	protected.POST("/groups/:group_id/notes", cfg.NoteHandler.Create)
	protected.PUT("/notes/:note_id", cfg.NoteHandler.Save)
	protected.DELETE("/notes/:note_id", cfg.NoteHandler.Delete)

	return router
}
