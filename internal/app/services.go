package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/realtime"
	"github.com/yungbote/groupchat-backend/internal/realtime/bus"
	"github.com/yungbote/groupchat-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	User     services.UserService
	Group    services.GroupService
	Message  services.MessageService
	Note     services.NoteService
	Bucket   services.BucketService
	Emitter  services.SSEEmitter
	Notifier services.GroupNotifier
	Bus      bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	bucketService, err := services.NewBucketService(log)
	if err != nil {
		return Services{}, err
	}

	// writes go straight to the in-process hub; with the Redis bus on,
	// they are published instead and a forwarder feeds the hub, so
	// every API node sees every event
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	var sseBus bus.Bus
	if cfg.EnableRedisBus {
		sseBus, err = bus.NewRedisBus(log)
		if err != nil {
			return Services{}, err
		}
		emitter = &services.RedisEmitter{Bus: sseBus}
	}
	notifier := services.NewGroupNotifier(emitter)

	authService := services.NewAuthService(db, log, r.User, r.UserToken, r.OTPCode,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	groupService := services.NewGroupService(db, log, r.Group, r.GroupMember, r.User)
	userService := services.NewUserService(db, log, r.User, r.Group, bucketService, emitter)
	messageService := services.NewMessageService(db, log, r.Message, r.MessageAttachment,
		groupService, bucketService, notifier)
	noteService := services.NewNoteService(db, log, r.Note, groupService, notifier)

	return Services{
		Auth:     authService,
		User:     userService,
		Group:    groupService,
		Message:  messageService,
		Note:     noteService,
		Bucket:   bucketService,
		Emitter:  emitter,
		Notifier: notifier,
		Bus:      sseBus,
	}, nil
}
