package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/apierr"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/realtime"
	"github.com/yungbote/groupchat-backend/internal/repos"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUsers(ctx context.Context, userIDs []uuid.UUID) ([]*types.User, error)
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (*types.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, contentType string, data io.Reader) (*types.User, error)
}

type userService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	groupRepo repos.GroupRepo
	bucket    BucketService
	emit      SSEEmitter
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	groupRepo repos.GroupRepo,
	bucket BucketService,
	emit SSEEmitter,
) UserService {
	return &userService{
		db:        db,
		log:       baseLog.With("service", "UserService"),
		userRepo:  userRepo,
		groupRepo: groupRepo,
		bucket:    bucket,
		emit:      emit,
	}
}

func (us *userService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", errors.New("user not found"))
	}
	return users[0], nil
}

func (us *userService) GetUsers(ctx context.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

func (us *userService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*types.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "name_required", errors.New("name required"))
	}
	user, err := us.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if uErr := us.userRepo.Update(ctx, nil, user); uErr != nil {
		return nil, fmt.Errorf("failed to update user: %w", uErr)
	}
	us.fanOutProfileEvent(ctx, user, realtime.SSEEventUserNameChanged)
	return user, nil
}

func (us *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, contentType string, data io.Reader) (*types.User, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apierr.New(http.StatusBadRequest, "avatar_not_image", fmt.Errorf("avatar must be an image, got %q", contentType))
	}
	user, err := us.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatar_%s/%d", userID, time.Now().UnixNano())
	if upErr := us.bucket.UploadFile(ctx, key, data); upErr != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", upErr)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = key
	user.AvatarURL = us.bucket.GetPublicURL(key)
	if uErr := us.userRepo.Update(ctx, nil, user); uErr != nil {
		return nil, fmt.Errorf("failed to update user: %w", uErr)
	}
	if oldKey != "" {
		if dErr := us.bucket.DeleteFile(ctx, oldKey); dErr != nil {
			us.log.Warn("Failed to delete previous avatar object", "error", dErr)
		}
	}
	us.fanOutProfileEvent(ctx, user, realtime.SSEEventUserAvatarUpdated)
	return user, nil
}

// fanOutProfileEvent tells every group the user belongs to that the
// profile changed, so open conversations refresh the author line.
func (us *userService) fanOutProfileEvent(ctx context.Context, user *types.User, event realtime.SSEEvent) {
	if us.emit == nil {
		return
	}
	groups, err := us.groupRepo.ListByUserID(ctx, nil, user.ID)
	if err != nil {
		us.log.Warn("Failed to list groups for profile fan-out", "error", err)
		return
	}
	for _, g := range groups {
		us.emit.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.GroupChannel(g.ID),
			Event:   event,
			Data:    map[string]any{"user": user},
		})
	}
}
