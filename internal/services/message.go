package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/apierr"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/repos"
	"github.com/yungbote/groupchat-backend/internal/types"
)

// MessageUpload is one file submitted alongside a message.
type MessageUpload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

type MessageService interface {
	ListMessages(ctx context.Context, userID, groupID uuid.UUID) ([]*types.Message, error)

	// SendMessage inserts the message row first, then uploads files one at
	// a time. A failed upload skips that file only; the message and any
	// other attachments survive.
	SendMessage(ctx context.Context, userID, groupID uuid.UUID, content string, replyTo *uuid.UUID, files []MessageUpload) (*types.Message, error)

	// AddAttachment records an already-uploaded object against a message.
	// Used by clients that upload to storage themselves.
	AddAttachment(ctx context.Context, userID, messageID uuid.UUID, fileURL, fileType string) (*types.MessageAttachment, error)

	// DeleteMessage removes the row (attachments cascade) and then deletes
	// the backing objects best-effort, one at a time.
	DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error
}

type messageService struct {
	db             *gorm.DB
	log            *logger.Logger
	messageRepo    repos.MessageRepo
	attachmentRepo repos.MessageAttachmentRepo
	groupService   GroupService
	bucket         BucketService
	notify         GroupNotifier
}

func NewMessageService(
	db *gorm.DB,
	baseLog *logger.Logger,
	messageRepo repos.MessageRepo,
	attachmentRepo repos.MessageAttachmentRepo,
	groupService GroupService,
	bucket BucketService,
	notify GroupNotifier,
) MessageService {
	return &messageService{
		db:             db,
		log:            baseLog.With("service", "MessageService"),
		messageRepo:    messageRepo,
		attachmentRepo: attachmentRepo,
		groupService:   groupService,
		bucket:         bucket,
		notify:         notify,
	}
}

func (ms *messageService) ListMessages(ctx context.Context, userID, groupID uuid.UUID) ([]*types.Message, error) {
	if err := ms.groupService.RequireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	msgs, err := ms.messageRepo.ListByGroupID(ctx, nil, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (ms *messageService) SendMessage(ctx context.Context, userID, groupID uuid.UUID, content string, replyTo *uuid.UUID, files []MessageUpload) (*types.Message, error) {
	if err := ms.groupService.RequireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	// An empty message is allowed: clients that upload through the
	// object endpoints insert the record first and attach files with a
	// follow-up call.
	content = strings.TrimSpace(content)
	if replyTo != nil {
		parent, pErr := ms.messageRepo.GetByID(ctx, nil, *replyTo)
		if pErr != nil {
			if errors.Is(pErr, gorm.ErrRecordNotFound) {
				return nil, apierr.New(http.StatusBadRequest, "reply_target_not_found", pErr)
			}
			return nil, fmt.Errorf("failed to load reply target: %w", pErr)
		}
		if parent.GroupID != groupID {
			return nil, apierr.New(http.StatusBadRequest, "reply_target_not_found", fmt.Errorf("reply target belongs to another group"))
		}
	}

	msg, err := ms.messageRepo.Create(ctx, nil, &types.Message{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  &userID,
		Content: content,
		ReplyTo: replyTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	ms.notify.MessageCreated(groupID, msg)

	// uploads run after the row exists and never fail the send
	for _, f := range files {
		key := ms.objectKey(groupID, f.Name)
		if upErr := ms.bucket.UploadFile(ctx, key, f.Data); upErr != nil {
			ms.log.Warn("Attachment upload failed, skipping file",
				"message_id", msg.ID, "file", f.Name, "error", upErr)
			continue
		}
		att, aErr := ms.attachmentRepo.Create(ctx, nil, &types.MessageAttachment{
			ID:        uuid.New(),
			MessageID: msg.ID,
			FileURL:   ms.bucket.GetPublicURL(key),
			FileType:  attachmentKind(f.ContentType),
		})
		if aErr != nil {
			ms.log.Warn("Attachment row insert failed, skipping file",
				"message_id", msg.ID, "file", f.Name, "error", aErr)
			continue
		}
		msg.Attachments = append(msg.Attachments, *att)
		ms.notify.AttachmentCreated(groupID, att)
	}
	return msg, nil
}

func (ms *messageService) AddAttachment(ctx context.Context, userID, messageID uuid.UUID, fileURL, fileType string) (*types.MessageAttachment, error) {
	msg, err := ms.messageRepo.GetByID(ctx, nil, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "message_not_found", err)
		}
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if mErr := ms.groupService.RequireMember(ctx, userID, msg.GroupID); mErr != nil {
		return nil, mErr
	}
	if strings.TrimSpace(fileURL) == "" {
		return nil, apierr.New(http.StatusBadRequest, "file_url_required", fmt.Errorf("file_url required"))
	}
	if fileType != types.AttachmentKindImage && fileType != types.AttachmentKindFile {
		return nil, apierr.New(http.StatusBadRequest, "invalid_file_type", fmt.Errorf("file_type must be %q or %q", types.AttachmentKindImage, types.AttachmentKindFile))
	}
	att, err := ms.attachmentRepo.Create(ctx, nil, &types.MessageAttachment{
		ID:        uuid.New(),
		MessageID: messageID,
		FileURL:   fileURL,
		FileType:  fileType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	ms.notify.AttachmentCreated(msg.GroupID, att)
	return att, nil
}

func (ms *messageService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := ms.messageRepo.GetByID(ctx, nil, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusNotFound, "message_not_found", err)
		}
		return fmt.Errorf("failed to load message: %w", err)
	}
	if msg.UserID == nil || *msg.UserID != userID {
		return apierr.New(http.StatusForbidden, "not_message_author", fmt.Errorf("only the author can delete a message"))
	}

	if dErr := ms.messageRepo.Delete(ctx, nil, messageID); dErr != nil {
		return fmt.Errorf("failed to delete message: %w", dErr)
	}
	ms.notify.MessageDeleted(msg.GroupID, messageID)

	// storage cleanup is best-effort; an orphaned object is acceptable,
	// a dangling row is not
	urlBase := ms.bucket.GetPublicURL("")
	for _, att := range msg.Attachments {
		key := strings.TrimPrefix(att.FileURL, urlBase)
		if key == "" || key == att.FileURL {
			ms.log.Warn("Could not derive object key from attachment URL", "attachment_id", att.ID)
			continue
		}
		if delErr := ms.bucket.DeleteFile(ctx, key); delErr != nil {
			ms.log.Warn("Failed to delete attachment object", "attachment_id", att.ID, "error", delErr)
		}
	}
	return nil
}

func (ms *messageService) objectKey(groupID uuid.UUID, name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("group_%s/%d_%s", groupID, time.Now().UnixNano(), base)
}

func attachmentKind(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return types.AttachmentKindImage
	}
	return types.AttachmentKindFile
}
