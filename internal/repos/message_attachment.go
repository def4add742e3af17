package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type MessageAttachmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, att *types.MessageAttachment) (*types.MessageAttachment, error)
	ListByMessageID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) ([]*types.MessageAttachment, error)
	DeleteByMessageID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) error
}

type messageAttachmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageAttachmentRepo(db *gorm.DB, baseLog *logger.Logger) MessageAttachmentRepo {
	repoLog := baseLog.With("repo", "MessageAttachmentRepo")
	return &messageAttachmentRepo{db: db, log: repoLog}
}

func (ar *messageAttachmentRepo) Create(ctx context.Context, tx *gorm.DB, att *types.MessageAttachment) (*types.MessageAttachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if att == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(att).Error; err != nil {
		return nil, err
	}
	return att, nil
}

func (ar *messageAttachmentRepo) ListByMessageID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) ([]*types.MessageAttachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.MessageAttachment
	err := transaction.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *messageAttachmentRepo) DeleteByMessageID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&types.MessageAttachment{}).Error
}
