package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type OTPCodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, code *types.OTPCode) (*types.OTPCode, error)
	GetLatestByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.OTPCode, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type otpCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOTPCodeRepo(db *gorm.DB, baseLog *logger.Logger) OTPCodeRepo {
	repoLog := baseLog.With("repo", "OTPCodeRepo")
	return &otpCodeRepo{db: db, log: repoLog}
}

func (or *otpCodeRepo) Create(ctx context.Context, tx *gorm.DB, code *types.OTPCode) (*types.OTPCode, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if code == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

// GetLatestByPhone returns the most recently issued code for a phone;
// verification matches against this row only.
func (or *otpCodeRepo) GetLatestByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.OTPCode, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.OTPCode
	err := transaction.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *otpCodeRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.OTPCode{}).Error
}
