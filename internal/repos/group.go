package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (*types.Group, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error)
	Delete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error
}

type GroupMemberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, members []*types.GroupMember) ([]*types.GroupMember, error)
	IsMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (bool, error)
	ListByGroupID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.GroupMember, error)
	Delete(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	repoLog := baseLog.With("repo", "GroupRepo")
	return &groupRepo{db: db, log: repoLog}
}

func (gr *groupRepo) Create(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	if group == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (gr *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (*types.Group, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var result types.Group
	err := transaction.WithContext(ctx).
		Where("id = ?", groupID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (gr *groupRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var results []*types.Group
	err := transaction.WithContext(ctx).
		Joins(`JOIN "group_member" ON "group_member"."group_id" = "group"."id"`).
		Where(`"group_member"."user_id" = ?`, userID).
		Order(`"group"."created_at" ASC`).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *groupRepo) Delete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", groupID).
		Delete(&types.Group{}).Error
}

type groupMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupMemberRepo(db *gorm.DB, baseLog *logger.Logger) GroupMemberRepo {
	repoLog := baseLog.With("repo", "GroupMemberRepo")
	return &groupMemberRepo{db: db, log: repoLog}
}

func (mr *groupMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.GroupMember) ([]*types.GroupMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(members) == 0 {
		return []*types.GroupMember{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (mr *groupMemberRepo) IsMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (mr *groupMemberRepo) ListByGroupID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.GroupMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.GroupMember
	err := transaction.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *groupMemberRepo) Delete(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	return transaction.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&types.GroupMember{}).Error
}
