package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/apierr"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/repos"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type GroupService interface {
	CreateGroup(ctx context.Context, userID uuid.UUID, name, description string, memberIDs []uuid.UUID) (*types.Group, error)
	GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*types.Group, []*types.GroupMember, error)
	ListGroups(ctx context.Context, userID uuid.UUID) ([]*types.Group, error)
	JoinGroup(ctx context.Context, userID, groupID uuid.UUID) error
	LeaveGroup(ctx context.Context, userID, groupID uuid.UUID) error

	// DeleteGroup is creator-only; rows under the group (members,
	// messages, notes) cascade with it.
	DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error

	RequireMember(ctx context.Context, userID, groupID uuid.UUID) error
}

type groupService struct {
	db         *gorm.DB
	log        *logger.Logger
	groupRepo  repos.GroupRepo
	memberRepo repos.GroupMemberRepo
	userRepo   repos.UserRepo
}

func NewGroupService(
	db *gorm.DB,
	baseLog *logger.Logger,
	groupRepo repos.GroupRepo,
	memberRepo repos.GroupMemberRepo,
	userRepo repos.UserRepo,
) GroupService {
	return &groupService{
		db:         db,
		log:        baseLog.With("service", "GroupService"),
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

func (gs *groupService) CreateGroup(ctx context.Context, userID uuid.UUID, name, description string, memberIDs []uuid.UUID) (*types.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "group_name_required", fmt.Errorf("group name required"))
	}

	var group *types.Group
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, cErr := gs.groupRepo.Create(ctx, tx, &types.Group{
			ID:          uuid.New(),
			Name:        name,
			Description: strings.TrimSpace(description),
			CreatedBy:   &userID,
		})
		if cErr != nil {
			return fmt.Errorf("failed to create group: %w", cErr)
		}

		members := []*types.GroupMember{{ID: uuid.New(), GroupID: created.ID, UserID: userID}}
		for _, id := range memberIDs {
			if id == userID || id == uuid.Nil {
				continue
			}
			members = append(members, &types.GroupMember{ID: uuid.New(), GroupID: created.ID, UserID: id})
		}
		if _, mErr := gs.memberRepo.Create(ctx, tx, members); mErr != nil {
			return fmt.Errorf("failed to create group members: %w", mErr)
		}
		group = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (gs *groupService) GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*types.Group, []*types.GroupMember, error) {
	if err := gs.RequireMember(ctx, userID, groupID); err != nil {
		return nil, nil, err
	}
	group, err := gs.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.New(http.StatusNotFound, "group_not_found", err)
		}
		return nil, nil, fmt.Errorf("failed to load group: %w", err)
	}
	members, err := gs.memberRepo.ListByGroupID(ctx, nil, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return group, members, nil
}

func (gs *groupService) ListGroups(ctx context.Context, userID uuid.UUID) ([]*types.Group, error) {
	groups, err := gs.groupRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (gs *groupService) JoinGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	if _, err := gs.groupRepo.GetByID(ctx, nil, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusNotFound, "group_not_found", err)
		}
		return fmt.Errorf("failed to load group: %w", err)
	}
	already, err := gs.memberRepo.IsMember(ctx, nil, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if already {
		return nil
	}
	if _, err := gs.memberRepo.Create(ctx, nil, []*types.GroupMember{{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
	}}); err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}
	return nil
}

func (gs *groupService) LeaveGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	if err := gs.RequireMember(ctx, userID, groupID); err != nil {
		return err
	}
	return gs.memberRepo.Delete(ctx, nil, groupID, userID)
}

func (gs *groupService) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	group, err := gs.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusNotFound, "group_not_found", err)
		}
		return fmt.Errorf("failed to load group: %w", err)
	}
	if group.CreatedBy == nil || *group.CreatedBy != userID {
		return apierr.New(http.StatusForbidden, "not_group_creator", fmt.Errorf("only the creator can delete a group"))
	}
	if err := gs.groupRepo.Delete(ctx, nil, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (gs *groupService) RequireMember(ctx context.Context, userID, groupID uuid.UUID) error {
	ok, err := gs.memberRepo.IsMember(ctx, nil, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return apierr.New(http.StatusForbidden, "not_a_member", fmt.Errorf("user is not a member of this group"))
	}
	return nil
}
