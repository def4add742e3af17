package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/apierr"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/repos"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type NoteService interface {
	ListNotes(ctx context.Context, userID, groupID uuid.UUID) ([]*types.Note, error)
	CreateNote(ctx context.Context, userID, groupID uuid.UUID, blocks []types.NoteBlock) (*types.Note, error)

	// SaveNote replaces the note's full block list. Notes are
	// last-writer-wins; the saved content becomes the shared state every
	// member's next feed event or reload sees.
	SaveNote(ctx context.Context, userID, noteID uuid.UUID, blocks []types.NoteBlock) (*types.Note, error)
	DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error
}

type noteService struct {
	db           *gorm.DB
	log          *logger.Logger
	noteRepo     repos.NoteRepo
	groupService GroupService
	notify       GroupNotifier
}

func NewNoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	noteRepo repos.NoteRepo,
	groupService GroupService,
	notify GroupNotifier,
) NoteService {
	return &noteService{
		db:           db,
		log:          baseLog.With("service", "NoteService"),
		noteRepo:     noteRepo,
		groupService: groupService,
		notify:       notify,
	}
}

func (ns *noteService) ListNotes(ctx context.Context, userID, groupID uuid.UUID) ([]*types.Note, error) {
	if err := ns.groupService.RequireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	notes, err := ns.noteRepo.ListByGroupID(ctx, nil, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (ns *noteService) CreateNote(ctx context.Context, userID, groupID uuid.UUID, blocks []types.NoteBlock) (*types.Note, error) {
	if err := ns.groupService.RequireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	content, err := marshalBlocks(blocks)
	if err != nil {
		return nil, err
	}
	note, err := ns.noteRepo.Create(ctx, nil, &types.Note{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  &userID,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	ns.notify.NoteSaved(groupID, note)
	return note, nil
}

func (ns *noteService) SaveNote(ctx context.Context, userID, noteID uuid.UUID, blocks []types.NoteBlock) (*types.Note, error) {
	note, err := ns.loadForMember(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	content, err := marshalBlocks(blocks)
	if err != nil {
		return nil, err
	}
	if uErr := ns.noteRepo.UpdateContent(ctx, nil, noteID, content); uErr != nil {
		return nil, fmt.Errorf("failed to save note: %w", uErr)
	}
	saved, err := ns.noteRepo.GetByID(ctx, nil, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload note: %w", err)
	}
	ns.notify.NoteSaved(note.GroupID, saved)
	return saved, nil
}

func (ns *noteService) DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error {
	if _, err := ns.loadForMember(ctx, userID, noteID); err != nil {
		return err
	}
	if err := ns.noteRepo.Delete(ctx, nil, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (ns *noteService) loadForMember(ctx context.Context, userID, noteID uuid.UUID) (*types.Note, error) {
	note, err := ns.noteRepo.GetByID(ctx, nil, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "note_not_found", err)
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if mErr := ns.groupService.RequireMember(ctx, userID, note.GroupID); mErr != nil {
		return nil, mErr
	}
	return note, nil
}

func marshalBlocks(blocks []types.NoteBlock) (datatypes.JSON, error) {
	if blocks == nil {
		blocks = []types.NoteBlock{}
	}
	raw, err := json.Marshal(blocks)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_note_content", err)
	}
	return datatypes.JSON(raw), nil
}
