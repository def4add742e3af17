package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/groupchat-backend/internal/realtime"
	"github.com/yungbote/groupchat-backend/internal/types"
)

// GroupNotifier publishes change-feed events on a group's channel. The
// write path emits these after the row is committed, so subscribers may
// see an event for state they already hold; consumers dedup by id.
type GroupNotifier interface {
	MessageCreated(groupID uuid.UUID, msg *types.Message)
	MessageDeleted(groupID uuid.UUID, messageID uuid.UUID)
	AttachmentCreated(groupID uuid.UUID, att *types.MessageAttachment)
	NoteSaved(groupID uuid.UUID, note *types.Note)
}

type groupNotifier struct {
	emit SSEEmitter
}

func NewGroupNotifier(emit SSEEmitter) GroupNotifier {
	return &groupNotifier{emit: emit}
}

func (n *groupNotifier) MessageCreated(groupID uuid.UUID, msg *types.Message) {
	if n == nil || n.emit == nil || groupID == uuid.Nil || msg == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.GroupChannel(groupID),
		Event:   realtime.SSEEventGroupMessageCreated,
		Data:    map[string]any{"message": msg},
	})
}

func (n *groupNotifier) MessageDeleted(groupID uuid.UUID, messageID uuid.UUID) {
	if n == nil || n.emit == nil || groupID == uuid.Nil || messageID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.GroupChannel(groupID),
		Event:   realtime.SSEEventGroupMessageDeleted,
		Data:    map[string]any{"message_id": messageID},
	})
}

func (n *groupNotifier) AttachmentCreated(groupID uuid.UUID, att *types.MessageAttachment) {
	if n == nil || n.emit == nil || groupID == uuid.Nil || att == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.GroupChannel(groupID),
		Event:   realtime.SSEEventGroupAttachmentCreated,
		Data:    map[string]any{"attachment": att},
	})
}

func (n *groupNotifier) NoteSaved(groupID uuid.UUID, note *types.Note) {
	if n == nil || n.emit == nil || groupID == uuid.Nil || note == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.GroupChannel(groupID),
		Event:   realtime.SSEEventGroupNoteSaved,
		Data:    map[string]any{"note": note},
	})
}
