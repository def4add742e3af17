package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventGroupMessageCreated    SSEEvent = "GroupMessageCreated"
	SSEEventGroupMessageDeleted    SSEEvent = "GroupMessageDeleted"
	SSEEventGroupAttachmentCreated SSEEvent = "GroupAttachmentCreated"
	SSEEventGroupNoteSaved         SSEEvent = "GroupNoteSaved"
	SSEEventUserNameChanged        SSEEvent = "UserNameChanged"
	SSEEventUserAvatarUpdated      SSEEvent = "UserAvatarChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// GroupChannel is the feed channel name for one group's change events.
func GroupChannel(groupID uuid.UUID) string {
	return "group:" + groupID.String()
}
