package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttachmentKindImage = "image"
	AttachmentKindFile  = "file"
)

type MessageAttachment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	Message   *Message  `gorm:"constraint:OnDelete:CASCADE;foreignKey:MessageID;references:ID" json:"-"`
	FileURL   string    `gorm:"not null;column:file_url" json:"file_url"`
	FileType  string    `gorm:"not null;column:file_type" json:"file_type"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MessageAttachment) TableName() string {
	return "message_attachment"
}
