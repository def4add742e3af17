package types

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"group_id"`
	Group       *Group              `gorm:"constraint:OnDelete:CASCADE;foreignKey:GroupID;references:ID" json:"-"`
	UserID      *uuid.UUID          `gorm:"type:uuid;column:user_id" json:"user_id"`
	User        *User               `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Content     string              `gorm:"column:content" json:"content"`
	ReplyTo     *uuid.UUID          `gorm:"type:uuid;column:reply_to" json:"reply_to,omitempty"`
	Attachments []MessageAttachment `gorm:"foreignKey:MessageID;references:ID" json:"message_attachments,omitempty"`
	CreatedAt   time.Time           `gorm:"not null;default:now();index" json:"created_at"`
}

func (Message) TableName() string {
	return "message"
}
