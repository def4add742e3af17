package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NoteBlock is the JSON contract for one content block. Not a DB model.
type NoteBlock struct {
	Type string `json:"type"` // only "text" today
	Text string `json:"text"`
}

type Note struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	Group     *Group         `gorm:"constraint:OnDelete:CASCADE;foreignKey:GroupID;references:ID" json:"-"`
	UserID    *uuid.UUID     `gorm:"type:uuid;column:user_id" json:"user_id"`
	Content   datatypes.JSON `gorm:"column:content;type:jsonb" json:"content"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Note) TableName() string {
	return "note"
}
