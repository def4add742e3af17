package types

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode rows are single-use: verification deletes the matched row.
type OTPCode struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Phone     string    `gorm:"index;not null;column:phone" json:"phone"`
	Code      string    `gorm:"not null;column:code" json:"-"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (OTPCode) TableName() string {
	return "otp_code"
}
