package model

import (
	"time"
)

// ResetToken is a single-use password-reset secret. The unique index on
// UserID keeps at most one live token per user; reissuing overwrites the
// previous row. Validity is measured from CreatedAt.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Token     string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ResetToken) TableName() string {
	return "reset_tokens"
}
