package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser is an account allowed into the admin console
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (u *AdminUser) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// MagicLink is a single-use sign-in token sent by e-mail
type MagicLink struct {
	Token     string     `json:"-" db:"token" gorm:"type:text;primaryKey"`
	Email     string     `json:"email" db:"email" gorm:"type:text;not null;index"`
	CreatedAt time.Time  `json:"created_at" db:"created_at" gorm:"not null"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
}
