package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered citizen or administrator. A user holds a password
// hash, a Google account id, or both.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name         string    `gorm:"not null;size:100" json:"name"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"size:255;uniqueIndex" json:"-"`
	AvatarURL    *string   `gorm:"size:1000" json:"avatarUrl"`
	City         *string   `gorm:"size:100" json:"city"`
	Country      *string   `gorm:"size:100" json:"country"`
	IsAdmin      bool      `gorm:"not null;default:false;index" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
