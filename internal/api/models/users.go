package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values form a ladder: user < moderator < admin.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name,omitempty"`
	LastName  string `gorm:"size:150" json:"last_name,omitempty"`
	Bio       string `gorm:"type:text" json:"bio,omitempty"`
	Role      string `gorm:"default:'user';not null" json:"role"`

	// IsSuperuser counts as admin in every permission check.
	IsSuperuser bool `gorm:"default:false;not null" json:"-"`

	// IsActive stays false until the confirmation code is verified.
	IsActive bool `gorm:"default:false;not null" json:"is_active"`

	// ConfirmationHash holds a bcrypt hash of the last issued code;
	// the plain code only ever travels by mail.
	ConfirmationHash string     `gorm:"size:200" json:"-"`
	CodeExpiresAt    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}
