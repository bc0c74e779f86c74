// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email" bson:"email"`
	PasswordHash      string    `gorm:"column:password;not null" json:"-" bson:"password"`
	Name              string    `gorm:"not null;index" json:"name" bson:"name"`
	Username          string    `json:"username,omitempty" bson:"username,omitempty"`
	ProfilePictureURL string    `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	ProfilePictureKey string    `json:"-" bson:"profilePictureKey,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate assigns an ID when the caller has not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.EnsureID()
	return nil
}

// EnsureID assigns a fresh UUID if the user has no ID yet.
func (u *User) EnsureID() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
