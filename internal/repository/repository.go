// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"snapgram/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetByEmail returns nil, nil when no user has the address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SearchByName(ctx context.Context, fragment string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// PostRepository defines persistence operations for posts, including the
// atomic like toggle.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByTag(ctx context.Context, tag string) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	// Update writes every mutable field except likes.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// Like adds userID to the post's like set and returns the new count.
	Like(ctx context.Context, postID, userID string) (int, error)
	// Unlike removes userID from the post's like set and returns the new count.
	Unlike(ctx context.Context, postID, userID string) (int, error)
}

// Messages for like toggle conflicts.
const (
	MsgAlreadyLiked = "User has already liked this post!"
	MsgNotLiked     = "User has not liked this post yet!"
	MsgEmailTaken   = "A user with this email already exists!"
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching fragment anywhere.
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
}
