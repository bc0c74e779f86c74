package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength bounds a single comment on a post.
const MaxCommentLength = 50

// Likes tracks who liked a post. Count always equals len(Users).
type Likes struct {
	Count int      `gorm:"column:likes_count;not null;default:0" json:"count" bson:"count"`
	Users []string `gorm:"-" json:"users" bson:"users"`
}

// Post represents a user post with optional hosted media.
type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Title       string    `gorm:"not null" json:"title" bson:"title"`
	Description string    `gorm:"type:text;not null" json:"description" bson:"description"`
	MediaURL    string    `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	MediaKey    string    `json:"-" bson:"mediaKey,omitempty"`
	UserID      string    `gorm:"size:36;not null;index" json:"user" bson:"user"`
	Tags        []string  `gorm:"-" json:"tags" bson:"tags"`
	Comments    []string  `gorm:"serializer:json;type:text" json:"comments" bson:"comments"`
	Likes       Likes     `gorm:"embedded" json:"likes" bson:"likes"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PostLike is one membership row of a post's like set.
type PostLike struct {
	PostID    string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// PostTag attaches a tag to a post. Position keeps the caller's ordering.
type PostTag struct {
	PostID   string `gorm:"primaryKey;size:36"`
	Tag      string `gorm:"primaryKey;size:100;index"`
	Position int    `gorm:"not null;default:0"`
}

// BeforeCreate assigns an ID when the caller has not.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	p.EnsureID()
	return nil
}

// EnsureID assigns a fresh UUID if the post has no ID yet.
func (p *Post) EnsureID() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
}

// Normalize replaces nil collections with empty ones so responses and
// documents never carry null arrays.
func (p *Post) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []string{}
	}
	if p.Likes.Users == nil {
		p.Likes.Users = []string{}
	}
}

// NormalizeTags trims tags, drops empties and duplicates, and keeps order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
