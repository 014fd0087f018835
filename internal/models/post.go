// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxExcerptLength is the storage limit for Post.Excerpt, in characters.
const MaxExcerptLength = 600

// Post sources recorded on creation.
const (
	PostSourceForm     = "form"
	PostSourceMarkdown = "markdown"
	PostSourceSeed     = "seed"
)

// Post represents a published article.
type Post struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Slug    string `gorm:"not null;uniqueIndex:idx_posts_slug" json:"slug"`
	Title   string `gorm:"not null" json:"title"`
	Excerpt string `gorm:"size:600;not null;default:''" json:"excerpt"`
	Content string `gorm:"type:text;not null" json:"content"`
	Views   int    `gorm:"not null;default:0" json:"views"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"like_count"`
	// Liked reports whether the requesting fingerprint liked this post (computed)
	Liked     bool      `gorm:"-" json:"liked"`
	Likes     []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an opaque identifier when none is set.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ClampExcerpt truncates s to MaxExcerptLength characters.
func ClampExcerpt(s string) string {
	return Truncate(s, MaxExcerptLength)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
