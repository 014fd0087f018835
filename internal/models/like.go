package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like represents a fingerprint's endorsement of a post.
// The combination of PostID and Fingerprint must be unique.
type Like struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_fingerprint" json:"post_id"`
	Fingerprint string    `gorm:"size:128;not null;uniqueIndex:idx_likes_post_fingerprint" json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns an opaque identifier when none is set.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
