package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reader response on a blog. A nil ParentID marks a top-level
// comment; a non-nil one points at another comment of the same blog. The
// parent is validated at creation time only.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;index:idx_comments_blog_created" json:"blog_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `gorm:"index:idx_comments_blog_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// Viewer-relative projection, computed per response.
	LikeCount int64 `gorm:"-" json:"like_count"`
	IsLiked   bool  `gorm:"-" json:"is_liked"`
}

// BeforeCreate backfills timestamps when not provided.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return nil
}
