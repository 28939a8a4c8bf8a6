package models

import (
	"math"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Blog statuses. Creation defaults to published; drafts only appear through
// explicit status updates.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	wordsPerMinute   = 200
	excerptRuneLimit = 150
)

var markupTag = regexp.MustCompile(`<[^>]*>`)

// Blog represents a published or draft article. Interaction counts and
// viewer flags are never persisted; they are recomputed for every response
// from the membership tables and the comment aggregation.
type Blog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AuthorID      uint      `gorm:"not null;index:idx_blogs_author_created" json:"author_id"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Excerpt       string    `gorm:"size:200" json:"excerpt"`
	Tags          TagList   `gorm:"type:text" json:"tags"`
	Category      string    `gorm:"size:30;not null;index" json:"category"`
	FeaturedImage string    `gorm:"size:512" json:"featured_image"`
	Status        string    `gorm:"size:16;not null;default:'published';index:idx_blogs_feed" json:"status"`
	ViewCount     int64     `gorm:"not null;default:0" json:"view_count"`
	ReadTime      int       `gorm:"not null;default:1" json:"read_time"`
	IsDeleted     bool      `gorm:"not null;default:false;index:idx_blogs_feed" json:"-"`
	CreatedAt     time.Time `gorm:"index:idx_blogs_author_created" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Author        User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// Viewer-relative projection, computed per response.
	LikeCount     int64 `gorm:"-" json:"like_count"`
	BookmarkCount int64 `gorm:"-" json:"bookmark_count"`
	CommentCount  int64 `gorm:"-" json:"comment_count"`
	IsLiked       bool  `gorm:"-" json:"is_liked"`
	IsBookmarked  bool  `gorm:"-" json:"is_bookmarked"`
}

// BeforeCreate derives content metadata and backfills timestamps.
func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	b.ApplyContentMetadata()
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

// ApplyContentMetadata recomputes the read time and, when no excerpt was
// supplied, derives one from the content. Callers invoke it whenever the
// content changes; it is a no-op in effect for unchanged content.
func (b *Blog) ApplyContentMetadata() {
	b.ReadTime = DeriveReadTime(b.Content)
	if b.Excerpt == "" {
		b.Excerpt = DeriveExcerpt(b.Content)
	}
}

// DeriveReadTime estimates reading minutes at 200 words per minute, never
// reporting below one minute.
func DeriveReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// DeriveExcerpt strips markup tags from the content and returns the first
// 150 characters, with a trailing ellipsis only when text was cut off.
func DeriveExcerpt(content string) string {
	plain := markupTag.ReplaceAllString(content, "")
	runes := []rune(plain)
	if len(runes) <= excerptRuneLimit {
		return plain
	}
	return string(runes[:excerptRuneLimit]) + "..."
}
