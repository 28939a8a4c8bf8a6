package models

import "time"

// Interaction membership rows. One row per (subject, user) pair; the
// composite unique index keeps membership at-most-once even when two
// toggles for the same pair race.

// BlogLike records that a user likes a blog.
type BlogLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_likes_member" json:"blog_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_likes_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BlogBookmark records that a user bookmarked a blog.
type BlogBookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_bookmarks_member" json:"blog_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_bookmarks_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike records that a user likes a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_member" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
