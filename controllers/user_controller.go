package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

// UserController serves public author profiles and the viewer's own stats.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new UserController instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// Get returns a public profile. The email is included only when the viewer
// requests their own profile.
func (u *UserController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid user id")
		return
	}
	viewerID, hasViewer := getUserID(ctx)

	var user models.User
	if err := u.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load user")
		return
	}
	if !hasViewer || viewerID != user.ID {
		user.Email = ""
	}

	var blogCount int64
	if err := u.db.Model(&models.Blog{}).
		Where("author_id = ? AND is_deleted = ? AND status = ?", user.ID, false, models.StatusPublished).
		Count(&blogCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to count blogs")
		return
	}

	utils.Success(ctx, gin.H{
		"user":       user,
		"blog_count": blogCount,
	})
}

// Stats summarizes the viewer's authoring footprint: blog totals by status
// plus views, likes, bookmarks and comments accumulated across their blogs.
func (u *UserController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var totalBlogs, published int64
	if err := u.db.Model(&models.Blog{}).
		Where("author_id = ? AND is_deleted = ?", userID, false).
		Count(&totalBlogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to count blogs")
		return
	}
	if err := u.db.Model(&models.Blog{}).
		Where("author_id = ? AND is_deleted = ? AND status = ?", userID, false, models.StatusPublished).
		Count(&published).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to count blogs")
		return
	}
	drafts := totalBlogs - published

	var totalViews int64
	if err := u.db.Model(&models.Blog{}).
		Where("author_id = ? AND is_deleted = ?", userID, false).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&totalViews).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to sum views")
		return
	}

	blogIDs := u.db.Model(&models.Blog{}).
		Select("id").
		Where("author_id = ? AND is_deleted = ?", userID, false)

	var totalLikes int64
	if err := u.db.Model(&models.BlogLike{}).
		Where("blog_id IN (?)", blogIDs).
		Count(&totalLikes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to count likes")
		return
	}

	var totalBookmarks int64
	if err := u.db.Model(&models.BlogBookmark{}).
		Where("blog_id IN (?)", blogIDs).
		Count(&totalBookmarks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to count bookmarks")
		return
	}

	var totalComments int64
	if err := u.db.Model(&models.Comment{}).
		Where("blog_id IN (?) AND is_deleted = ?", blogIDs, false).
		Count(&totalComments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to count comments")
		return
	}

	var recentBlogs int64
	if err := u.db.Model(&models.Blog{}).
		Where("author_id = ? AND is_deleted = ? AND created_at >= ?", userID, false, time.Now().AddDate(0, 0, -30)).
		Count(&recentBlogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to count recent blogs")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50078, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"stats": gin.H{
			"total_blogs":     totalBlogs,
			"published_blogs": published,
			"draft_blogs":     drafts,
			"total_views":     totalViews,
			"total_likes":     totalLikes,
			"total_bookmarks": totalBookmarks,
			"total_comments":  totalComments,
			"recent_blogs":    recentBlogs,
			"joined_at":       user.CreatedAt,
		},
	})
}
