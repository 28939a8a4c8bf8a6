package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

// Owner and per-author listings. These share the feed predicate and
// enrichment with the public feed; only visibility differs.

// ListMine returns the authenticated user's blogs, drafts included.
func (b *BlogController) ListMine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40118, "unauthorized")
		return
	}
	b.listForAuthor(ctx, userID, true)
}

// ListByUser returns a user's published blogs. The profile owner sees their
// drafts too.
func (b *BlogController) ListByUser(ctx *gin.Context) {
	authorID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}
	viewerID, hasViewer := getUserID(ctx)
	b.listForAuthor(ctx, authorID, hasViewer && viewerID == authorID)
}

func (b *BlogController) listForAuthor(ctx *gin.Context, authorID uint, includeDrafts bool) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	filters := feedFiltersFromQuery(ctx)
	filters.AuthorID = authorID
	filters.IncludeDrafts = includeDrafts
	viewerID, hasViewer := getUserID(ctx)

	query := buildFeedQuery(b.db, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count blogs")
		return
	}

	var blogs []models.Blog
	if err := query.Preload("Author").
		Order(feedOrderFromQuery(ctx)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list blogs")
		return
	}

	if err := enrichBlogs(b.db, blogs, viewerID, hasViewer); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load blog counters")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      blogs,
		"pagination": newPagination(page, limit, total),
	})
}

// ListBookmarks returns the viewer's bookmarked blogs, most recently
// bookmarked first. Blogs that were unpublished or deleted since being
// bookmarked drop out of the listing.
func (b *BlogController) ListBookmarks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40119, "unauthorized")
		return
	}
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))

	base := b.db.Model(&models.Blog{}).
		Joins("JOIN blog_bookmarks ON blog_bookmarks.blog_id = blogs.id").
		Where("blog_bookmarks.user_id = ?", userID).
		Where("blogs.is_deleted = ? AND blogs.status = ?", false, models.StatusPublished)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to count bookmarks")
		return
	}

	var blogs []models.Blog
	if err := base.Preload("Author").
		Order("blog_bookmarks.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list bookmarks")
		return
	}

	if err := enrichBlogs(b.db, blogs, userID, true); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load blog counters")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      blogs,
		"pagination": newPagination(page, limit, total),
	})
}

// ListCategories serves the taxonomy with live published-blog counts per
// category.
func (b *BlogController) ListCategories(ctx *gin.Context) {
	type categoryRow struct {
		Category string `json:"category"`
		N        int64  `json:"blog_count"`
	}
	var rows []categoryRow
	if err := b.db.Model(&models.Blog{}).
		Select("category, COUNT(*) AS n").
		Where("is_deleted = ? AND status = ?", false, models.StatusPublished).
		Group("category").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to count categories")
		return
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.N
	}

	items := make([]categoryRow, 0, len(models.Taxonomy()))
	for _, name := range models.Taxonomy() {
		items = append(items, categoryRow{Category: name, N: counts[name]})
	}
	utils.Success(ctx, gin.H{"categories": items})
}
