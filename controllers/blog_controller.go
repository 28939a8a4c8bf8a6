package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

// BlogController manages the blog feed, single-blog reads, authoring
// operations and the like/bookmark toggles.
type BlogController struct {
	db *gorm.DB
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

type blogInput struct {
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Excerpt       string           `json:"excerpt"`
	Tags          models.TagsField `json:"tags"`
	Category      string           `json:"category"`
	FeaturedImage string           `json:"featured_image"`
	Status        string           `json:"status"`
}

// List serves the public feed with filtering, sorting and pagination.
func (b *BlogController) List(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	filters := feedFiltersFromQuery(ctx)
	order := feedOrderFromQuery(ctx)

	viewerID, hasViewer := getUserID(ctx)

	// Anonymous, non-search pages are cacheable: the response carries no
	// viewer-relative flags and search terms would explode the key space.
	cacheKey := ""
	if !hasViewer && filters.Search == "" {
		cacheKey = fmt.Sprintf("%scat=%s:tags=%s:author=%d:order=%s:page=%d:limit=%d",
			utils.CachePrefixFeed, filters.Category, strings.Join(filters.Tags, ","),
			filters.AuthorID, order, page, limit)
		if body, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	query := buildFeedQuery(b.db, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count blogs")
		return
	}

	var blogs []models.Blog
	if err := query.Preload("Author").
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to list blogs")
		return
	}

	if err := enrichBlogs(b.db, blogs, viewerID, hasViewer); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load blog counters")
		return
	}

	payload := gin.H{
		"items":      blogs,
		"pagination": newPagination(page, limit, total),
	}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// Get returns a single blog. Drafts and soft-deleted blogs stay invisible to
// everyone but their author. Each successful public read bumps the view
// counter without blocking the response.
func (b *BlogController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid blog id")
		return
	}
	viewerID, hasViewer := getUserID(ctx)

	var blog models.Blog
	if err := b.db.Preload("Author").Where("is_deleted = ?", false).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load blog")
		return
	}
	if blog.Status != models.StatusPublished && (!hasViewer || blog.AuthorID != viewerID) {
		// A draft reads as absent, not forbidden, to avoid leaking existence.
		utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
		return
	}

	blogs := []models.Blog{blog}
	if err := enrichBlogs(b.db, blogs, viewerID, hasViewer); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load blog counters")
		return
	}
	blog = blogs[0]

	// Best-effort view count; a lost increment is acceptable.
	go func(db *gorm.DB, blogID uint) {
		defer func() { _ = recover() }()
		_ = db.Model(&models.Blog{}).Where("id = ?", blogID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	}(b.db, blog.ID)
	blog.ViewCount++

	utils.Success(ctx, gin.H{"blog": blog})
}

// Create publishes a new blog for the authenticated user. Read time and, when
// absent, the excerpt are derived from the content before the row is written.
func (b *BlogController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req blogInput
	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		// Multipart create carries the featured image inline. A failed image
		// save degrades to a blog without one rather than rejecting the post.
		req = blogInputFromForm(ctx)
		if file, err := ctx.FormFile("featured_image"); err == nil {
			if url, saveErr := saveUploadedImage(b.db, ctx, userID, file); saveErr == nil {
				req.FeaturedImage = url
			} else if utils.Sugar != nil {
				utils.Sugar.Warnf("featured image save failed for user %d: %v", userID, saveErr)
			}
		}
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	title := utils.StripTags(strings.TrimSpace(req.Title))
	content := utils.Sanitize(req.Content)
	category := strings.ToLower(strings.TrimSpace(req.Category))
	status := strings.TrimSpace(req.Status)
	tags := models.NormalizeTags(req.Tags)

	if violations := validateBlogInput(title, content, category, status, tags); len(violations) > 0 {
		utils.ValidationFailed(ctx, 40012, violations)
		return
	}
	if category == "" {
		category = models.CategoryGeneral
	}
	if status == "" {
		status = models.StatusPublished
	}

	blog := models.Blog{
		AuthorID:      userID,
		Title:         title,
		Content:       content,
		Excerpt:       utils.StripTags(strings.TrimSpace(req.Excerpt)),
		Tags:          tags,
		Category:      category,
		FeaturedImage: strings.TrimSpace(req.FeaturedImage),
		Status:        status,
	}

	if err := b.db.Create(&blog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to create blog")
		return
	}
	if err := b.db.Preload("Author").First(&blog, blog.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load blog")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixFeed)

	utils.Created(ctx, gin.H{"blog": blog})
}

// Update lets the author modify their blog. Content changes recompute the
// read time; the excerpt is re-derived only when the request leaves it empty.
func (b *BlogController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req blogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid request payload")
		return
	}

	// Mutation lookups see soft-deleted rows so the ownership check still
	// runs; the deleted state itself then reads as gone.
	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to load blog")
		return
	}
	if blog.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40310, "you can only update your own blogs")
		return
	}
	if blog.IsDeleted {
		utils.Error(ctx, http.StatusNotFound, 40411, "blog not found")
		return
	}

	title := utils.StripTags(strings.TrimSpace(req.Title))
	content := utils.Sanitize(req.Content)
	category := strings.ToLower(strings.TrimSpace(req.Category))
	status := strings.TrimSpace(req.Status)
	tags := models.NormalizeTags(req.Tags)

	if violations := validateBlogInput(title, content, category, status, tags); len(violations) > 0 {
		utils.ValidationFailed(ctx, 40015, violations)
		return
	}

	contentChanged := content != blog.Content

	blog.Title = title
	blog.Content = content
	blog.Tags = tags
	blog.FeaturedImage = strings.TrimSpace(req.FeaturedImage)
	if category != "" {
		blog.Category = category
	}
	if status != "" {
		blog.Status = status
	}
	blog.Excerpt = utils.StripTags(strings.TrimSpace(req.Excerpt))
	if contentChanged || blog.Excerpt == "" {
		blog.ReadTime = models.DeriveReadTime(blog.Content)
		if blog.Excerpt == "" {
			blog.Excerpt = models.DeriveExcerpt(blog.Content)
		}
	}
	blog.UpdatedAt = time.Now()

	if err := b.db.Save(&blog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to update blog")
		return
	}
	if err := b.db.Preload("Author").First(&blog, blog.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50019, "failed to load blog")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixFeed)
	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(blog.ID)))

	utils.Success(ctx, gin.H{"blog": blog})
}

// Delete soft-deletes the author's blog. The row stays for audit; every read
// path filters it out from then on.
func (b *BlogController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40016, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load blog")
		return
	}
	if blog.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40311, "you can only delete your own blogs")
		return
	}
	if blog.IsDeleted {
		utils.Error(ctx, http.StatusNotFound, 40412, "blog not found")
		return
	}

	if err := b.db.Model(&blog).Updates(map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to delete blog")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixFeed)
	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(blog.ID)))

	utils.Success(ctx, gin.H{"message": "blog deleted"})
}

// ToggleLike flips the viewer's like on a blog. Delete-first keeps the
// operation idempotent per state: whichever toggle loses a race still leaves
// at most one membership row behind.
func (b *BlogController) ToggleLike(ctx *gin.Context) {
	b.toggleMembership(ctx, "like")
}

// ToggleBookmark flips the viewer's bookmark on a blog.
func (b *BlogController) ToggleBookmark(ctx *gin.Context) {
	b.toggleMembership(ctx, "bookmark")
}

func (b *BlogController) toggleMembership(ctx *gin.Context, kind string) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	var blog models.Blog
	if err := b.db.Where("is_deleted = ? AND status = ?", false, models.StatusPublished).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40413, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load blog")
		return
	}

	var state string
	var err error
	switch kind {
	case "like":
		state, err = toggleRow(b.db, &models.BlogLike{BlogID: blog.ID, UserID: userID},
			"blog_id = ? AND user_id = ?", blog.ID, userID)
	default:
		state, err = toggleRow(b.db, &models.BlogBookmark{BlogID: blog.ID, UserID: userID},
			"blog_id = ? AND user_id = ?", blog.ID, userID)
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to toggle "+kind)
		return
	}

	// A toggle counts as activity on the blog itself.
	if err := b.db.Model(&models.Blog{}).Where("id = ?", blog.ID).
		UpdateColumn("updated_at", time.Now()).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to touch blog")
		return
	}

	var count int64
	if kind == "like" {
		err = b.db.Model(&models.BlogLike{}).Where("blog_id = ?", blog.ID).Count(&count).Error
	} else {
		err = b.db.Model(&models.BlogBookmark{}).Where("blog_id = ?", blog.ID).Count(&count).Error
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count "+kind+"s")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(blog.ID)))

	utils.Success(ctx, gin.H{"new_state": state, "count": count})
}

// toggleRow removes the membership row when present, otherwise inserts it.
// The insert ignores duplicate-key conflicts so two adds racing for the same
// pair converge on a single row.
func toggleRow(db *gorm.DB, row interface{}, where string, args ...interface{}) (string, error) {
	res := db.Where(where, args...).Delete(row)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return "removed", nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return "", err
	}
	return "added", nil
}
