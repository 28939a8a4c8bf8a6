package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

// CommentController serves the two-level comment tree of a blog and the
// comment write operations.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// commentNode is a top-level comment with its replies attached. Replies are
// served oldest-first and are never paginated; only the top level pages.
type commentNode struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

// List returns one page of a blog's comment tree. The top level is newest
// first; the pagination total counts top-level comments only.
func (c *CommentController) List(ctx *gin.Context) {
	blogID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid blog id")
		return
	}
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	viewerID, hasViewer := getUserID(ctx)

	var blog models.Blog
	if err := c.db.Where("is_deleted = ? AND status = ?", false, models.StatusPublished).
		First(&blog, blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load blog")
		return
	}

	cacheKey := ""
	if !hasViewer {
		cacheKey = fmt.Sprintf("%s%d:comments:page=%d:limit=%d", utils.CachePrefixBlog, blogID, page, limit)
		if body, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	topLevel := c.db.Model(&models.Comment{}).
		Where("blog_id = ? AND parent_id IS NULL AND is_deleted = ?", blogID, false)

	var total int64
	if err := topLevel.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count comments")
		return
	}

	var parents []models.Comment
	if err := topLevel.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&parents).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list comments")
		return
	}

	nodes, err := c.attachReplies(blogID, parents)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load replies")
		return
	}

	if err := c.enrichNodes(nodes, viewerID, hasViewer); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comment counters")
		return
	}

	payload := gin.H{
		"items":      nodes,
		"pagination": newPagination(page, limit, total),
	}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// attachReplies loads every reply of the page's parents in one query and
// groups them oldest-first under their parent.
func (c *CommentController) attachReplies(blogID uint, parents []models.Comment) ([]commentNode, error) {
	nodes := make([]commentNode, 0, len(parents))
	if len(parents) == 0 {
		return nodes, nil
	}

	parentIDs := make([]uint, 0, len(parents))
	for _, p := range parents {
		parentIDs = append(parentIDs, p.ID)
	}

	var replies []models.Comment
	if err := c.db.Preload("Author").
		Where("blog_id = ? AND parent_id IN ? AND is_deleted = ?", blogID, parentIDs, false).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}

	byParent := make(map[uint][]models.Comment, len(parents))
	for _, r := range replies {
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}

	for _, p := range parents {
		children := byParent[p.ID]
		if children == nil {
			children = []models.Comment{}
		}
		nodes = append(nodes, commentNode{Comment: p, Replies: children})
	}
	return nodes, nil
}

// enrichNodes fills like counts and the viewer's like flag across the whole
// tree page, parents and replies alike, from two grouped queries.
func (c *CommentController) enrichNodes(nodes []commentNode, viewerID uint, hasViewer bool) error {
	var ids []uint
	for i := range nodes {
		ids = append(ids, nodes[i].ID)
		for j := range nodes[i].Replies {
			ids = append(ids, nodes[i].Replies[j].ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	type countRow struct {
		CommentID uint
		N         int64
	}
	var rows []countRow
	if err := c.db.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CommentID] = r.N
	}

	liked := map[uint]bool{}
	if hasViewer {
		var likedIDs []uint
		if err := c.db.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, ids).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	for i := range nodes {
		nodes[i].LikeCount = counts[nodes[i].ID]
		nodes[i].IsLiked = liked[nodes[i].ID]
		for j := range nodes[i].Replies {
			r := &nodes[i].Replies[j]
			r.LikeCount = counts[r.ID]
			r.IsLiked = liked[r.ID]
		}
	}
	return nil
}

// Create adds a comment or reply to a published blog. A reply's parent must
// be a live comment of the same blog.
func (c *CommentController) Create(ctx *gin.Context) {
	blogID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if violations := validateCommentContent(content); len(violations) > 0 {
		utils.ValidationFailed(ctx, 40043, violations)
		return
	}

	var blog models.Blog
	if err := c.db.Where("is_deleted = ? AND status = ?", false, models.StatusPublished).
		First(&blog, blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load blog")
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := c.db.Where("id = ? AND blog_id = ? AND is_deleted = ?", *req.ParentID, blogID, false).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusNotFound, 40422, "parent comment not found")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to load parent comment")
			return
		}
	}

	comment := models.Comment{
		BlogID:   blog.ID,
		AuthorID: userID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to create comment")
		return
	}
	if err := c.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to load comment")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(blog.ID)))
	utils.InvalidateByPrefix(utils.CachePrefixFeed)

	utils.Created(ctx, gin.H{"comment": comment})
}

// Delete soft-deletes the viewer's own comment. Replies under a deleted
// top-level comment disappear with it from the listing.
func (c *CommentController) Delete(ctx *gin.Context) {
	commentID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid comment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40116, "unauthorized")
		return
	}

	var comment models.Comment
	if err := c.db.Where("is_deleted = ?", false).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40423, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to load comment")
		return
	}
	if comment.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40312, "you can only delete your own comments")
		return
	}

	if err := c.db.Model(&comment).Updates(map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(comment.BlogID)))
	utils.InvalidateByPrefix(utils.CachePrefixFeed)

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// ToggleLike flips the viewer's like on a comment, same delete-first shape as
// the blog toggles.
func (c *CommentController) ToggleLike(ctx *gin.Context) {
	commentID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid comment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40117, "unauthorized")
		return
	}

	var comment models.Comment
	if err := c.db.Where("is_deleted = ?", false).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40424, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load comment")
		return
	}

	state, err := toggleRow(c.db, &models.CommentLike{CommentID: comment.ID, UserID: userID},
		"comment_id = ? AND user_id = ?", comment.ID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to toggle like")
		return
	}

	// A toggle counts as activity on the comment itself.
	if err := c.db.Model(&models.Comment{}).Where("id = ?", comment.ID).
		UpdateColumn("updated_at", time.Now()).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to touch comment")
		return
	}

	var count int64
	if err := c.db.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to count likes")
		return
	}

	utils.InvalidateByPrefix(utils.CachePrefixBlog + strconv.Itoa(int(comment.BlogID)))

	utils.Success(ctx, gin.H{"new_state": state, "count": count})
}
