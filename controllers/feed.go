package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/middleware"
	"github.com/hexleaf/inkwell/models"
)

// Pagination is the envelope attached to every list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func parsePagination(pageStr, limitStr string) (int, int) {
	page := 1
	limit := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
		if limit > 50 {
			limit = 50
		}
	}
	return page, limit
}

// feedFilters captures the query-string filters of a blog list request.
// All filters are optional and AND-combined.
type feedFilters struct {
	Tags     []string
	Category string
	AuthorID uint
	Search   string
	// IncludeDrafts widens visibility to the author's own drafts; only the
	// owner-scoped listings set it.
	IncludeDrafts bool
}

func feedFiltersFromQuery(ctx *gin.Context) feedFilters {
	f := feedFilters{
		Tags:     splitTagsParam(ctx.Query("tags"), ctx.Query("tag")),
		Category: strings.ToLower(strings.TrimSpace(ctx.Query("category"))),
		Search:   strings.TrimSpace(ctx.Query("search")),
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(ctx.Query("author")), 10, 32); err == nil && id > 0 {
		f.AuthorID = uint(id)
	}
	return f
}

// splitTagsParam accepts `tags` as a comma-separated list (with `tag` as a
// single-value alias) and normalizes each piece the way stored tags are
// normalized, so the filter always compares canonical forms.
func splitTagsParam(tags, tag string) []string {
	raw := tags
	if raw == "" {
		raw = tag
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return models.NormalizeTags(strings.Split(raw, ","))
}

// buildFeedQuery translates filters into a single predicate shared by the
// page query and the count query, so pagination totals always agree with the
// rows served.
func buildFeedQuery(db *gorm.DB, f feedFilters) *gorm.DB {
	q := db.Model(&models.Blog{}).Where("is_deleted = ?", false)
	if f.IncludeDrafts {
		// Owner listings show drafts too; everything else is published-only.
		q = q.Where("author_id = ?", f.AuthorID)
	} else {
		q = q.Where("status = ?", models.StatusPublished)
		if f.AuthorID != 0 {
			q = q.Where("author_id = ?", f.AuthorID)
		}
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if len(f.Tags) > 0 {
		// Tags live in a JSON text column; matching the quoted form keeps
		// "go" from matching "golang". A blog matches when it carries any of
		// the supplied tags.
		conds := make([]string, 0, len(f.Tags))
		args := make([]interface{}, 0, len(f.Tags))
		for _, tag := range f.Tags {
			conds = append(conds, `tags LIKE ?`)
			args = append(args, `%"`+tag+`"%`)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR content LIKE ? OR tags LIKE ?)", pattern, pattern, pattern)
	}
	return q
}

// feedSortColumns whitelists the columns a client may sort by. Both snake and
// camel forms of a name map onto the real column so neither client style can
// inject an ORDER BY expression.
var feedSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"view_count": "view_count",
	"viewCount":  "view_count",
	"read_time":  "read_time",
	"readTime":   "read_time",
	"title":      "title",
}

// feedOrder resolves the sort of a list request. An explicit whitelisted
// sort_by column wins (descending unless order=asc); otherwise the named
// presets apply, and anything unknown falls back to newest.
func feedOrder(sort, sortBy, order string) string {
	if col, ok := feedSortColumns[sortBy]; ok {
		if order == "asc" {
			return col + " ASC"
		}
		return col + " DESC"
	}
	switch sort {
	case "oldest":
		return "created_at ASC"
	case "popular":
		return "view_count DESC, created_at DESC"
	default: // "newest"
		return "created_at DESC"
	}
}

// feedOrderFromQuery pulls the sort parameters out of the request.
func feedOrderFromQuery(ctx *gin.Context) string {
	sortBy := strings.TrimSpace(ctx.Query("sort_by"))
	if sortBy == "" {
		sortBy = strings.TrimSpace(ctx.Query("sortBy"))
	}
	order := strings.ToLower(strings.TrimSpace(ctx.Query("order")))
	return feedOrder(strings.TrimSpace(ctx.Query("sort")), sortBy, order)
}

// enrichBlogs fills the per-response projection on each blog: like, bookmark
// and comment counts, plus the viewer's own membership flags when a
// viewer is signed in. Counts come from three grouped queries regardless of
// page size; blogs with no rows simply keep zero.
func enrichBlogs(db *gorm.DB, blogs []models.Blog, viewerID uint, hasViewer bool) error {
	if len(blogs) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.ID)
	}

	type countRow struct {
		BlogID uint
		N      int64
	}

	likeCounts := map[uint]int64{}
	var rows []countRow
	if err := db.Model(&models.BlogLike{}).
		Select("blog_id, COUNT(*) AS n").
		Where("blog_id IN ?", ids).
		Group("blog_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		likeCounts[r.BlogID] = r.N
	}

	bookmarkCounts := map[uint]int64{}
	rows = rows[:0]
	if err := db.Model(&models.BlogBookmark{}).
		Select("blog_id, COUNT(*) AS n").
		Where("blog_id IN ?", ids).
		Group("blog_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		bookmarkCounts[r.BlogID] = r.N
	}

	commentCounts, err := commentCountByBlog(db, ids)
	if err != nil {
		return err
	}

	liked := map[uint]bool{}
	bookmarked := map[uint]bool{}
	if hasViewer {
		var likedIDs []uint
		if err := db.Model(&models.BlogLike{}).
			Where("user_id = ? AND blog_id IN ?", viewerID, ids).
			Pluck("blog_id", &likedIDs).Error; err != nil {
			return err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
		var bookmarkedIDs []uint
		if err := db.Model(&models.BlogBookmark{}).
			Where("user_id = ? AND blog_id IN ?", viewerID, ids).
			Pluck("blog_id", &bookmarkedIDs).Error; err != nil {
			return err
		}
		for _, id := range bookmarkedIDs {
			bookmarked[id] = true
		}
	}

	for i := range blogs {
		id := blogs[i].ID
		blogs[i].LikeCount = likeCounts[id]
		blogs[i].BookmarkCount = bookmarkCounts[id]
		blogs[i].CommentCount = commentCounts[id]
		blogs[i].IsLiked = liked[id]
		blogs[i].IsBookmarked = bookmarked[id]
	}
	return nil
}

// commentCountByBlog returns live comment counts for the given blogs in one
// grouped query. Replies count like any other comment; soft-deleted ones do
// not.
func commentCountByBlog(db *gorm.DB, blogIDs []uint) (map[uint]int64, error) {
	type countRow struct {
		BlogID uint
		N      int64
	}
	var rows []countRow
	if err := db.Model(&models.Comment{}).
		Select("blog_id, COUNT(*) AS n").
		Where("blog_id IN ? AND is_deleted = ?", blogIDs, false).
		Group("blog_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.BlogID] = r.N
	}
	return counts, nil
}

func getUserID(ctx *gin.Context) (uint, bool) {
	return middleware.CurrentUserID(ctx)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
