package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexleaf/inkwell/models"
)

type blogListData struct {
	Items []struct {
		ID            uint     `json:"id"`
		Title         string   `json:"title"`
		Category      string   `json:"category"`
		Tags          []string `json:"tags"`
		LikeCount     int64    `json:"like_count"`
		CommentCount  int64    `json:"comment_count"`
		BookmarkCount int64    `json:"bookmark_count"`
		IsLiked       bool     `json:"is_liked"`
		ViewCount     int64    `json:"view_count"`
	} `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func TestFeedPagination(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "feedauthor")

	for i := 0; i < 12; i++ {
		createBlog(t, r, token, map[string]interface{}{
			"title":   fmt.Sprintf("post %02d", i),
			"content": "feed pagination content",
		})
	}

	w := performRequest(r, http.MethodGet, "/api/v1/blogs?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data blogListData
	decodeData(t, w, &data)

	assert.Len(t, data.Items, 5)
	assert.Equal(t, int64(12), data.Pagination.Total)
	assert.Equal(t, 3, data.Pagination.TotalPages)
	assert.True(t, data.Pagination.HasNext)
	assert.True(t, data.Pagination.HasPrev)

	// Last page is a partial page with no next.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?page=3&limit=5", "", nil)
	decodeData(t, w, &data)
	assert.Len(t, data.Items, 2)
	assert.False(t, data.Pagination.HasNext)
	assert.True(t, data.Pagination.HasPrev)

	// Beyond the last page: empty items, same totals.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?page=9&limit=5", "", nil)
	decodeData(t, w, &data)
	assert.Empty(t, data.Items)
	assert.Equal(t, int64(12), data.Pagination.Total)

	// An oversized limit is clamped to 50, not dropped to the default.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?limit=500", "", nil)
	decodeData(t, w, &data)
	assert.Len(t, data.Items, 12)
	assert.Equal(t, 50, data.Pagination.Limit)
}

func TestFeedFilters(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "filterauthor")

	createBlog(t, r, token, map[string]interface{}{
		"title":    "go concurrency",
		"content":  "about goroutines",
		"tags":     []string{"go", "concurrency"},
		"category": "technology",
	})
	createBlog(t, r, token, map[string]interface{}{
		"title":    "sourdough basics",
		"content":  "about bread",
		"tags":     []string{"baking"},
		"category": "lifestyle",
	})

	w := performRequest(r, http.MethodGet, "/api/v1/blogs?tag=go", "", nil)
	var data blogListData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "go concurrency", data.Items[0].Title)

	// "go" must not match a blog tagged "golang" only.
	createBlog(t, r, token, map[string]interface{}{
		"title":   "golang tooling",
		"content": "about tools",
		"tags":    []string{"golang"},
	})
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?tag=go", "", nil)
	decodeData(t, w, &data)
	assert.Len(t, data.Items, 1)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs?category=lifestyle", "", nil)
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "sourdough basics", data.Items[0].Title)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs?search=bread", "", nil)
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "sourdough basics", data.Items[0].Title)
}

func TestFeedHidesDraftsAndDeleted(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "draftauthor")

	createBlog(t, r, token, map[string]interface{}{
		"title":   "published one",
		"content": "visible",
	})
	createBlog(t, r, token, map[string]interface{}{
		"title":   "secret draft",
		"content": "hidden",
		"status":  "draft",
	})
	deletedID := createBlog(t, r, token, map[string]interface{}{
		"title":   "to be removed",
		"content": "gone soon",
	})
	w := performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/blogs/%d", deletedID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs", "", nil)
	var data blogListData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "published one", data.Items[0].Title)

	// The owner's listing still shows the draft but never the deleted blog.
	w = performRequest(r, http.MethodGet, "/api/v1/users/me/blogs", token, nil)
	decodeData(t, w, &data)
	assert.Len(t, data.Items, 2)
}

func TestFeedSortOrders(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "sortauthor")

	oldID := createBlog(t, r, token, map[string]interface{}{"title": "older", "content": "a"})
	newID := createBlog(t, r, token, map[string]interface{}{"title": "newer", "content": "b"})

	base := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Blog{}).Where("id = ?", oldID).
		Update("created_at", base).Error)
	require.NoError(t, db.Model(&models.Blog{}).Where("id = ?", newID).
		Update("created_at", base.Add(time.Minute)).Error)
	require.NoError(t, db.Model(&models.Blog{}).Where("id = ?", oldID).
		Update("view_count", 50).Error)

	var data blogListData

	w := performRequest(r, http.MethodGet, "/api/v1/blogs", "", nil)
	decodeData(t, w, &data)
	require.Len(t, data.Items, 2)
	assert.Equal(t, newID, data.Items[0].ID)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort=oldest", "", nil)
	decodeData(t, w, &data)
	assert.Equal(t, oldID, data.Items[0].ID)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort=popular", "", nil)
	decodeData(t, w, &data)
	assert.Equal(t, oldID, data.Items[0].ID)

	// Unknown sort falls back to newest.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort=bogus", "", nil)
	decodeData(t, w, &data)
	assert.Equal(t, newID, data.Items[0].ID)

	// Explicit column sort with direction.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort_by=view_count&order=asc", "", nil)
	decodeData(t, w, &data)
	assert.Equal(t, newID, data.Items[0].ID)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort_by=created_at&order=asc", "", nil)
	decodeData(t, w, &data)
	assert.Equal(t, oldID, data.Items[0].ID)

	// A non-whitelisted column is ignored, never interpolated.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?sort_by=password_hash", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Equal(t, newID, data.Items[0].ID)
}

func TestFeedAuthorAndMultiTagFilters(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	aliceToken, aliceID := registerUser(t, r, "authoralice")
	bobToken, _ := registerUser(t, r, "authorbob")

	createBlog(t, r, aliceToken, map[string]interface{}{
		"title": "alice on go", "content": "a", "tags": []string{"go", "web"},
	})
	createBlog(t, r, aliceToken, map[string]interface{}{
		"title": "alice on baking", "content": "b", "tags": []string{"baking"},
	})
	createBlog(t, r, bobToken, map[string]interface{}{
		"title": "bob on go", "content": "c", "tags": []string{"go"},
	})

	var data blogListData

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs?author=%d", aliceID), "", nil)
	decodeData(t, w, &data)
	assert.Len(t, data.Items, 2)

	// Comma-separated tags match any: every blog carrying at least one of
	// the supplied tags comes back.
	w = performRequest(r, http.MethodGet, "/api/v1/blogs?tags=go,web", "", nil)
	decodeData(t, w, &data)
	require.Len(t, data.Items, 2)
	titles := []string{data.Items[0].Title, data.Items[1].Title}
	assert.ElementsMatch(t, []string{"alice on go", "bob on go"}, titles)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs?author=%d&tags=go", aliceID), "", nil)
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "alice on go", data.Items[0].Title)
}

func TestFeedCommentCountsIncludeReplies(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "countauthor")

	blogA := createBlog(t, r, token, map[string]interface{}{"title": "blog a", "content": "a"})
	blogB := createBlog(t, r, token, map[string]interface{}{"title": "blog b", "content": "b"})

	// Two top-level comments and one reply on A; nothing on B.
	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogA), token,
		map[string]interface{}{"content": "first"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Comment struct {
			ID uint `json:"id"`
		} `json:"comment"`
	}
	decodeData(t, w, &created)

	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogA), token,
		map[string]interface{}{"content": "second"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogA), token,
		map[string]interface{}{"content": "a reply", "parent_id": created.Comment.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(r, http.MethodGet, "/api/v1/blogs", "", nil)
	var data blogListData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 2)

	counts := map[uint]int64{}
	for _, item := range data.Items {
		counts[item.ID] = item.CommentCount
	}
	// The reply counts alongside the two top-level comments.
	assert.Equal(t, int64(3), counts[blogA])
	assert.Equal(t, int64(0), counts[blogB])
}
