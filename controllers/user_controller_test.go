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

type profileData struct {
	User struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	BlogCount int64 `json:"blog_count"`
}

func TestProfileEmailVisibility(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	ownToken, ownID := registerUser(t, r, "profileowner")
	otherToken, _ := registerUser(t, r, "profileviewer")

	var data profileData

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", ownID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Empty(t, data.User.Email)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", ownID), otherToken, nil)
	decodeData(t, w, &data)
	assert.Empty(t, data.User.Email)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", ownID), ownToken, nil)
	decodeData(t, w, &data)
	assert.Equal(t, "profileowner@example.com", data.User.Email)
}

func TestProfileBlogCountPublishedOnly(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, id := registerUser(t, r, "countprofile")

	createBlog(t, r, token, map[string]interface{}{"title": "live", "content": "a"})
	createBlog(t, r, token, map[string]interface{}{"title": "draft", "content": "b", "status": "draft"})
	deleted := createBlog(t, r, token, map[string]interface{}{"title": "gone", "content": "c"})
	w := performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/blogs/%d", deleted), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data profileData
	decodeData(t, w, &data)
	assert.Equal(t, int64(1), data.BlogCount)
}

func TestProfileNotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := performRequest(r, http.MethodGet, "/api/v1/users/4242", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, http.MethodGet, "/api/v1/users/notanumber", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	authorToken, _ := registerUser(t, r, "statauthor")
	fanToken, _ := registerUser(t, r, "statfan")

	first := createBlog(t, r, authorToken, map[string]interface{}{"title": "first", "content": "a"})
	second := createBlog(t, r, authorToken, map[string]interface{}{"title": "second", "content": "b"})
	createBlog(t, r, authorToken, map[string]interface{}{"title": "draft", "content": "c", "status": "draft"})

	require.NoError(t, db.Model(&models.Blog{}).Where("id = ?", first).
		Update("view_count", 30).Error)
	require.NoError(t, db.Model(&models.Blog{}).Where("id = ?", second).
		Update("view_count", 12).Error)

	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/like", first), fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/like", second), fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/bookmark", first), fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	parent := postComment(t, r, fanToken, first, "nice read", nil)
	postComment(t, r, fanToken, first, "seconded", &parent)

	w = performRequest(r, http.MethodGet, "/api/v1/users/me/stats", authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Stats struct {
			TotalBlogs     int64     `json:"total_blogs"`
			PublishedBlogs int64     `json:"published_blogs"`
			DraftBlogs     int64     `json:"draft_blogs"`
			TotalViews     int64     `json:"total_views"`
			TotalLikes     int64     `json:"total_likes"`
			TotalBookmarks int64     `json:"total_bookmarks"`
			TotalComments  int64     `json:"total_comments"`
			RecentBlogs    int64     `json:"recent_blogs"`
			JoinedAt       time.Time `json:"joined_at"`
		} `json:"stats"`
	}
	decodeData(t, w, &data)

	assert.Equal(t, int64(3), data.Stats.TotalBlogs)
	assert.Equal(t, int64(2), data.Stats.PublishedBlogs)
	assert.Equal(t, int64(1), data.Stats.DraftBlogs)
	assert.Equal(t, int64(42), data.Stats.TotalViews)
	assert.Equal(t, int64(2), data.Stats.TotalLikes)
	assert.Equal(t, int64(1), data.Stats.TotalBookmarks)
	// Replies count toward the author's comment total.
	assert.Equal(t, int64(2), data.Stats.TotalComments)
	assert.Equal(t, int64(3), data.Stats.RecentBlogs)
	assert.False(t, data.Stats.JoinedAt.IsZero())

	// A brand-new author sees zeroes.
	w = performRequest(r, http.MethodGet, "/api/v1/users/me/stats", fanToken, nil)
	decodeData(t, w, &data)
	assert.Equal(t, int64(0), data.Stats.TotalBlogs)
	assert.Equal(t, int64(0), data.Stats.TotalViews)
}
