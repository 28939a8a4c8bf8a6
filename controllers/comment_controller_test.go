package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexleaf/inkwell/models"
)

type commentListData struct {
	Items []struct {
		ID        uint   `json:"id"`
		Content   string `json:"content"`
		LikeCount int64  `json:"like_count"`
		IsLiked   bool   `json:"is_liked"`
		Author    struct {
			Username string `json:"username"`
		} `json:"author"`
		Replies []struct {
			ID      uint   `json:"id"`
			Content string `json:"content"`
		} `json:"replies"`
	} `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func postComment(t *testing.T, r *gin.Engine, token string, blogID uint, content string, parentID *uint) uint {
	t.Helper()
	payload := map[string]interface{}{"content": content}
	if parentID != nil {
		payload["parent_id"] = *parentID
	}
	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Comment struct {
			ID uint `json:"id"`
		} `json:"comment"`
	}
	decodeData(t, w, &data)
	return data.Comment.ID
}

func TestCommentTreeShape(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "treeauthor")

	blogID := createBlog(t, r, token, map[string]interface{}{"title": "tree", "content": "c"})

	first := postComment(t, r, token, blogID, "first top-level", nil)
	postComment(t, r, token, blogID, "early reply", &first)
	postComment(t, r, token, blogID, "late reply", &first)
	postComment(t, r, token, blogID, "second top-level", nil)

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data commentListData
	decodeData(t, w, &data)

	// The top level is newest first and the total never counts replies.
	require.Len(t, data.Items, 2)
	assert.Equal(t, int64(2), data.Pagination.Total)
	assert.Equal(t, "second top-level", data.Items[0].Content)
	assert.Empty(t, data.Items[0].Replies)

	// Replies ride along oldest first.
	require.Len(t, data.Items[1].Replies, 2)
	assert.Equal(t, "early reply", data.Items[1].Replies[0].Content)
	assert.Equal(t, "late reply", data.Items[1].Replies[1].Content)
}

func TestCommentPaginationCountsTopLevelOnly(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "pageauthor")

	blogID := createBlog(t, r, token, map[string]interface{}{"title": "paging", "content": "c"})
	parent := postComment(t, r, token, blogID, "only top-level", nil)
	postComment(t, r, token, blogID, "reply one", &parent)
	postComment(t, r, token, blogID, "reply two", &parent)

	w := performRequest(r, http.MethodGet,
		fmt.Sprintf("/api/v1/blogs/%d/comments?page=1&limit=1", blogID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data commentListData
	decodeData(t, w, &data)
	assert.Equal(t, int64(1), data.Pagination.Total)
	assert.Equal(t, 1, data.Pagination.TotalPages)
	assert.False(t, data.Pagination.HasNext)
	require.Len(t, data.Items, 1)
	assert.Len(t, data.Items[0].Replies, 2)
}

func TestCommentParentValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "parentauthor")

	blogA := createBlog(t, r, token, map[string]interface{}{"title": "blog a", "content": "a"})
	blogB := createBlog(t, r, token, map[string]interface{}{"title": "blog b", "content": "b"})
	parentOnB := postComment(t, r, token, blogB, "lives on b", nil)

	// Missing parent.
	missing := uint(9999)
	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogA), token,
		map[string]interface{}{"content": "orphan", "parent_id": missing})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Parent belongs to a different blog.
	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogA), token,
		map[string]interface{}{"content": "cross-blog", "parent_id": parentOnB})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleted parent rejects new replies.
	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", parentOnB), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogB), token,
		map[string]interface{}{"content": "too late", "parent_id": parentOnB})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentOnDraftBlogNotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "draftcommenter")

	blogID := createBlog(t, r, token, map[string]interface{}{
		"title": "draft", "content": "c", "status": "draft",
	})

	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), token,
		map[string]interface{}{"content": "should not land"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentContentValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "lengthauthor")

	blogID := createBlog(t, r, token, map[string]interface{}{"title": "limits", "content": "c"})

	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), token,
		map[string]interface{}{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), token,
		map[string]interface{}{"content": strings.Repeat("a", 1001)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCommentHidesSubtree(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	ownerToken, _ := registerUser(t, r, "subtreeowner")
	otherToken, _ := registerUser(t, r, "subtreeother")

	blogID := createBlog(t, r, ownerToken, map[string]interface{}{"title": "subtree", "content": "c"})
	parent := postComment(t, r, ownerToken, blogID, "doomed parent", nil)
	postComment(t, r, otherToken, blogID, "innocent reply", &parent)
	postComment(t, r, otherToken, blogID, "survivor", nil)

	// Only the comment's author may delete it.
	w := performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", parent), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", parent), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), "", nil)
	var data commentListData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "survivor", data.Items[0].Content)

	// Deleting twice reads as gone.
	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", parent), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentLikeToggle(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	authorToken, _ := registerUser(t, r, "clauthor")
	likerToken, _ := registerUser(t, r, "clliker")

	blogID := createBlog(t, r, authorToken, map[string]interface{}{"title": "likes", "content": "c"})
	commentID := postComment(t, r, authorToken, blogID, "like me", nil)

	var data struct {
		NewState string `json:"new_state"`
		Count    int64  `json:"count"`
	}

	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/like", commentID), likerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Equal(t, "added", data.NewState)
	assert.Equal(t, int64(1), data.Count)

	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/like", commentID), likerToken, nil)
	decodeData(t, w, &data)
	assert.Equal(t, "removed", data.NewState)
	assert.Equal(t, int64(0), data.Count)

	// Re-like, then check the viewer flag on the listing.
	w = performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/like", commentID), likerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), likerToken, nil)
	var list commentListData
	decodeData(t, w, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Items[0].LikeCount)
	assert.True(t, list.Items[0].IsLiked)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", blogID), "", nil)
	decodeData(t, w, &list)
	assert.False(t, list.Items[0].IsLiked)
}

func TestCommentLikeBumpsTimestamp(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	token, _ := registerUser(t, r, "ctoucher")

	blogID := createBlog(t, r, token, map[string]interface{}{"title": "touched", "content": "c"})
	commentID := postComment(t, r, token, blogID, "touch me", nil)

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", commentID).
		UpdateColumn("updated_at", past).Error)

	w := performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/like", commentID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var comment models.Comment
	require.NoError(t, db.First(&comment, commentID).Error)
	assert.True(t, comment.UpdatedAt.After(past.Add(time.Hour)))
}
