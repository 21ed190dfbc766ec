package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/posts"
	"github.com/pulse-social/backend/internal/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreatePost creates a new post for the viewer
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		Content   string   `json:"content" binding:"max=2000"`
		MediaURLs []string `json:"mediaUrls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.posts.Create(c.Request.Context(), viewerID, posts.CreateInput{
		Content:   req.Content,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	h.notifyMentions(c.Request.Context(), viewerID, post.ID, post.Content)

	c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetGlobalFeed returns the global reverse-chronological post stream
// GET /api/v1/posts
func (h *Handlers) GetGlobalFeed(c *gin.Context) {
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	postPage, err := h.posts.ListGlobal(c.Request.Context(), page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postPage, "page": page, "pageSize": pageSize})
}

// GetUserPosts returns one author's posts
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	authorID, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	postPage, err := h.posts.ListByAuthor(c.Request.Context(), authorID, page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postPage, "page": page, "pageSize": pageSize})
}

// ToggleLike flips the viewer's like on a post
// POST /api/v1/posts/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	post, err := h.posts.ToggleLike(c.Request.Context(), id, viewerID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if post.IsLiked {
		h.notify(c.Request.Context(), models.Notification{
			Type:     models.NotificationLike,
			TargetID: post.AuthorID,
			ActorID:  viewerID,
			PostID:   post.ID,
			Content:  notifications.ContentPreview(post.Content),
		})
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes the viewer's own post
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if post.AuthorID != viewerID {
		util.RespondForbidden(c, "can only delete your own posts")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
