package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/util"
)

// CreateComment creates a new comment on a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	postID, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), postID, viewerID, req.Content)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if post, perr := h.posts.Get(c.Request.Context(), postID); perr == nil {
		h.notify(c.Request.Context(), models.Notification{
			Type:        models.NotificationComment,
			TargetID:    post.AuthorID,
			ActorID:     viewerID,
			PostID:      postID,
			CommentID:   comment.ID,
			Content:     notifications.ContentPreview(post.Content),
			CommentText: notifications.ContentPreview(comment.Content),
		})
	}
	h.notifyMentions(c.Request.Context(), viewerID, postID, comment.Content)

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	comments, err := h.comments.ListByPost(c.Request.Context(), postID, page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "page": page, "pageSize": pageSize})
}

// UpdateComment edits the viewer's own comment
// PUT /api/v1/comments/:id
func (h *Handlers) UpdateComment(c *gin.Context) {
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

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if comment.AuthorID != viewerID {
		util.RespondForbidden(c, "can only edit your own comments")
		return
	}

	updated, err := h.comments.Update(c.Request.Context(), id, req.Content)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteComment removes the viewer's own comment
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
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

	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if comment.AuthorID != viewerID {
		util.RespondForbidden(c, "can only delete your own comments")
		return
	}

	if err := h.comments.Remove(c.Request.Context(), id); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
