package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/util"
)

// GetNotifications returns the viewer's notifications grouped by type
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	grouped, err := h.notifications.Grouped(c.Request.Context(), viewerID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// ListNotifications returns a flat page of the viewer's notifications
// GET /api/v1/notifications/list
func (h *Handlers) ListNotifications(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)
	unreadOnly := c.Query("unread") == "true"

	items, err := h.notifications.ListByUser(c.Request.Context(), viewerID, unreadOnly, page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "page": page, "pageSize": pageSize})
}

// GetUnreadCount returns how many unread notifications the viewer has
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), viewerID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CreateNotification stores a notification targeting another user
// POST /api/v1/notifications
func (h *Handlers) CreateNotification(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		Type        string `json:"type" binding:"required"`
		TargetID    int64  `json:"targetId" binding:"required"`
		PostID      int64  `json:"postId"`
		CommentID   int64  `json:"commentId"`
		Content     string `json:"content"`
		CommentText string `json:"commentText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	n := models.Notification{
		Type:        models.NotificationType(req.Type),
		TargetID:    req.TargetID,
		ActorID:     viewerID,
		PostID:      req.PostID,
		CommentID:   req.CommentID,
		Content:     req.Content,
		CommentText: req.CommentText,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.notifications.Create(c.Request.Context(), &n); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// MarkNotificationRead marks one notification read
// PUT /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), id); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkNotificationUnread flips one notification back to unread
// PUT /api/v1/notifications/:id/unread
func (h *Handlers) MarkNotificationUnread(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.notifications.MarkAsUnread(c.Request.Context(), id); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": false})
}

// MarkNotificationsRead marks the given notifications read
// PUT /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		IDs []int64 `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.notifications.MarkSelectedAsRead(c.Request.Context(), viewerID, req.IDs); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every unread notification read
// PUT /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.notifications.MarkAllAsRead(c.Request.Context(), viewerID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// DeleteNotification removes one of the viewer's notifications
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), id); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteNotifications removes a batch of the viewer's notifications
// DELETE /api/v1/notifications
func (h *Handlers) DeleteNotifications(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		IDs []int64 `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.notifications.DeleteMultiple(c.Request.Context(), viewerID, req.IDs); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
