package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/util"
)

// CreateUser registers a new user
// POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required,min=1,max=64"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.DisplayName)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers returns a page of the user directory
// GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	users, err := h.users.List(c.Request.Context(), page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "page": page, "pageSize": pageSize})
}

// GetUser returns a user profile
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser updates the viewer's own profile fields
// PUT /api/v1/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
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
	if viewerID != id {
		util.RespondForbidden(c, "can only update your own profile")
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id, fields)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFollowers lists the users following :id
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID := util.OptionalViewerID(c)

	followers, err := h.users.Followers(c.Request.Context(), viewerID, id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": followers})
}

// GetFollowing lists the users :id follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID := util.OptionalViewerID(c)

	following, err := h.users.Following(c.Request.Context(), viewerID, id)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": following})
}

// FollowUser makes the viewer follow :id
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	targetID, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.graph.Follow(c.Request.Context(), viewerID, targetID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	h.feed.Invalidate(c.Request.Context(), viewerID)
	h.notify(c.Request.Context(), models.Notification{
		Type:     models.NotificationFollow,
		TargetID: targetID,
		ActorID:  viewerID,
	})
	c.JSON(http.StatusOK, gin.H{"following": true})
}

// UnfollowUser makes the viewer unfollow :id
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	targetID, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.graph.Unfollow(c.Request.Context(), viewerID, targetID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	h.feed.Invalidate(c.Request.Context(), viewerID)
	c.JSON(http.StatusOK, gin.H{"following": false})
}
