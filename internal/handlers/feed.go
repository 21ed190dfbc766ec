package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/util"
)

// GetFeed returns the viewer's composed home feed
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	feedPage, err := h.feed.Compose(c.Request.Context(), viewerID, page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": feedPage, "page": page, "pageSize": pageSize})
}

// GetTrending returns globally trending posts ranked by engagement
// GET /api/v1/feed/trending
func (h *Handlers) GetTrending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > maxPageSize {
		limit = 20
	}

	trending, err := h.feed.Trending(c.Request.Context(), limit)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": trending})
}
