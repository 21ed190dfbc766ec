package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/errors"
)

// ViewerHeader carries the acting user's id on every request.
const ViewerHeader = "X-User-ID"

// ViewerID returns the acting user's id from the request header.
func ViewerID(c *gin.Context) (int64, error) {
	raw := c.GetHeader(ViewerHeader)
	if raw == "" {
		return 0, errors.Unauthorized("missing " + ViewerHeader + " header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid " + ViewerHeader + " header")
	}
	return id, nil
}

// OptionalViewerID is ViewerID for endpoints that work anonymously;
// a missing header yields zero.
func OptionalViewerID(c *gin.Context) int64 {
	raw := c.GetHeader(ViewerHeader)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// IDParam parses the named path parameter as a positive integer id.
func IDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid " + name)
	}
	return id, nil
}

// Pagination reads page and pageSize query parameters with defaults.
func Pagination(c *gin.Context, defaultSize, maxSize int) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultSize)))
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}
