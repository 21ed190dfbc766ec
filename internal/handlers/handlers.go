// Package handlers wires the service layer to the HTTP API.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/feed"
	"github.com/pulse-social/backend/internal/messaging"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/posts"
	"github.com/pulse-social/backend/internal/social"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	users         *social.Users
	graph         *social.Graph
	posts         *posts.Service
	comments      *posts.Comments
	feed          *feed.Composer
	notifications *notifications.Aggregator
	messaging     *messaging.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	users *social.Users,
	graph *social.Graph,
	postSvc *posts.Service,
	comments *posts.Comments,
	composer *feed.Composer,
	aggregator *notifications.Aggregator,
	messenger *messaging.Service,
) *Handlers {
	return &Handlers{
		users:         users,
		graph:         graph,
		posts:         postSvc,
		comments:      comments,
		feed:          composer,
		notifications: aggregator,
		messaging:     messenger,
	}
}

// RegisterRoutes mounts every API route under the given group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
		users.GET("/:id/posts", h.GetUserPosts)
		users.POST("/:id/follow", h.FollowUser)
		users.DELETE("/:id/follow", h.UnfollowUser)
	}

	postGroup := api.Group("/posts")
	{
		postGroup.POST("", h.CreatePost)
		postGroup.GET("", h.GetGlobalFeed)
		postGroup.GET("/:id", h.GetPost)
		postGroup.DELETE("/:id", h.DeletePost)
		postGroup.POST("/:id/like", h.ToggleLike)
		postGroup.POST("/:id/comments", h.CreateComment)
		postGroup.GET("/:id/comments", h.GetComments)
	}
	api.PUT("/comments/:id", h.UpdateComment)
	api.DELETE("/comments/:id", h.DeleteComment)

	feedGroup := api.Group("/feed")
	{
		feedGroup.GET("", h.GetFeed)
		feedGroup.GET("/trending", h.GetTrending)
	}

	notifGroup := api.Group("/notifications")
	{
		notifGroup.GET("", h.GetNotifications)
		notifGroup.GET("/list", h.ListNotifications)
		notifGroup.GET("/unread-count", h.GetUnreadCount)
		notifGroup.POST("", h.CreateNotification)
		notifGroup.PUT("/read", h.MarkNotificationsRead)
		notifGroup.PUT("/read-all", h.MarkAllNotificationsRead)
		notifGroup.PUT("/:id/read", h.MarkNotificationRead)
		notifGroup.PUT("/:id/unread", h.MarkNotificationUnread)
		notifGroup.DELETE("/:id", h.DeleteNotification)
		notifGroup.DELETE("", h.DeleteNotifications)
	}

	convGroup := api.Group("/conversations")
	{
		convGroup.GET("", h.GetConversations)
		convGroup.POST("", h.CreateConversation)
		convGroup.GET("/:id", h.GetConversation)
		convGroup.PUT("/:id", h.UpdateConversation)
		convGroup.DELETE("/:id", h.DeleteConversation)
		convGroup.GET("/:id/messages", h.GetMessages)
		convGroup.POST("/:id/messages", h.SendMessage)
		convGroup.PUT("/:id/read", h.MarkConversationRead)
	}
	api.PUT("/messages/:id/read", h.MarkMessageRead)
}
