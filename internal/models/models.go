package models

import (
	"time"
)

// User represents an account on the platform. The follower/following/post
// counts are denormalized caches maintained through counter reconciliation,
// not derived on read; the follow_edges table is authoritative for
// relationship queries.
type User struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName    string `gorm:"not null" json:"display_name"`
	Bio            string `gorm:"type:text" json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	CoverPhoto     string `json:"cover_photo"`

	FollowersCount int `gorm:"default:0" json:"followers_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	PostsCount     int `gorm:"default:0" json:"posts_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post represents a feed post. Likes and Comments are denormalized counters
// with floor-at-zero semantics; IsLiked is the per-viewer liked flag the
// record store keeps on the post row.
type Post struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID int64 `gorm:"not null;index:idx_posts_author_ts,priority:1" json:"author_id"`
	Author   User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Content   string    `gorm:"type:text" json:"content"`
	ImageURL  string    `json:"image_url"`
	MediaURLs MediaList `gorm:"type:text" json:"media_urls"`

	Likes    int  `gorm:"default:0" json:"likes"`
	IsLiked  bool `gorm:"default:false" json:"is_liked"`
	Comments int  `gorm:"default:0" json:"comments"`
	Shares   int  `gorm:"default:0" json:"shares"`

	Timestamp time.Time `gorm:"not null;index:idx_posts_author_ts,priority:2;index:idx_posts_ts" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EngagementScore ranks a post for the trending feed.
func (p *Post) EngagementScore() int {
	return p.Likes + p.Comments
}

// FollowEdge is one directed edge of the follow graph: follower observes
// followed's posts in their personalized feed. No self-edges; unique per pair.
type FollowEdge struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID int64     `gorm:"not null;uniqueIndex:idx_follow_edges_pair,priority:1" json:"follower_id"`
	FollowedID int64     `gorm:"not null;uniqueIndex:idx_follow_edges_pair,priority:2;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName keeps the edge table name explicit
func (FollowEdge) TableName() string {
	return "follow_edges"
}

// Comment belongs to a post. Creating or deleting one adjusts the post's
// denormalized comment counter.
type Comment struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID   int64 `gorm:"not null;index" json:"post_id"`
	AuthorID int64 `gorm:"not null;index" json:"author_id"`
	Author   User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationType enumerates the recognized notification categories.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMention NotificationType = "mention"
	NotificationMessage NotificationType = "message"
)

// KnownNotificationTypes lists every type the aggregator buckets.
// Anything else is dropped from grouping.
var KnownNotificationTypes = []NotificationType{
	NotificationLike,
	NotificationComment,
	NotificationFollow,
	NotificationMention,
	NotificationMessage,
}

// Known reports whether t is a recognized notification type.
func (t NotificationType) Known() bool {
	for _, known := range KnownNotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Notification is delivered to TargetID and triggered by ActorID.
type Notification struct {
	ID         int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Type       NotificationType `gorm:"not null;index" json:"type"`
	TargetType string           `json:"target_type"`

	TargetID int64 `gorm:"not null;index:idx_notifications_target_ts,priority:1" json:"target_id"`
	ActorID  int64 `gorm:"index" json:"actor_id"`

	PostID         int64 `json:"post_id,omitempty"`
	CommentID      int64 `json:"comment_id,omitempty"`
	ConversationID int64 `json:"conversation_id,omitempty"`

	Content     string `gorm:"type:text" json:"content"`
	CommentText string `gorm:"type:text" json:"comment_text"`

	Read bool `gorm:"default:false;index" json:"read"`

	Timestamp time.Time `gorm:"not null;index:idx_notifications_target_ts,priority:2" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation holds a participant set (IDList codec at the store boundary)
// and denormalized last-message fields so listings don't scan messages.
type Conversation struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Participants IDList `gorm:"type:text" json:"participants"`
	Name         string `gorm:"size:100" json:"name,omitempty"`
	Avatar       string `gorm:"size:250" json:"avatar,omitempty"`

	LastMessage     string    `gorm:"type:text" json:"last_message"`
	LastMessageTime time.Time `gorm:"index" json:"last_message_time"`
	UnreadCount     int       `gorm:"default:0" json:"unread_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message belongs to a conversation. ReadBy is the set of user identifiers
// that have read it, stored through the IDList codec.
type Message struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64 `gorm:"not null;index" json:"conversation_id"`
	SenderID       int64 `gorm:"not null;index" json:"sender_id"`

	Content string `gorm:"type:text;not null" json:"content"`
	Type    string `gorm:"default:text" json:"type"`
	ReadBy  IDList `gorm:"type:text" json:"read_by"`

	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
