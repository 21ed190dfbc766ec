// Package notifications aggregates a user's notifications into the
// typed buckets the client renders, and tracks read state.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/pulse-social/backend/internal/cache"
	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
	"go.uber.org/zap"
)

const (
	unreadCountTTL    = 30 * time.Second
	previewMaxLength  = 100
	defaultListLength = 50
)

// Actor is the slimmed-down user attached to each aggregated
// notification.
type Actor struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// placeholderActor stands in for an actor whose user record is gone.
func placeholderActor(id int64) Actor {
	return Actor{ID: id, Username: "unknown", DisplayName: "Unknown User"}
}

// Item is one notification joined with its actor.
type Item struct {
	models.Notification
	Actor Actor  `json:"actor"`
	Text  string `json:"text"`
}

// Grouped is the aggregated view: one bucket per notification type,
// each newest first.
type Grouped struct {
	Likes    []Item `json:"likes"`
	Comments []Item `json:"comments"`
	Follows  []Item `json:"follows"`
	Mentions []Item `json:"mentions"`
	Messages []Item `json:"messages"`
}

// Aggregator provides notification operations. The cache client is
// optional and only backs the unread counter.
type Aggregator struct {
	store *store.Store
	cache *cache.RedisClient
}

// NewAggregator creates a notification aggregator.
func NewAggregator(st *store.Store, redis *cache.RedisClient) *Aggregator {
	return &Aggregator{store: st, cache: redis}
}

// Create stores a notification after validating its type.
func (a *Aggregator) Create(ctx context.Context, n *models.Notification) error {
	if !n.Type.Known() {
		return errors.ValidationError("type", fmt.Sprintf("unknown notification type %q", n.Type))
	}
	if n.TargetID == 0 {
		return errors.ValidationError("targetId", "notification target is required")
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if err := a.store.Create(ctx, n); err != nil {
		return err
	}
	a.invalidateUnread(ctx, n.TargetID)
	return nil
}

// Grouped returns userID's notifications bucketed by type, each bucket
// newest first. Notifications with types this version doesn't know are
// dropped rather than surfaced, so old rows never break a newer client.
func (a *Aggregator) Grouped(ctx context.Context, userID int64) (*Grouped, error) {
	var rows []models.Notification
	err := a.store.List(ctx, &rows, store.Query{
		Filters: map[string]interface{}{"target_id": userID},
		OrderBy: "timestamp DESC",
	})
	if err != nil {
		return nil, err
	}

	actors := a.loadActors(ctx, rows)

	grouped := &Grouped{
		Likes:    []Item{},
		Comments: []Item{},
		Follows:  []Item{},
		Mentions: []Item{},
		Messages: []Item{},
	}
	for _, n := range rows {
		actor, ok := actors[n.ActorID]
		if !ok {
			actor = placeholderActor(n.ActorID)
		}
		item := Item{Notification: n, Actor: actor, Text: FormatText(n.Type, actor.DisplayName)}

		switch n.Type {
		case models.NotificationLike:
			grouped.Likes = append(grouped.Likes, item)
		case models.NotificationComment:
			grouped.Comments = append(grouped.Comments, item)
		case models.NotificationFollow:
			grouped.Follows = append(grouped.Follows, item)
		case models.NotificationMention:
			grouped.Mentions = append(grouped.Mentions, item)
		case models.NotificationMessage:
			grouped.Messages = append(grouped.Messages, item)
		default:
			logger.Warn("dropping notification with unknown type",
				zap.Int64("notification_id", n.ID), zap.String("type", string(n.Type)))
		}
	}
	return grouped, nil
}

// ListByUser returns a flat page of userID's notifications, newest
// first, with actors joined. unreadOnly narrows to unread rows.
func (a *Aggregator) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]Item, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultListLength
	}

	filters := map[string]interface{}{"target_id": userID}
	if unreadOnly {
		filters["read"] = false
	}

	var rows []models.Notification
	err := a.store.List(ctx, &rows, store.Query{
		Filters:  filters,
		OrderBy:  "timestamp DESC",
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	actors := a.loadActors(ctx, rows)

	items := make([]Item, 0, len(rows))
	for _, n := range rows {
		actor, ok := actors[n.ActorID]
		if !ok {
			actor = placeholderActor(n.ActorID)
		}
		items = append(items, Item{Notification: n, Actor: actor, Text: FormatText(n.Type, actor.DisplayName)})
	}
	return items, nil
}

// loadActors batch-fetches the distinct actor users referenced by rows.
// A lookup failure is recovered locally: callers fall back to the
// placeholder actor for any id missing from the returned map, so an
// actor fetch never fails the aggregation.
func (a *Aggregator) loadActors(ctx context.Context, rows []models.Notification) map[int64]Actor {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]interface{}, 0, len(rows))
	for _, n := range rows {
		if n.ActorID == 0 {
			continue
		}
		if _, ok := seen[n.ActorID]; ok {
			continue
		}
		seen[n.ActorID] = struct{}{}
		ids = append(ids, n.ActorID)
	}
	if len(ids) == 0 {
		return map[int64]Actor{}
	}

	var users []models.User
	err := a.store.List(ctx, &users, store.Query{
		In: map[string][]interface{}{"id": ids},
	})
	if err != nil {
		logger.Warn("notification actor lookup failed", zap.Error(err))
		return map[int64]Actor{}
	}

	actors := make(map[int64]Actor, len(users))
	for _, u := range users {
		actors[u.ID] = Actor{
			ID:             u.ID,
			Username:       u.Username,
			DisplayName:    u.DisplayName,
			ProfilePicture: u.ProfilePicture,
		}
	}
	return actors
}

// MarkAsRead marks one notification read. Already-read is a no-op.
func (a *Aggregator) MarkAsRead(ctx context.Context, id int64) error {
	var n models.Notification
	if err := a.store.GetByID(ctx, &n, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("notification")
		}
		return err
	}
	if n.Read {
		return nil
	}
	if err := a.store.Update(ctx, &models.Notification{}, id, map[string]interface{}{"read": true}); err != nil {
		return err
	}
	a.invalidateUnread(ctx, n.TargetID)
	return nil
}

// MarkAsUnread flips one notification back to unread. Already-unread
// is a no-op.
func (a *Aggregator) MarkAsUnread(ctx context.Context, id int64) error {
	var n models.Notification
	if err := a.store.GetByID(ctx, &n, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("notification")
		}
		return err
	}
	if !n.Read {
		return nil
	}
	if err := a.store.Update(ctx, &models.Notification{}, id, map[string]interface{}{"read": false}); err != nil {
		return err
	}
	a.invalidateUnread(ctx, n.TargetID)
	return nil
}

// MarkSelectedAsRead marks the given notifications read, skipping ids
// that don't exist or are already read.
func (a *Aggregator) MarkSelectedAsRead(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	in := make([]interface{}, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	err := a.store.UpdateWhere(ctx, &models.Notification{}, store.Query{
		Filters: map[string]interface{}{"target_id": userID, "read": false},
		In:      map[string][]interface{}{"id": in},
	}, map[string]interface{}{"read": true})
	if err != nil {
		return err
	}
	a.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllAsRead marks every unread notification for userID read.
// No unread notifications is a no-op, not an error.
func (a *Aggregator) MarkAllAsRead(ctx context.Context, userID int64) error {
	err := a.store.UpdateWhere(ctx, &models.Notification{}, store.Query{
		Filters: map[string]interface{}{"target_id": userID, "read": false},
	}, map[string]interface{}{"read": true})
	if err != nil {
		return err
	}
	a.invalidateUnread(ctx, userID)
	return nil
}

// Delete removes one notification.
func (a *Aggregator) Delete(ctx context.Context, id int64) error {
	var n models.Notification
	if err := a.store.GetByID(ctx, &n, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("notification")
		}
		return err
	}
	if err := a.store.Delete(ctx, &models.Notification{}, id); err != nil {
		return err
	}
	a.invalidateUnread(ctx, n.TargetID)
	return nil
}

// DeleteMultiple removes the given notifications scoped to userID.
// Ids outside the user's notifications are ignored.
func (a *Aggregator) DeleteMultiple(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	in := make([]interface{}, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	err := a.store.DeleteWhere(ctx, &models.Notification{}, store.Query{
		Filters: map[string]interface{}{"target_id": userID},
		In:      map[string][]interface{}{"id": in},
	})
	if err != nil {
		return err
	}
	a.invalidateUnread(ctx, userID)
	return nil
}

// UnreadCount returns how many unread notifications userID has. The
// count is cached briefly; cache failures fall through to the store.
func (a *Aggregator) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	key := unreadKey(userID)
	if a.cache != nil {
		if cached, err := a.cache.GetInt(ctx, key); err == nil {
			return cached, nil
		} else if !cache.IsNil(err) {
			logger.Warn("unread count cache read failed", zap.Error(err))
		}
	}

	count, err := a.store.Count(ctx, &models.Notification{}, store.Query{
		Filters: map[string]interface{}{"target_id": userID, "read": false},
	})
	if err != nil {
		return 0, err
	}

	if a.cache != nil {
		if err := a.cache.SetEx(ctx, key, count, unreadCountTTL); err != nil {
			logger.Warn("unread count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

func (a *Aggregator) invalidateUnread(ctx context.Context, userID int64) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Del(ctx, unreadKey(userID)); err != nil {
		logger.Warn("unread count cache invalidation failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// FormatText renders the one-line display text for a notification.
func FormatText(t models.NotificationType, actorName string) string {
	switch t {
	case models.NotificationLike:
		return fmt.Sprintf("%s liked your post", actorName)
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your post", actorName)
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", actorName)
	case models.NotificationMention:
		return fmt.Sprintf("%s mentioned you", actorName)
	case models.NotificationMessage:
		return fmt.Sprintf("%s sent you a message", actorName)
	default:
		return ""
	}
}

// ContentPreview shortens content for display inside a notification.
func ContentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewMaxLength {
		return content
	}
	return string(runes[:previewMaxLength]) + "..."
}
