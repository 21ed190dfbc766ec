package handlers

import (
	"context"
	"time"

	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/util"
	"go.uber.org/zap"
)

// notify stores an engagement notification. Failures are logged, never
// surfaced: the triggering action already succeeded.
func (h *Handlers) notify(ctx context.Context, n models.Notification) {
	if n.TargetID == n.ActorID {
		return
	}
	n.Timestamp = time.Now().UTC()
	if err := h.notifications.Create(ctx, &n); err != nil {
		logger.Warn("notification creation failed",
			zap.String("type", string(n.Type)),
			zap.Int64("target_id", n.TargetID),
			zap.Error(err))
	}
}

// notifyMentions fans out mention notifications to every @username in
// content that resolves to a real user.
func (h *Handlers) notifyMentions(ctx context.Context, actorID, postID int64, content string) {
	for _, username := range util.ExtractMentions(content) {
		mentioned, err := h.users.GetByUsername(ctx, username)
		if err != nil {
			continue
		}
		h.notify(ctx, models.Notification{
			Type:     models.NotificationMention,
			TargetID: mentioned.ID,
			ActorID:  actorID,
			PostID:   postID,
			Content:  notifications.ContentPreview(content),
		})
	}
}
