// Package messaging implements direct-message conversations on top of
// the record store.
package messaging

import (
	"context"
	"sort"
	"time"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
)

// Service provides conversation and message operations.
type Service struct {
	store *store.Store
}

// NewService creates a messaging service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// CreateConversation starts a conversation between participants.
// Participants are deduplicated; fewer than two distinct members is a
// validation error. An existing conversation with the same member set
// is returned instead of creating a duplicate.
func (s *Service) CreateConversation(ctx context.Context, participants []int64) (*models.Conversation, error) {
	distinct := dedupe(participants)
	if len(distinct) < 2 {
		return nil, errors.ValidationError("participants", "a conversation needs at least two participants")
	}

	if existing, err := s.FindByParticipants(ctx, distinct); err == nil {
		return existing, nil
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	conv := models.Conversation{Participants: distinct}
	if err := s.store.Create(ctx, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversation fetches a conversation by id.
func (s *Service) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.store.GetByID(ctx, &conv, id); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("conversation")
		}
		return nil, err
	}
	return &conv, nil
}

// ListByUser returns userID's conversations, most recent activity first.
// Membership lives inside the encoded participant list, so filtering
// happens here rather than in the store.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.Conversation, error) {
	var all []models.Conversation
	if err := s.store.List(ctx, &all, store.Query{}); err != nil {
		return nil, err
	}

	mine := make([]models.Conversation, 0, len(all))
	for _, conv := range all {
		if conv.Participants.Contains(userID) {
			mine = append(mine, conv)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].LastMessageTime.After(mine[j].LastMessageTime)
	})
	return mine, nil
}

// UpdateConversation applies a whitelisted set of field updates to a
// conversation. Membership and message history are immutable here.
func (s *Service) UpdateConversation(ctx context.Context, id int64, updates map[string]interface{}) (*models.Conversation, error) {
	if _, err := s.GetConversation(ctx, id); err != nil {
		return nil, err
	}

	allowed := map[string]bool{"name": true, "avatar": true}
	fields := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if allowed[key] {
			fields[key] = value
		}
	}
	if len(fields) == 0 {
		return nil, errors.ValidationError("updates", "no updatable fields provided")
	}

	if err := s.store.Update(ctx, &models.Conversation{}, id, fields); err != nil {
		return nil, err
	}
	return s.GetConversation(ctx, id)
}

// FindByParticipants returns the conversation whose member set equals
// participants exactly, or NotFound.
func (s *Service) FindByParticipants(ctx context.Context, participants []int64) (*models.Conversation, error) {
	want := dedupe(participants)

	var all []models.Conversation
	if err := s.store.List(ctx, &all, store.Query{}); err != nil {
		return nil, err
	}
	for i := range all {
		if sameMembers(all[i].Participants, want) {
			return &all[i], nil
		}
	}
	return nil, errors.NotFound("conversation")
}

// DeleteConversation removes a conversation and its messages.
func (s *Service) DeleteConversation(ctx context.Context, id int64) error {
	if _, err := s.GetConversation(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteWhere(ctx, &models.Message{}, store.Query{
		Filters: map[string]interface{}{"conversation_id": id},
	}); err != nil {
		return err
	}
	return s.store.Delete(ctx, &models.Conversation{}, id)
}

// Send appends a message to a conversation. The sender must be a
// participant and starts in the message's read set. The conversation's
// last-message fields and unread counter move in the same call.
func (s *Service) Send(ctx context.Context, conversationID, senderID int64, content, msgType string) (*models.Message, error) {
	if content == "" {
		return nil, errors.ValidationError("content", "message content is required")
	}
	if msgType == "" {
		msgType = "text"
	}

	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Participants.Contains(senderID) {
		return nil, errors.InvalidOperation("sender is not a participant")
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Type:           msgType,
		ReadBy:         models.IDList{senderID},
		Timestamp:      time.Now().UTC(),
	}
	if err := s.store.Create(ctx, &msg); err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, &models.Conversation{}, conversationID, map[string]interface{}{
		"last_message":      content,
		"last_message_time": msg.Timestamp,
		"unread_count":      conv.UnreadCount + 1,
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns a conversation's messages oldest first.
func (s *Service) ListMessages(ctx context.Context, conversationID int64, page, pageSize int) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	var out []models.Message
	err := s.store.List(ctx, &out, store.Query{
		Filters:  map[string]interface{}{"conversation_id": conversationID},
		OrderBy:  "timestamp ASC",
		Page:     page,
		PageSize: pageSize,
	})
	return out, err
}

// MarkRead adds userID to the read set of every message in the
// conversation they haven't read yet and zeroes the unread counter.
// Re-reading an already-read conversation is a no-op.
func (s *Service) MarkRead(ctx context.Context, conversationID, userID int64) error {
	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.Participants.Contains(userID) {
		return errors.InvalidOperation("user is not a participant")
	}

	var msgs []models.Message
	err = s.store.List(ctx, &msgs, store.Query{
		Filters: map[string]interface{}{"conversation_id": conversationID},
	})
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if msg.ReadBy.Contains(userID) {
			continue
		}
		readBy := append(msg.ReadBy, userID)
		err := s.store.Update(ctx, &models.Message{}, msg.ID, map[string]interface{}{
			"read_by": readBy,
		})
		if err != nil {
			return err
		}
	}

	if conv.UnreadCount != 0 {
		return s.store.Update(ctx, &models.Conversation{}, conversationID, map[string]interface{}{
			"unread_count": 0,
		})
	}
	return nil
}

// MarkMessageRead adds userID to a single message's read set. Marking a
// message the user already read is a no-op.
func (s *Service) MarkMessageRead(ctx context.Context, messageID, userID int64) error {
	var msg models.Message
	if err := s.store.GetByID(ctx, &msg, messageID); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("message")
		}
		return err
	}

	conv, err := s.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if !conv.Participants.Contains(userID) {
		return errors.InvalidOperation("user is not a participant")
	}

	if msg.ReadBy.Contains(userID) {
		return nil
	}
	return s.store.Update(ctx, &models.Message{}, messageID, map[string]interface{}{
		"read_by": append(msg.ReadBy, userID),
	})
}

func dedupe(ids []int64) models.IDList {
	seen := make(map[int64]struct{}, len(ids))
	out := make(models.IDList, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameMembers(a, b models.IDList) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
