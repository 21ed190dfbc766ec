// Package posts implements post CRUD plus the like/comment counter
// mutations, all through the record store adapter.
package posts

import (
	"context"
	"sort"
	"time"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/social"
	"github.com/pulse-social/backend/internal/store"
	"go.uber.org/zap"
)

// Service provides post operations.
type Service struct {
	store    *store.Store
	counters *social.Counters
}

// NewService creates a post service.
func NewService(st *store.Store, counters *social.Counters) *Service {
	return &Service{store: st, counters: counters}
}

// CreateInput carries the caller-supplied fields for a new post.
type CreateInput struct {
	Content   string
	MediaURLs []string
}

// Create stores a new post for authorID with zeroed counters and a
// server-side timestamp. Media URLs pass through the truncating MediaList
// codec; ImageURL keeps the first URL for older readers of the schema.
func (s *Service) Create(ctx context.Context, authorID int64, in CreateInput) (*models.Post, error) {
	if in.Content == "" && len(in.MediaURLs) == 0 {
		return nil, errors.ValidationError("content", "post needs content or media")
	}

	media := models.DecodeMediaList(models.EncodeMediaList(in.MediaURLs))

	imageURL := ""
	if len(media) > 0 {
		imageURL = media[0]
	}

	post := models.Post{
		AuthorID:  authorID,
		Content:   in.Content,
		ImageURL:  imageURL,
		MediaURLs: media,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, &post); err != nil {
		return nil, err
	}

	if _, err := s.counters.Adjust(ctx, &models.User{}, authorID, "posts_count", 1); err != nil {
		logger.Warn("post count increment failed",
			zap.Int64("author_id", authorID), zap.Error(err))
	}

	return &post, nil
}

// Get fetches a post by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := s.store.GetByID(ctx, &post, id); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("post")
		}
		return nil, err
	}
	return &post, nil
}

// ListGlobal returns the global reverse-chronological page.
func (s *Service) ListGlobal(ctx context.Context, page, pageSize int) ([]models.Post, error) {
	var out []models.Post
	err := s.store.List(ctx, &out, store.Query{
		OrderBy:  "timestamp DESC",
		Page:     page,
		PageSize: pageSize,
	})
	return out, err
}

// ListByAuthor returns one author's posts, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID int64, page, pageSize int) ([]models.Post, error) {
	var out []models.Post
	err := s.store.List(ctx, &out, store.Query{
		Filters:  map[string]interface{}{"author_id": authorID},
		OrderBy:  "timestamp DESC",
		Page:     page,
		PageSize: pageSize,
	})
	return out, err
}

// ListByAuthors returns posts authored by any of authorIDs, newest first.
func (s *Service) ListByAuthors(ctx context.Context, authorIDs []int64, page, pageSize int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	in := make([]interface{}, len(authorIDs))
	for i, id := range authorIDs {
		in[i] = id
	}
	var out []models.Post
	err := s.store.List(ctx, &out, store.Query{
		In:       map[string][]interface{}{"author_id": in},
		OrderBy:  "timestamp DESC",
		Page:     page,
		PageSize: pageSize,
	})
	return out, err
}

// Trending returns the most recent posts reordered by engagement score
// (likes + comments), highest first. Scoring happens in memory because the
// record store can't sort on a derived column.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	recent, err := s.ListGlobal(ctx, 1, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].EngagementScore() > recent[j].EngagementScore()
	})
	return recent, nil
}

// ToggleLike flips the post's liked flag for userID and adjusts the like
// counter by ±1 through counter reconciliation, never below zero. The
// liked flag is a single per-post value keyed to the current viewer
// rather than a per-user like table.
func (s *Service) ToggleLike(ctx context.Context, id, userID int64) (*models.Post, error) {
	if userID == 0 {
		return nil, errors.ValidationError("userId", "viewer is required")
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	delta := 1
	if post.IsLiked {
		delta = -1
	}

	if _, err := s.counters.Adjust(ctx, &models.Post{}, id, "likes", delta); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, &models.Post{}, id, map[string]interface{}{"is_liked": !post.IsLiked}); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// AdjustCommentCount moves the post's comment counter by delta, floored
// at zero. NotFound when the post is missing.
func (s *Service) AdjustCommentCount(ctx context.Context, id int64, delta int) error {
	_, err := s.counters.Adjust(ctx, &models.Post{}, id, "comments", delta)
	if err != nil && errors.IsNotFound(err) {
		return errors.NotFound("post")
	}
	return err
}

// Delete removes a post and walks the author's post count back down.
func (s *Service) Delete(ctx context.Context, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, &models.Post{}, id); err != nil {
		return err
	}

	if _, err := s.counters.Adjust(ctx, &models.User{}, post.AuthorID, "posts_count", -1); err != nil {
		logger.Warn("post count decrement failed",
			zap.Int64("author_id", post.AuthorID), zap.Error(err))
	}
	return nil
}
