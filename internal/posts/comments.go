package posts

import (
	"context"
	"time"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
)

// Comments provides comment operations. Every mutation keeps the parent
// post's comment counter in step through the post service.
type Comments struct {
	store *store.Store
	posts *Service
}

// NewComments creates a comment service.
func NewComments(st *store.Store, posts *Service) *Comments {
	return &Comments{store: st, posts: posts}
}

// Add creates a comment under postID and bumps the post's comment count.
// NotFound when the post doesn't exist.
func (c *Comments) Add(ctx context.Context, postID, authorID int64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, errors.ValidationError("content", "comment content is required")
	}
	if _, err := c.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := c.store.Create(ctx, &comment); err != nil {
		return nil, err
	}

	if err := c.posts.AdjustCommentCount(ctx, postID, 1); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Get fetches a comment by id.
func (c *Comments) Get(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := c.store.GetByID(ctx, &comment, id); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("comment")
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first.
func (c *Comments) ListByPost(ctx context.Context, postID int64, page, pageSize int) ([]models.Comment, error) {
	var out []models.Comment
	err := c.store.List(ctx, &out, store.Query{
		Filters:  map[string]interface{}{"post_id": postID},
		OrderBy:  "timestamp ASC",
		Page:     page,
		PageSize: pageSize,
	})
	return out, err
}

// Update rewrites a comment's content.
func (c *Comments) Update(ctx context.Context, id int64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, errors.ValidationError("content", "comment content is required")
	}
	if _, err := c.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := c.store.Update(ctx, &models.Comment{}, id, map[string]interface{}{"content": content}); err != nil {
		return nil, err
	}
	return c.Get(ctx, id)
}

// Remove deletes a comment and walks the post's comment count back down,
// floored at zero.
func (c *Comments) Remove(ctx context.Context, id int64) error {
	comment, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, &models.Comment{}, id); err != nil {
		return err
	}
	return c.posts.AdjustCommentCount(ctx, comment.PostID, -1)
}
