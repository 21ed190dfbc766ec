// Package social owns the directed follow graph and the counter
// reconciliation both it and the post service depend on.
package social

import (
	"context"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
	"go.uber.org/zap"
)

// Graph owns the follows relation. State lives in the follow_edges table,
// which is authoritative for membership queries; the follower/following
// counts on user records are caches reconciled through Counters and may
// drift if a counter write fails after an edge mutation succeeded.
type Graph struct {
	store    *store.Store
	counters *Counters
}

// NewGraph creates a follow graph over the record store.
func NewGraph(st *store.Store, counters *Counters) *Graph {
	return &Graph{store: st, counters: counters}
}

// Follow adds a follower -> target edge. Self-follows fail with
// InvalidOperation. Following an already-followed target is a no-op: the
// existence check guards both the edge insert and the counter increments,
// so a repeat call never double-increments.
func (g *Graph) Follow(ctx context.Context, followerID, targetID int64) error {
	if followerID == targetID {
		return errors.InvalidOperation("cannot follow yourself")
	}

	var target models.User
	if err := g.store.GetByID(ctx, &target, targetID); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("user")
		}
		return err
	}

	exists, err := g.edgeExists(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	edge := models.FollowEdge{FollowerID: followerID, FollowedID: targetID}
	if err := g.store.Create(ctx, &edge); err != nil {
		return err
	}

	// Counter failures after a successful edge insert leave the counts
	// stale until the next reconciling mutation; the edge stays.
	if _, err := g.counters.Adjust(ctx, &models.User{}, targetID, "followers_count", 1); err != nil {
		logger.Warn("follower count increment failed",
			zap.Int64("target_id", targetID), zap.Error(err))
	}
	if _, err := g.counters.Adjust(ctx, &models.User{}, followerID, "following_count", 1); err != nil {
		logger.Warn("following count increment failed",
			zap.Int64("follower_id", followerID), zap.Error(err))
	}

	return nil
}

// Unfollow removes the follower -> target edge. Removing a non-existent
// edge is a no-op and never decrements any counter.
func (g *Graph) Unfollow(ctx context.Context, followerID, targetID int64) error {
	exists, err := g.edgeExists(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	err = g.store.DeleteWhere(ctx, &models.FollowEdge{}, store.Query{
		Filters: map[string]interface{}{
			"follower_id": followerID,
			"followed_id": targetID,
		},
	})
	if err != nil {
		return err
	}

	if _, err := g.counters.Adjust(ctx, &models.User{}, targetID, "followers_count", -1); err != nil {
		logger.Warn("follower count decrement failed",
			zap.Int64("target_id", targetID), zap.Error(err))
	}
	if _, err := g.counters.Adjust(ctx, &models.User{}, followerID, "following_count", -1); err != nil {
		logger.Warn("following count decrement failed",
			zap.Int64("follower_id", followerID), zap.Error(err))
	}

	return nil
}

// IsFollowing reports whether follower -> target exists.
func (g *Graph) IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error) {
	return g.edgeExists(ctx, followerID, targetID)
}

// FollowingIDs returns the identifiers the user follows.
func (g *Graph) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var edges []models.FollowEdge
	err := g.store.List(ctx, &edges, store.Query{
		Filters: map[string]interface{}{"follower_id": userID},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowedID)
	}
	return ids, nil
}

// FollowerIDs returns the identifiers following the user.
func (g *Graph) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var edges []models.FollowEdge
	err := g.store.List(ctx, &edges, store.Query{
		Filters: map[string]interface{}{"followed_id": userID},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowerID)
	}
	return ids, nil
}

func (g *Graph) edgeExists(ctx context.Context, followerID, targetID int64) (bool, error) {
	count, err := g.store.Count(ctx, &models.FollowEdge{}, store.Query{
		Filters: map[string]interface{}{
			"follower_id": followerID,
			"followed_id": targetID,
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
