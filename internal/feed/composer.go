// Package feed composes the personalized home feed from the follow graph
// and the global post stream.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulse-social/backend/internal/cache"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/metrics"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/posts"
	"github.com/pulse-social/backend/internal/social"
	"go.uber.org/zap"
)

const (
	// supplementThreshold is the page length below which the feed tops up
	// from the global stream.
	supplementThreshold = 5

	defaultPageSize = 20
	cacheTTL        = 30 * time.Second
)

// Composer builds feed pages. The cache client is optional; a nil cache
// composes every page from the store.
type Composer struct {
	posts *posts.Service
	graph *social.Graph
	cache *cache.RedisClient
}

// NewComposer creates a feed composer.
func NewComposer(postSvc *posts.Service, graph *social.Graph, redis *cache.RedisClient) *Composer {
	return &Composer{posts: postSvc, graph: graph, cache: redis}
}

// Compose returns one page of userID's home feed, newest first.
//
// Posts come from followed authors. When the page comes back short
// (under supplementThreshold) it is topped up with global posts from
// authors the user doesn't already follow. Users following nobody get
// the global page. A failure on the personalized path degrades to the
// global page rather than an error; only a global-path failure surfaces.
func (c *Composer) Compose(ctx context.Context, userID int64, page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if cached, ok := c.cacheGet(ctx, userID, page, pageSize); ok {
		return cached, nil
	}

	start := time.Now()
	result, source, err := c.compose(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	m := metrics.Get()
	m.FeedComposeDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	m.FeedPostsReturned.WithLabelValues(source).Observe(float64(len(result)))

	c.cacheSet(ctx, userID, page, pageSize, result)
	return result, nil
}

func (c *Composer) compose(ctx context.Context, userID int64, page, pageSize int) ([]models.Post, string, error) {
	followingIDs, err := c.graph.FollowingIDs(ctx, userID)
	if err != nil {
		return c.fallback(ctx, userID, page, pageSize, "graph_failure", err)
	}

	if len(followingIDs) == 0 {
		global, err := c.posts.ListGlobal(ctx, page, pageSize)
		return global, "global", err
	}

	followed, err := c.posts.ListByAuthors(ctx, followingIDs, page, pageSize)
	if err != nil {
		return c.fallback(ctx, userID, page, pageSize, "following_failure", err)
	}

	if len(followed) >= supplementThreshold {
		return followed, "following", nil
	}

	// Short page: top up with global posts from authors outside the
	// follow set, keeping followed posts first.
	followingSet := make(map[int64]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		followingSet[id] = struct{}{}
	}

	global, err := c.posts.ListGlobal(ctx, page, pageSize*2)
	if err != nil {
		logger.Warn("feed supplement failed, returning followed posts only",
			zap.Int64("user_id", userID), zap.Error(err))
		return followed, "following", nil
	}

	result := followed
	for _, post := range global {
		if len(result) >= pageSize {
			break
		}
		if post.AuthorID == userID {
			continue
		}
		if _, ok := followingSet[post.AuthorID]; ok {
			continue
		}
		result = append(result, post)
	}
	return result, "supplemented", nil
}

// fallback serves the global page when the personalized path fails.
func (c *Composer) fallback(ctx context.Context, userID int64, page, pageSize int, reason string, cause error) ([]models.Post, string, error) {
	logger.Warn("feed fell back to global",
		zap.Int64("user_id", userID),
		zap.String("reason", reason),
		zap.Error(cause))
	metrics.Get().FeedFallbacksTotal.WithLabelValues(reason).Inc()

	global, err := c.posts.ListGlobal(ctx, page, pageSize)
	return global, "global", err
}

// Trending returns the global trending page, ranked by engagement.
func (c *Composer) Trending(ctx context.Context, limit int) ([]models.Post, error) {
	return c.posts.Trending(ctx, limit)
}

// Invalidate drops userID's cached feed pages. Called after writes that
// change what the feed would show.
func (c *Composer) Invalidate(ctx context.Context, userID int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.DelPattern(ctx, fmt.Sprintf("feed:%d:*", userID)); err != nil {
		logger.Warn("feed cache invalidation failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}

func feedCacheKey(userID int64, page, pageSize int) string {
	return fmt.Sprintf("feed:%d:%d:%d", userID, page, pageSize)
}

func (c *Composer) cacheGet(ctx context.Context, userID int64, page, pageSize int) ([]models.Post, bool) {
	if c.cache == nil {
		return nil, false
	}
	m := metrics.Get()
	raw, err := c.cache.Get(ctx, feedCacheKey(userID, page, pageSize))
	if err != nil {
		if !cache.IsNil(err) {
			logger.Warn("feed cache read failed", zap.Error(err))
		}
		m.CacheMissesTotal.WithLabelValues("feed").Inc()
		return nil, false
	}

	var cached []models.Post
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		m.CacheMissesTotal.WithLabelValues("feed").Inc()
		return nil, false
	}
	m.CacheHitsTotal.WithLabelValues("feed").Inc()
	return cached, true
}

func (c *Composer) cacheSet(ctx context.Context, userID int64, page, pageSize int, result []models.Post) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.SetEx(ctx, feedCacheKey(userID, page, pageSize), raw, cacheTTL); err != nil {
		logger.Warn("feed cache write failed", zap.Error(err))
	}
}
