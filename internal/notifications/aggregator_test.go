package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestAggregator(t *testing.T) (*Aggregator, *store.Store) {
	t.Helper()
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Notification{},
	))

	st := store.New(db)
	return NewAggregator(st, nil), st
}

func seedUser(t *testing.T, st *store.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, DisplayName: username}
	require.NoError(t, st.Create(context.Background(), u))
	return u
}

func seedNotification(t *testing.T, st *store.Store, typ models.NotificationType, target, actor int64, ts time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{Type: typ, TargetID: target, ActorID: actor, Timestamp: ts}
	require.NoError(t, st.Create(context.Background(), n))
	return n
}

func TestGroupedBucketsByType(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	now := time.Now().UTC()

	seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationComment, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationFollow, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationMention, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationMessage, target.ID, actor.ID, now)

	grouped, err := agg.Grouped(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, grouped.Likes, 1)
	assert.Len(t, grouped.Comments, 1)
	assert.Len(t, grouped.Follows, 1)
	assert.Len(t, grouped.Mentions, 1)
	assert.Len(t, grouped.Messages, 1)

	assert.Equal(t, "actor", grouped.Likes[0].Actor.Username)
	assert.Equal(t, "actor liked your post", grouped.Likes[0].Text)
}

func TestGroupedNewestFirstWithinBucket(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	now := time.Now().UTC()

	older := seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now.Add(-time.Hour))
	newer := seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now)

	grouped, err := agg.Grouped(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, grouped.Likes, 2)
	assert.Equal(t, newer.ID, grouped.Likes[0].ID)
	assert.Equal(t, older.ID, grouped.Likes[1].ID)
}

func TestGroupedPlaceholderActor(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")

	// Actor 9999 has no user record
	seedNotification(t, st, models.NotificationFollow, target.ID, 9999, time.Now().UTC())

	grouped, err := agg.Grouped(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, grouped.Follows, 1)
	assert.Equal(t, "Unknown User", grouped.Follows[0].Actor.DisplayName)
	assert.Equal(t, "unknown", grouped.Follows[0].Actor.Username)
}

func TestGroupedSurvivesActorLookupFailure(t *testing.T) {
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// No users table: every actor lookup fails at the store
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	st := store.New(db)
	agg := NewAggregator(st, nil)
	ctx := context.Background()

	seedNotification(t, st, models.NotificationLike, 1, 2, time.Now().UTC())

	grouped, err := agg.Grouped(ctx, 1)
	require.NoError(t, err)
	require.Len(t, grouped.Likes, 1)
	assert.Equal(t, "Unknown User", grouped.Likes[0].Actor.DisplayName)
	assert.Equal(t, "unknown", grouped.Likes[0].Actor.Username)

	items, err := agg.ListByUser(ctx, 1, false, 1, 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Unknown User", items[0].Actor.DisplayName)
}

func TestGroupedDropsUnknownTypes(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")

	// A row written by a newer or older version of the service
	stale := &models.Notification{Type: "poke", TargetID: target.ID, ActorID: actor.ID, Timestamp: time.Now().UTC()}
	require.NoError(t, st.Create(ctx, stale))
	seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, time.Now().UTC())

	grouped, err := agg.Grouped(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, grouped.Likes, 1)
	assert.Empty(t, grouped.Follows)
	assert.Empty(t, grouped.Messages)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	agg, st := setupTestAggregator(t)

	target := seedUser(t, st, "target")

	err := agg.Create(context.Background(), &models.Notification{Type: "poke", TargetID: target.ID})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
}

func TestMarkAsReadIdempotent(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	n := seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, time.Now().UTC())

	require.NoError(t, agg.MarkAsRead(ctx, n.ID))
	require.NoError(t, agg.MarkAsRead(ctx, n.ID))

	count, err := agg.UnreadCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsUnread(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	n := seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, time.Now().UTC())

	require.NoError(t, agg.MarkAsRead(ctx, n.ID))
	require.NoError(t, agg.MarkAsUnread(ctx, n.ID))
	require.NoError(t, agg.MarkAsUnread(ctx, n.ID))

	count, err := agg.UnreadCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = agg.MarkAsUnread(ctx, 9999)
	assert.True(t, errors.IsNotFound(err))
}

func TestMarkAsReadMissing(t *testing.T) {
	agg, _ := setupTestAggregator(t)

	err := agg.MarkAsRead(context.Background(), 9999)
	assert.True(t, errors.IsNotFound(err))
}

func TestMarkAllAsRead(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	now := time.Now().UTC()
	seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationFollow, target.ID, actor.ID, now)

	require.NoError(t, agg.MarkAllAsRead(ctx, target.ID))

	count, err := agg.UnreadCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// No unread left; running again is a no-op
	require.NoError(t, agg.MarkAllAsRead(ctx, target.ID))
}

func TestMarkSelectedAsRead(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	actor := seedUser(t, st, "actor")
	now := time.Now().UTC()
	a := seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationFollow, target.ID, actor.ID, now)

	require.NoError(t, agg.MarkSelectedAsRead(ctx, target.ID, []int64{a.ID, 9999}))

	count, err := agg.UnreadCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnreadCountScopedToTarget(t *testing.T) {
	agg, st := setupTestAggregator(t)
	ctx := context.Background()

	target := seedUser(t, st, "target")
	other := seedUser(t, st, "other")
	actor := seedUser(t, st, "actor")
	now := time.Now().UTC()
	seedNotification(t, st, models.NotificationLike, target.ID, actor.ID, now)
	seedNotification(t, st, models.NotificationLike, other.ID, actor.ID, now)

	count, err := agg.UnreadCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestContentPreview(t *testing.T) {
	short := "brief"
	assert.Equal(t, short, ContentPreview(short))

	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}
	preview := ContentPreview(long)
	assert.Len(t, []rune(preview), previewMaxLength+3)
	assert.Equal(t, "...", preview[len(preview)-3:])
}
