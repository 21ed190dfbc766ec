package social

import (
	"context"
	"testing"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowCreatesEdgeAndCounts(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))
	ctx := context.Background()

	alice := createTestUser(t, st, "alice")
	bob := createTestUser(t, st, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))

	following, err := graph.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	var reloadedBob, reloadedAlice models.User
	require.NoError(t, st.GetByID(ctx, &reloadedBob, bob.ID))
	require.NoError(t, st.GetByID(ctx, &reloadedAlice, alice.ID))
	assert.Equal(t, 1, reloadedBob.FollowersCount)
	assert.Equal(t, 1, reloadedAlice.FollowingCount)
}

func TestFollowSelfRejected(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))

	alice := createTestUser(t, st, "alice")

	err := graph.Follow(context.Background(), alice.ID, alice.ID)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidOperation))
}

func TestFollowMissingTarget(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))

	alice := createTestUser(t, st, "alice")

	err := graph.Follow(context.Background(), alice.ID, 9999)
	assert.True(t, errors.IsNotFound(err))
}

func TestFollowIdempotent(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))
	ctx := context.Background()

	alice := createTestUser(t, st, "alice")
	bob := createTestUser(t, st, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))

	// Counters move only once
	var reloaded models.User
	require.NoError(t, st.GetByID(ctx, &reloaded, bob.ID))
	assert.Equal(t, 1, reloaded.FollowersCount)
}

func TestUnfollowRemovesEdgeAndCounts(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))
	ctx := context.Background()

	alice := createTestUser(t, st, "alice")
	bob := createTestUser(t, st, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, graph.Unfollow(ctx, alice.ID, bob.ID))

	following, err := graph.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	var reloaded models.User
	require.NoError(t, st.GetByID(ctx, &reloaded, bob.ID))
	assert.Equal(t, 0, reloaded.FollowersCount)
}

func TestUnfollowWithoutEdgeIsNoOp(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))
	ctx := context.Background()

	alice := createTestUser(t, st, "alice")
	bob := createTestUser(t, st, "bob")

	require.NoError(t, graph.Unfollow(ctx, alice.ID, bob.ID))

	var reloaded models.User
	require.NoError(t, st.GetByID(ctx, &reloaded, bob.ID))
	assert.Equal(t, 0, reloaded.FollowersCount)
}

func TestFollowingAndFollowerIDs(t *testing.T) {
	st := setupTestStore(t)
	graph := NewGraph(st, NewCounters(st))
	ctx := context.Background()

	alice := createTestUser(t, st, "alice")
	bob := createTestUser(t, st, "bob")
	carol := createTestUser(t, st, "carol")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, graph.Follow(ctx, alice.ID, carol.ID))
	require.NoError(t, graph.Follow(ctx, bob.ID, carol.ID))

	following, err := graph.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{bob.ID, carol.ID}, following)

	followers, err := graph.FollowerIDs(ctx, carol.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{alice.ID, bob.ID}, followers)
}
