package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/metrics"
	"github.com/pulse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return New(db)
}

func TestGetByIDMissingIsNotFound(t *testing.T) {
	st := setupStore(t)

	var user models.User
	err := st.GetByID(context.Background(), &user, 42)
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateAndGet(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", DisplayName: "Alice"}
	require.NoError(t, st.Create(ctx, user))
	require.NotZero(t, user.ID)

	var loaded models.User
	require.NoError(t, st.GetByID(ctx, &loaded, user.ID))
	assert.Equal(t, "alice", loaded.Username)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	st := setupStore(t)

	err := st.Update(context.Background(), &models.User{}, 42, map[string]interface{}{"bio": "x"})
	assert.True(t, errors.IsNotFound(err))
}

func TestFailureIncrementsCounter(t *testing.T) {
	st := setupStore(t)

	// Posts table was never migrated, so the list fails at the driver
	counter := metrics.Get().StoreFailuresTotal.WithLabelValues("list")
	before := testutil.ToFloat64(counter)

	var out []models.Post
	err := st.List(context.Background(), &out, Query{})
	assert.True(t, errors.IsStoreFailure(err))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	st := setupStore(t)

	require.NoError(t, st.Delete(context.Background(), &models.User{}, 42))
}

func TestListWithFiltersAndPaging(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, st.Create(ctx, &models.User{Username: name, DisplayName: name, Bio: "seeded"}))
	}

	var page []models.User
	require.NoError(t, st.List(ctx, &page, Query{
		Filters:  map[string]interface{}{"bio": "seeded"},
		OrderBy:  "username ASC",
		Page:     1,
		PageSize: 2,
	}))
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0].Username)

	require.NoError(t, st.List(ctx, &page, Query{
		Filters:  map[string]interface{}{"bio": "seeded"},
		OrderBy:  "username ASC",
		Page:     2,
		PageSize: 2,
	}))
	require.Len(t, page, 1)
	assert.Equal(t, "carol", page[0].Username)
}

func TestListWithInClause(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	a := &models.User{Username: "alice", DisplayName: "alice"}
	b := &models.User{Username: "bob", DisplayName: "bob"}
	c := &models.User{Username: "carol", DisplayName: "carol"}
	for _, u := range []*models.User{a, b, c} {
		require.NoError(t, st.Create(ctx, u))
	}

	var out []models.User
	require.NoError(t, st.List(ctx, &out, Query{
		In: map[string][]interface{}{"id": {a.ID, c.ID}},
	}))
	assert.Len(t, out, 2)
}

func TestGetFields(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", DisplayName: "Alice", FollowersCount: 7}
	require.NoError(t, st.Create(ctx, user))

	fields, err := st.GetFields(ctx, &models.User{}, user.ID, "followers_count")
	require.NoError(t, err)
	require.Contains(t, fields, "followers_count")

	_, err = st.GetFields(ctx, &models.User{}, 9999, "followers_count")
	assert.True(t, errors.IsNotFound(err))
}

func TestCount(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, &models.User{Username: "alice", DisplayName: "alice"}))
	require.NoError(t, st.Create(ctx, &models.User{Username: "bob", DisplayName: "bob"}))

	count, err := st.Count(ctx, &models.User{}, Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = st.Count(ctx, &models.User{}, Query{
		Filters: map[string]interface{}{"username": "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpdateWhere(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, &models.User{Username: "alice", DisplayName: "alice", Bio: "old"}))
	require.NoError(t, st.Create(ctx, &models.User{Username: "bob", DisplayName: "bob", Bio: "old"}))

	require.NoError(t, st.UpdateWhere(ctx, &models.User{}, Query{
		Filters: map[string]interface{}{"bio": "old"},
	}, map[string]interface{}{"bio": "new"}))

	count, err := st.Count(ctx, &models.User{}, Query{
		Filters: map[string]interface{}{"bio": "new"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Matching nothing is not an error
	require.NoError(t, st.UpdateWhere(ctx, &models.User{}, Query{
		Filters: map[string]interface{}{"bio": "absent"},
	}, map[string]interface{}{"bio": "x"}))
}
