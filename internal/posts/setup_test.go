package posts

import (
	"context"
	"testing"

	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/social"
	"github.com/pulse-social/backend/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) (*Service, *Comments, *store.Store) {
	t.Helper()
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FollowEdge{},
		&models.Post{},
		&models.Comment{},
	))

	st := store.New(db)
	svc := NewService(st, social.NewCounters(st))
	return svc, NewComments(st, svc), st
}

func createTestAuthor(t *testing.T, st *store.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username}
	require.NoError(t, st.Create(context.Background(), user))
	return user
}
