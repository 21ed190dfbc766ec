package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/feed"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/messaging"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/posts"
	"github.com/pulse-social/backend/internal/social"
	"github.com/pulse-social/backend/internal/store"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HandlerTestSuite exercises the HTTP surface end to end against an
// in-memory database.
type HandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	store  *store.Store
	router *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), db.AutoMigrate(
		&models.User{},
		&models.FollowEdge{},
		&models.Post{},
		&models.Comment{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
	))

	s.db = db
	s.store = store.New(db)

	counters := social.NewCounters(s.store)
	graph := social.NewGraph(s.store, counters)
	users := social.NewUsers(s.store, graph)
	postSvc := posts.NewService(s.store, counters)
	comments := posts.NewComments(s.store, postSvc)
	composer := feed.NewComposer(postSvc, graph, nil)
	aggregator := notifications.NewAggregator(s.store, nil)
	messenger := messaging.NewService(s.store)

	h := NewHandlers(users, graph, postSvc, comments, composer, aggregator, messenger)

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	h.RegisterRoutes(s.router.Group("/api/v1"))
}

func (s *HandlerTestSuite) request(method, path string, viewerID int64, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewerID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", viewerID))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) createUser(username string) int64 {
	w := s.request(http.MethodPost, "/api/v1/users", 0, gin.H{"username": username})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var user models.User
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &user))
	return user.ID
}

func (s *HandlerTestSuite) TestCreateAndGetUser() {
	id := s.createUser("alice")

	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), 0, nil)
	s.Equal(http.StatusOK, w.Code)

	var user models.User
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal("alice", user.Username)
}

func (s *HandlerTestSuite) TestCreateUserDuplicateUsername() {
	s.createUser("alice")
	w := s.request(http.MethodPost, "/api/v1/users", 0, gin.H{"username": "alice"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestUserDirectory() {
	s.createUser("alice")
	s.createUser("bob")

	w := s.request(http.MethodGet, "/api/v1/users?page=1&pageSize=10", 0, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Users []models.User `json:"users"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Users, 2)
}

func (s *HandlerTestSuite) TestFollowAndUnfollow() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", bob), alice, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", bob), 0, nil)
	var user models.User
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal(1, user.FollowersCount)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d/follow", bob), alice, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", bob), 0, nil)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal(0, user.FollowersCount)
}

func (s *HandlerTestSuite) TestSelfFollowRejected() {
	alice := s.createUser("alice")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", alice), alice, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestFollowRequiresViewer() {
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", bob), 0, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestCreatePostAndLike() {
	alice := s.createUser("alice")

	w := s.request(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "hello"})
	s.Require().Equal(http.StatusCreated, w.Code)

	var post models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &post))

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/like", post.ID), alice, nil)
	s.Equal(http.StatusOK, w.Code)

	var liked models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &liked))
	s.True(liked.IsLiked)
	s.Equal(1, liked.Likes)
}

func (s *HandlerTestSuite) TestDeletePostOwnership() {
	alice := s.createUser("alice")
	mallory := s.createUser("mallory")

	w := s.request(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "mine"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var post models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &post))

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), mallory, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), alice, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestFeedComposition() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", bob), alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/api/v1/posts", bob, gin.H{"content": "from bob"})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodGet, "/api/v1/feed", alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Posts []models.Post `json:"posts"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Posts, 1)
	s.Equal("from bob", resp.Posts[0].Content)
}

func (s *HandlerTestSuite) TestCommentFlow() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "discuss"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var post models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &post))

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), bob, gin.H{"content": "nice"})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), 0, nil)
	var reloaded models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &reloaded))
	s.Equal(1, reloaded.Comments)
}

func (s *HandlerTestSuite) TestUpdateCommentOwnership() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "discuss"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var post models.Post
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &post))

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), bob, gin.H{"content": "draft"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var comment models.Comment
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &comment))

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/comments/%d", comment.ID), alice, gin.H{"content": "hijack"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/comments/%d", comment.ID), bob, gin.H{"content": "final"})
	s.Require().Equal(http.StatusOK, w.Code)
	var updated models.Comment
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.Equal("final", updated.Content)
}

func (s *HandlerTestSuite) TestNotificationFlow() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.request(http.MethodPost, "/api/v1/notifications", bob, gin.H{
		"type":     "like",
		"targetId": alice,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var countResp struct {
		Count int64 `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &countResp))
	s.Equal(int64(1), countResp.Count)

	w = s.request(http.MethodGet, "/api/v1/notifications", alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var grouped notifications.Grouped
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &grouped))
	s.Require().Len(grouped.Likes, 1)
	s.Equal("bob", grouped.Likes[0].Actor.Username)

	w = s.request(http.MethodPut, "/api/v1/notifications/read-all", alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &countResp))
	s.Zero(countResp.Count)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/notifications/%d/unread", grouped.Likes[0].ID), alice, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &countResp))
	s.Equal(int64(1), countResp.Count)
}

func (s *HandlerTestSuite) TestConversationFlow() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	carol := s.createUser("carol")

	w := s.request(http.MethodPost, "/api/v1/conversations", alice, gin.H{"participants": []int64{bob}})
	s.Require().Equal(http.StatusCreated, w.Code)
	var conv models.Conversation
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &conv))

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", conv.ID), alice, gin.H{"content": "hi bob"})
	s.Require().Equal(http.StatusCreated, w.Code)

	// Outsiders can't read the conversation
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d/messages", conv.ID), carol, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d/messages", conv.ID), bob, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var msgResp struct {
		Messages []models.Message `json:"messages"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &msgResp))
	s.Require().Len(msgResp.Messages, 1)
	s.Equal("hi bob", msgResp.Messages[0].Content)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/messages/%d/read", msgResp.Messages[0].ID), bob, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/conversations/%d/read", conv.ID), bob, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/conversations/%d", conv.ID), alice, gin.H{"name": "catchup"})
	s.Require().Equal(http.StatusOK, w.Code)
	var renamed models.Conversation
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &renamed))
	s.Equal("catchup", renamed.Name)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
