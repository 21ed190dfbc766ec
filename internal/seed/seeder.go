// Package seed fills a development database with realistic fake data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// imageURL returns a placeholder image URL; gofakeit v7 removed ImageURL,
// which produced this exact format.
func imageURL(width, height int) string {
	return fmt.Sprintf("https://picsum.photos/%d/%d", width, height)
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating follow graph...")
	if err := s.seedFollows(users, 200); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(users, posts, 600); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Creating notifications...")
	if err := s.seedNotifications(users, posts, 400); err != nil {
		return fmt.Errorf("failed to seed notifications: %w", err)
	}

	logger.Log.Info("Creating conversations...")
	if err := s.seedConversations(users, 40); err != nil {
		return fmt.Errorf("failed to seed conversations: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)))
	return nil
}

// Clean removes all seeded data.
func (s *Seeder) Clean() error {
	tables := []interface{}{
		&models.Message{},
		&models.Conversation{},
		&models.Notification{},
		&models.Comment{},
		&models.Post{},
		&models.FollowEdge{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	var existing int64
	s.db.Model(&models.User{}).Count(&existing)
	if existing >= int64(count) {
		var users []models.User
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing users, skipping creation",
			zap.Int("total_users", len(users)))
		return users, nil
	}

	users := make([]models.User, 0, count)
	taken := map[string]bool{}
	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		for taken[username] {
			username = gofakeit.Username()
		}
		taken[username] = true

		user := models.User{
			Username:       username,
			DisplayName:    gofakeit.Name(),
			Bio:            gofakeit.Sentence(8),
			ProfilePicture: imageURL(200, 200),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followed := users[rand.Intn(len(users))]
		if follower.ID == followed.ID {
			continue
		}

		edge := models.FollowEdge{FollowerID: follower.ID, FollowedID: followed.ID}
		res := s.db.Where("follower_id = ? AND followed_id = ?", edge.FollowerID, edge.FollowedID).
			FirstOrCreate(&edge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}

		s.db.Model(&models.User{}).Where("id = ?", followed.ID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + 1"))
		s.db.Model(&models.User{}).Where("id = ?", follower.ID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1"))
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]

		post := models.Post{
			AuthorID:  author.ID,
			Content:   gofakeit.Sentence(12),
			Timestamp: time.Now().UTC().Add(-time.Duration(rand.Intn(14*24)) * time.Hour),
			Likes:     rand.Intn(100),
			Shares:    rand.Intn(20),
		}
		if rand.Intn(3) == 0 {
			url := imageURL(640, 480)
			post.ImageURL = url
			post.MediaURLs = models.MediaList{url}
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)

		s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1"))
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]
		author := users[rand.Intn(len(users))]

		comment := models.Comment{
			PostID:    post.ID,
			AuthorID:  author.ID,
			Content:   gofakeit.Sentence(8),
			Timestamp: post.Timestamp.Add(time.Duration(rand.Intn(48)) * time.Hour),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}

		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comments", gorm.Expr("comments + 1"))
	}
	return nil
}

func (s *Seeder) seedNotifications(users []models.User, posts []models.Post, count int) error {
	types := []models.NotificationType{
		models.NotificationLike,
		models.NotificationComment,
		models.NotificationFollow,
		models.NotificationMention,
		models.NotificationMessage,
	}

	for i := 0; i < count; i++ {
		target := users[rand.Intn(len(users))]
		actor := users[rand.Intn(len(users))]
		if target.ID == actor.ID {
			continue
		}

		n := models.Notification{
			Type:      types[rand.Intn(len(types))],
			TargetID:  target.ID,
			ActorID:   actor.ID,
			Read:      rand.Intn(2) == 0,
			Timestamp: time.Now().UTC().Add(-time.Duration(rand.Intn(7*24)) * time.Hour),
		}
		switch n.Type {
		case models.NotificationLike, models.NotificationComment, models.NotificationMention:
			post := posts[rand.Intn(len(posts))]
			n.PostID = post.ID
			n.Content = post.Content
			if n.Type == models.NotificationComment {
				n.CommentText = gofakeit.Sentence(6)
			}
		}
		if err := s.db.Create(&n).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedConversations(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		conv := models.Conversation{Participants: models.IDList{a.ID, b.ID}}
		if err := s.db.Create(&conv).Error; err != nil {
			return err
		}

		msgCount := 2 + rand.Intn(8)
		var last models.Message
		for j := 0; j < msgCount; j++ {
			sender := a
			if rand.Intn(2) == 0 {
				sender = b
			}
			msg := models.Message{
				ConversationID: conv.ID,
				SenderID:       sender.ID,
				Content:        gofakeit.Sentence(6),
				Type:           "text",
				ReadBy:         models.IDList{sender.ID},
				Timestamp:      time.Now().UTC().Add(-time.Duration(rand.Intn(72)) * time.Hour),
			}
			if err := s.db.Create(&msg).Error; err != nil {
				return err
			}
			last = msg
		}

		if err := s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(map[string]interface{}{
			"last_message":      last.Content,
			"last_message_time": last.Timestamp,
			"unread_count":      rand.Intn(msgCount),
		}).Error; err != nil {
			return err
		}
	}
	return nil
}
