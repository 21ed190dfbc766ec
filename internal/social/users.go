package social

import (
	"context"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/store"
)

// UserWithFollowState is a user listing entry enriched with the viewer's
// relationship to them.
type UserWithFollowState struct {
	models.User
	IsFollowing bool `json:"is_following"`
}

// Users provides profile reads and updates plus follower/following
// listings enriched against the follow graph.
type Users struct {
	store *store.Store
	graph *Graph
}

// NewUsers creates a user service over the record store and follow graph.
func NewUsers(st *store.Store, graph *Graph) *Users {
	return &Users{store: st, graph: graph}
}

// Create registers a new user. Usernames are unique.
func (u *Users) Create(ctx context.Context, username, displayName string) (*models.User, error) {
	if username == "" {
		return nil, errors.ValidationError("username", "username is required")
	}
	if displayName == "" {
		displayName = username
	}

	taken, err := u.store.Count(ctx, &models.User{}, store.Query{
		Filters: map[string]interface{}{"username": username},
	})
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, errors.Conflict("username")
	}

	user := models.User{Username: username, DisplayName: displayName}
	if err := u.store.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Get fetches a user by id.
func (u *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := u.store.GetByID(ctx, &user, id); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername fetches a user by their unique username.
func (u *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var users []models.User
	err := u.store.List(ctx, &users, store.Query{
		Filters:  map[string]interface{}{"username": username},
		PageSize: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.NotFound("user")
	}
	return &users[0], nil
}

// List returns a page of the user directory, newest accounts first.
func (u *Users) List(ctx context.Context, page, pageSize int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	var users []models.User
	err := u.store.List(ctx, &users, store.Query{
		OrderBy:  "created_at DESC",
		Page:     page,
		PageSize: pageSize,
	})
	return users, err
}

// UpdateProfile writes the editable profile fields.
func (u *Users) UpdateProfile(ctx context.Context, id int64, fields map[string]interface{}) (*models.User, error) {
	allowed := map[string]bool{
		"username":        true,
		"display_name":    true,
		"bio":             true,
		"profile_picture": true,
		"cover_photo":     true,
	}
	updates := map[string]interface{}{}
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return nil, errors.ValidationError("fields", "no updatable fields provided")
	}

	if err := u.store.Update(ctx, &models.User{}, id, updates); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}
	return u.Get(ctx, id)
}

// Followers lists the users following userID, with each entry's
// IsFollowing flag computed relative to viewerID.
func (u *Users) Followers(ctx context.Context, viewerID, userID int64) ([]UserWithFollowState, error) {
	ids, err := u.graph.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.enrich(ctx, viewerID, ids)
}

// Following lists the users userID follows, enriched the same way.
func (u *Users) Following(ctx context.Context, viewerID, userID int64) ([]UserWithFollowState, error) {
	ids, err := u.graph.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.enrich(ctx, viewerID, ids)
}

func (u *Users) enrich(ctx context.Context, viewerID int64, ids []int64) ([]UserWithFollowState, error) {
	if len(ids) == 0 {
		return []UserWithFollowState{}, nil
	}

	in := make([]interface{}, len(ids))
	for i, id := range ids {
		in[i] = id
	}

	var users []models.User
	err := u.store.List(ctx, &users, store.Query{
		In: map[string][]interface{}{"id": in},
	})
	if err != nil {
		return nil, err
	}

	viewerFollowing, err := u.graph.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	followingSet := make(map[int64]bool, len(viewerFollowing))
	for _, id := range viewerFollowing {
		followingSet[id] = true
	}

	out := make([]UserWithFollowState, 0, len(users))
	for _, user := range users {
		out = append(out, UserWithFollowState{
			User:        user,
			IsFollowing: followingSet[user.ID],
		})
	}
	return out, nil
}
