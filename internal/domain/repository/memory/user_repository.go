package memory

import (
	"context"
	"sort"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *model.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.Email]; ok {
		return false, nil
	}
	u := *user
	u.WinCount = 0
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.Email] = u
	return true, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) List(_ context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) UpdateProfile(_ context.Context, email string, upd model.ProfileUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[email]
	if !ok {
		return common.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	u.UpdatedAt = time.Now()
	r.s.users[email] = u
	return nil
}

func (r *userRepository) UpdateRole(_ context.Context, email, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[email]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	r.s.users[email] = u
	return nil
}

func (r *userRepository) TopByWins(_ context.Context, limit int) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := []model.User{}
	for _, u := range r.s.users {
		if u.WinCount > 0 {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].WinCount == users[j].WinCount {
			return users[i].Email < users[j].Email
		}
		return users[i].WinCount > users[j].WinCount
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
