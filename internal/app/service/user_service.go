package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

// Create registers a user on first sign-in. A repeat call for the same email
// is a no-op and reports created=false.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (bool, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return false, fmt.Errorf("email is required: %w", common.ErrBadRequest)
	}

	user := &model.User{
		Email:     email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		Role:      model.RoleUser, // never caller-supplied
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

// GetRole returns the stored role of the actor's own account, or "" when no
// record exists.
func (s *UserService) GetRole(ctx context.Context, actor model.Actor, email string) (string, error) {
	if actor.Email != email {
		return "", fmt.Errorf("cannot read another user's role: %w", common.ErrForbidden)
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return user.Role, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, email string, upd model.ProfileUpdate) error {
	if actor.Email != email {
		return fmt.Errorf("cannot edit other profiles: %w", common.ErrForbidden)
	}
	if upd.Name == nil && upd.PhotoURL == nil {
		return fmt.Errorf("nothing to update: %w", common.ErrBadRequest)
	}
	if err := s.userRepo.UpdateProfile(ctx, email, upd); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *UserService) UpdateRole(ctx context.Context, email, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("unknown role %q: %w", role, common.ErrValidation)
	}
	if err := s.userRepo.UpdateRole(ctx, email, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}
