package service

import (
	"context"
	"errors"
	"testing"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

func TestUserService_CreateIsIdempotentAndForcesRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.Create(ctx, CreateUserRequest{Email: "new@example.com", Name: "New"})
	if err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}
	created, err = env.users.Create(ctx, CreateUserRequest{Email: "new@example.com", Name: "Again"})
	if err != nil || created {
		t.Fatalf("repeat Create = %v, %v", created, err)
	}

	u, _ := env.users.FindByEmail(ctx, "new@example.com")
	if u.Role != model.RoleUser || u.Name != "New" {
		t.Fatalf("user = %+v", u)
	}
}

func TestUserService_GetRoleSelfOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.users.GetRole(ctx, creator, creator.Email)
	if err != nil || role != model.RoleCreator {
		t.Fatalf("GetRole = %q, %v", role, err)
	}
	if _, err := env.users.GetRole(ctx, player, creator.Email); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	ghost := model.Actor{Email: "ghost@example.com"}
	role, err = env.users.GetRole(ctx, ghost, ghost.Email)
	if err != nil || role != "" {
		t.Fatalf("missing user role = %q, %v", role, err)
	}
}

func TestUserService_UpdateProfileAndRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	name := "Ana B."

	if err := env.users.UpdateProfile(ctx, creator, player.Email, model.ProfileUpdate{Name: &name}); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if err := env.users.UpdateProfile(ctx, player, player.Email, model.ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	u, _ := env.users.FindByEmail(ctx, player.Email)
	if u.Name != name {
		t.Fatalf("name = %q", u.Name)
	}

	if err := env.users.UpdateRole(ctx, player.Email, "superuser"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if err := env.users.UpdateRole(ctx, player.Email, model.RoleCreator); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if err := env.users.UpdateRole(ctx, "ghost@example.com", model.RoleCreator); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
