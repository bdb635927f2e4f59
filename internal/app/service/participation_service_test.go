package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

func TestParticipationService_RegisterOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)

	ok, _ := env.participations.CheckAlreadyRegistered(ctx, c.ID, player.Email)
	if ok {
		t.Fatal("registered before Register")
	}

	id, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email})
	if err != nil || id == "" {
		t.Fatalf("Register = %q, %v", id, err)
	}
	ok, _ = env.participations.CheckAlreadyRegistered(ctx, c.ID, player.Email)
	if !ok {
		t.Fatal("CheckAlreadyRegistered = false after Register")
	}

	_, err = env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("second Register: err = %v, want conflict", err)
	}
}

func TestParticipationService_ConcurrentRegistrationsKeepOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, common.ErrConflict) {
				t.Errorf("Register: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("%d registrations succeeded, want 1", succeeded)
	}
	list, _ := env.participations.ListByUser(ctx, player.Email)
	if len(list) != 1 {
		t.Fatalf("got %d participations, want 1", len(list))
	}
}

func TestParticipationService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	free := env.approvedContest(t, 0)
	paid := env.approvedContest(t, 10)

	tests := []struct {
		name  string
		actor model.Actor
		req   RegisterRequest
		want  error
	}{
		{"missing email", player, RegisterRequest{ContestID: free.ID}, common.ErrBadRequest},
		{"missing contest", player, RegisterRequest{UserEmail: player.Email}, common.ErrBadRequest},
		{"malformed id", player, RegisterRequest{ContestID: "x", UserEmail: player.Email}, common.ErrBadRequest},
		{"other user", player, RegisterRequest{ContestID: free.ID, UserEmail: creator.Email}, common.ErrForbidden},
		{"paid contest", player, RegisterRequest{ContestID: paid.ID, UserEmail: player.Email}, common.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.participations.Register(ctx, tt.actor, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	pending, _ := env.contests.Create(ctx, creator, CreateContestRequest{Name: "Draft"})
	_, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: pending.ID, UserEmail: player.Email})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("pending contest: err = %v, want validation", err)
	}
}

func TestParticipationService_ListByUserKeepsDeletedContests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kept := env.approvedContest(t, 0)
	gone := env.approvedContest(t, 0)
	for _, c := range []*model.Contest{kept, gone} {
		if _, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email}); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if err := env.contests.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	list, err := env.participations.ListByUser(ctx, player.Email)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d entries, want 2", len(list))
	}
	for _, pc := range list {
		switch pc.ContestID {
		case kept.ID:
			if pc.Contest == nil {
				t.Error("live contest entry has no contest fields")
			}
		case gone.ID:
			if pc.Contest != nil {
				t.Error("deleted contest entry still has contest fields")
			}
		default:
			t.Errorf("unexpected contest %s", pc.ContestID)
		}
	}
}
