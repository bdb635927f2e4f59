package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

func TestSubmissionService_RequiresParticipation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)

	req := CreateSubmissionRequest{ContestID: c.ID, UserEmail: player.Email, TaskLink: "https://example.com/entry"}
	if _, err := env.submissions.Create(ctx, player, req); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	if _, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sub, err := env.submissions.Create(ctx, player, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.Status != model.SubmissionPending {
		t.Fatalf("status = %s, want pending", sub.Status)
	}

	if _, err := env.submissions.Create(ctx, player, req); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate: err = %v, want conflict", err)
	}
}

func TestSubmissionService_TaskLinkValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)

	for _, link := range []string{"", "   ", "not a url"} {
		_, err := env.submissions.Create(ctx, player, CreateSubmissionRequest{ContestID: c.ID, UserEmail: player.Email, TaskLink: link})
		if !errors.Is(err, common.ErrValidation) {
			t.Errorf("taskLink %q: err = %v, want validation", link, err)
		}
	}
}

func TestSubmissionService_ListByCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.approvedContest(t, 0)
	second := env.approvedContest(t, 0)

	for _, c := range []*model.Contest{first, second} {
		env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email})
		if _, err := env.submissions.Create(ctx, player, CreateSubmissionRequest{
			ContestID: c.ID, UserEmail: player.Email, TaskLink: "https://example.com/" + c.ID,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	subs, err := env.submissions.ListByCreator(ctx, creator, creator.Email)
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d submissions, want 2", len(subs))
	}

	if _, err := env.submissions.ListByCreator(ctx, player, creator.Email); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	subs, _ = env.submissions.ListByContest(ctx, first.ID)
	if len(subs) != 1 || subs[0].ContestID != first.ID {
		t.Fatalf("ListByContest = %+v", subs)
	}
}

func TestSubmissionService_ConcurrentDuplicatesKeepOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)
	if _, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	req := CreateSubmissionRequest{ContestID: c.ID, UserEmail: player.Email, TaskLink: "https://example.com/entry"}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.submissions.Create(ctx, player, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, common.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != attempts-1 {
		t.Fatalf("created = %d, conflicts = %d, want 1 and %d", created, conflicts, attempts-1)
	}
	subs, err := env.submissions.ListByContest(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListByContest: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d submissions, want 1", len(subs))
	}
}
