package service

import (
	"context"
	"errors"
	"testing"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository/memory"

	"github.com/shopspring/decimal"
)

var (
	admin   = model.Actor{Email: "admin@example.com", Role: model.RoleAdmin}
	creator = model.Actor{Email: "cara@example.com", Role: model.RoleCreator}
	player  = model.Actor{Email: "ana@example.com", Role: model.RoleUser}
)

type testEnv struct {
	store          *memory.Store
	contests       *ContestService
	participations *ParticipationService
	submissions    *SubmissionService
	users          *UserService
	leaderboard    *LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:          store,
		contests:       NewContestService(store.Contests(), store.Participations()),
		participations: NewParticipationService(store.Participations(), store.Contests()),
		submissions:    NewSubmissionService(store.Submissions(), store.Participations(), store.Contests()),
		users:          NewUserService(store.Users()),
		leaderboard:    NewLeaderboardService(store.Users()),
	}
	for _, a := range []model.Actor{admin, creator, player} {
		if _, err := store.Users().Create(context.Background(), &model.User{Email: a.Email, Role: a.Role}); err != nil {
			t.Fatalf("seed user %s: %v", a.Email, err)
		}
	}
	return env
}

// approvedContest creates a contest as creator and has admin approve it.
func (e *testEnv) approvedContest(t *testing.T, price int64) *model.Contest {
	t.Helper()
	ctx := context.Background()
	c, err := e.contests.Create(ctx, creator, CreateContestRequest{
		Name:  "Logo Sprint",
		Type:  "Image Design",
		Price: decimal.NewFromInt(price),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	approved := model.ContestApproved
	if err := e.contests.Update(ctx, admin, c.ID, model.ContestPatch{Status: &approved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	c, err = e.contests.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return c
}

func TestContestService_CreateForcesInitialState(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.contests.Create(context.Background(), creator, CreateContestRequest{
		Name: "  Short Story Cup ",
		Type: "Article Writing",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Status != model.ContestPending || c.ParticipantsCount != 0 {
		t.Fatalf("initial state = %s/%d, want pending/0", c.Status, c.ParticipantsCount)
	}
	if c.CreatorEmail != creator.Email {
		t.Fatalf("creatorEmail = %q", c.CreatorEmail)
	}
	if c.Slug != "short-story-cup" || c.Type != "article-writing" {
		t.Fatalf("slug/type = %q/%q", c.Slug, c.Type)
	}
}

func TestContestService_CreatorCannotChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c, _ := env.contests.Create(ctx, creator, CreateContestRequest{Name: "Pitch Night"})

	approved := model.ContestApproved
	err := env.contests.Update(ctx, creator, c.ID, model.ContestPatch{Status: &approved})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	completed := model.ContestCompleted
	err = env.contests.Update(ctx, admin, c.ID, model.ContestPatch{Status: &completed})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestContestService_ApprovedListingFiltersByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.contests.Create(ctx, creator, CreateContestRequest{Name: "Still Pending", Type: "Image Design"})
	c := env.approvedContest(t, 0)

	list, err := env.contests.ListApproved(ctx, "Image Design")
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(list) != 1 || list[0].ID != c.ID {
		t.Fatalf("ListApproved = %+v, want only %s", list, c.ID)
	}

	list, _ = env.contests.ListApproved(ctx, "Gaming Reviews")
	if len(list) != 0 {
		t.Fatalf("got %d gaming contests, want 0", len(list))
	}
	list, _ = env.contests.ListApproved(ctx, "all")
	if len(list) != 1 {
		t.Fatalf("got %d contests for all, want 1", len(list))
	}
}

func TestContestService_DeclareWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.approvedContest(t, 0)
	winner := model.Winner{Email: player.Email, Name: "Ana"}

	err := env.contests.DeclareWinner(ctx, creator, c.ID, winner)
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("unregistered winner: err = %v, want validation", err)
	}

	if _, err := env.participations.Register(ctx, player, RegisterRequest{ContestID: c.ID, UserEmail: player.Email}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	stranger := model.Actor{Email: "other@example.com", Role: model.RoleCreator}
	if err := env.contests.DeclareWinner(ctx, stranger, c.ID, winner); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("stranger: err = %v, want forbidden", err)
	}

	if err := env.contests.DeclareWinner(ctx, creator, c.ID, winner); err != nil {
		t.Fatalf("DeclareWinner: %v", err)
	}
	err = env.contests.DeclareWinner(ctx, admin, c.ID, model.Winner{Email: creator.Email})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("second declare: err = %v, want conflict", err)
	}

	got, _ := env.contests.Get(ctx, c.ID)
	if got.Status != model.ContestCompleted || got.WinnerEmail == nil || *got.WinnerEmail != player.Email || got.WinDate == nil {
		t.Fatalf("contest after declare = %+v", got)
	}

	won, _ := env.contests.ListWonBy(ctx, player.Email)
	if len(won) != 1 {
		t.Fatalf("ListWonBy returned %d contests, want 1", len(won))
	}

	board, err := env.leaderboard.Top(ctx)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(board) != 1 || board[0].Email != player.Email || board[0].WinCount != 1 || board[0].Rank != 1 {
		t.Fatalf("leaderboard = %+v", board)
	}
}

func TestContestService_GetRejectsMalformedID(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.contests.Get(context.Background(), "not-a-uuid"); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if _, err := env.contests.Get(context.Background(), "6f1c1e52-54d5-4c1d-9a43-6a1b1f0a3b11"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCategoryKey(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"all":            "",
		"Business Ideas": "business-idea",
		"gaming-review":  "gaming-review",
		"Photo Essays":   "photo-essays",
	}
	for label, want := range tests {
		if got := CategoryKey(label); got != want {
			t.Errorf("CategoryKey(%q) = %q, want %q", label, got, want)
		}
	}
}
