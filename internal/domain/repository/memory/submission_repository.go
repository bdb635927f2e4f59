package memory

import (
	"context"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type submissionRepository struct {
	s *Store
}

func (r *submissionRepository) Create(_ context.Context, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{sub.ContestID, sub.UserEmail}
	if _, ok := r.s.submitted[key]; ok {
		return fmt.Errorf("already submitted: %w", common.ErrConflict)
	}
	r.s.submitted[key] = struct{}{}
	r.s.submissions = append(r.s.submissions, *sub)
	return nil
}

func (r *submissionRepository) Exists(_ context.Context, contestID, userEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.submitted[pairKey{contestID, userEmail}]
	return ok, nil
}

func (r *submissionRepository) ListByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	return r.ListByContests(ctx, []string{contestID})
}

func (r *submissionRepository) ListByContests(_ context.Context, contestIDs []string) ([]model.Submission, error) {
	want := make(map[string]struct{}, len(contestIDs))
	for _, id := range contestIDs {
		want[id] = struct{}{}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.Submission{}
	for _, sub := range r.s.submissions {
		if _, ok := want[sub.ContestID]; ok {
			out = append(out, sub)
		}
	}
	return out, nil
}
