package memory

import (
	"context"
	"fmt"
	"sort"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type participationRepository struct {
	s *Store
}

func (r *participationRepository) Create(_ context.Context, p *model.Participation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.insertParticipationLocked(*p) {
		return fmt.Errorf("already registered: %w", common.ErrConflict)
	}
	return nil
}

// insertParticipationLocked reports false when the pair is already registered.
func (s *Store) insertParticipationLocked(p model.Participation) bool {
	key := pairKey{p.ContestID, p.UserEmail}
	if _, ok := s.registered[key]; ok {
		return false
	}
	s.registered[key] = struct{}{}
	s.participations = append(s.participations, p)
	return true
}

func (r *participationRepository) Exists(_ context.Context, contestID, userEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.registered[pairKey{contestID, userEmail}]
	return ok, nil
}

func (r *participationRepository) ListByUser(_ context.Context, userEmail string) ([]model.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.Participation{}
	for _, p := range r.s.participations {
		if p.UserEmail == userEmail {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}
