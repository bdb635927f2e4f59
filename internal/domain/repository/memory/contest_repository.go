package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type contestRepository struct {
	s *Store
}

func (r *contestRepository) Create(_ context.Context, c *model.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contests[c.ID]; ok {
		return fmt.Errorf("contest %s already exists: %w", c.ID, common.ErrConflict)
	}
	stored := *c
	stored.UpdatedAt = stored.CreatedAt
	r.s.contests[c.ID] = stored
	r.s.contestOrder = append(r.s.contestOrder, c.ID)
	return nil
}

func (r *contestRepository) FindByID(_ context.Context, id string) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r *contestRepository) FindByIDs(_ context.Context, ids []string) ([]model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.Contest{}
	for _, id := range ids {
		if c, ok := r.s.contests[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *contestRepository) List(_ context.Context, f model.ContestFilter) ([]model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.Contest{}
	for _, id := range r.s.contestOrder {
		c, ok := r.s.contests[id]
		if !ok {
			continue
		}
		if f.CreatorEmail != "" && c.CreatorEmail != f.CreatorEmail {
			continue
		}
		if f.WinnerEmail != "" && (c.WinnerEmail == nil || *c.WinnerEmail != f.WinnerEmail) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		out = append(out, c)
	}

	switch f.OrderBy {
	case model.OrderNewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case model.OrderMostParticipants:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].ParticipantsCount == out[j].ParticipantsCount {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ParticipantsCount > out[j].ParticipantsCount
		})
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *contestRepository) Update(_ context.Context, id string, p model.ContestPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("empty contest update: %w", common.ErrBadRequest)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contests[id]
	if !ok {
		return common.ErrNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.PrizeMoney != nil {
		c.PrizeMoney = *p.PrizeMoney
	}
	if p.TaskInstruction != nil {
		c.TaskInstruction = *p.TaskInstruction
	}
	if p.Deadline != nil {
		d := *p.Deadline
		c.Deadline = &d
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	c.UpdatedAt = time.Now()
	r.s.contests[id] = c
	return nil
}

func (r *contestRepository) DeclareWinner(_ context.Context, id string, w model.Winner, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contests[id]
	if !ok {
		return common.ErrNotFound
	}
	if c.HasWinner() {
		return fmt.Errorf("winner already declared for contest %s: %w", id, common.ErrConflict)
	}

	email, name, photo := w.Email, w.Name, w.Photo
	c.WinnerEmail, c.WinnerName, c.WinnerPhoto = &email, &name, &photo
	c.Status = model.ContestCompleted
	c.WinDate = &at
	c.UpdatedAt = at
	r.s.contests[id] = c

	if u, ok := r.s.users[w.Email]; ok {
		u.WinCount++
		u.UpdatedAt = at
		r.s.users[w.Email] = u
	}
	return nil
}

func (r *contestRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contests[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.contests, id)
	for i, cid := range r.s.contestOrder {
		if cid == id {
			r.s.contestOrder = append(r.s.contestOrder[:i], r.s.contestOrder[i+1:]...)
			break
		}
	}
	return nil
}
