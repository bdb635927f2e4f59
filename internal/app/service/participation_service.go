package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"

	"github.com/google/uuid"
)

type ParticipationService struct {
	participationRepo repository.ParticipationRepository
	contestRepo       repository.ContestRepository
}

func NewParticipationService(participationRepo repository.ParticipationRepository, contestRepo repository.ContestRepository) *ParticipationService {
	return &ParticipationService{participationRepo: participationRepo, contestRepo: contestRepo}
}

type RegisterRequest struct {
	ContestID    string     `json:"contestId"`
	UserEmail    string     `json:"userEmail"`
	RegisteredAt *time.Time `json:"registeredAt"`
}

// CheckAlreadyRegistered reports whether the pair holds a participation.
// Incomplete or malformed keys simply report false.
func (s *ParticipationService) CheckAlreadyRegistered(ctx context.Context, contestID, userEmail string) (bool, error) {
	if userEmail == "" || validateID("contestId", contestID) != nil {
		return false, nil
	}
	ok, err := s.participationRepo.Exists(ctx, contestID, userEmail)
	if err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return ok, nil
}

// Register records a free registration and returns its id. Paid contests are
// joined through payment reconciliation instead.
func (s *ParticipationService) Register(ctx context.Context, actor model.Actor, req RegisterRequest) (string, error) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if req.ContestID == "" || req.UserEmail == "" {
		return "", fmt.Errorf("contestId & userEmail are required: %w", common.ErrBadRequest)
	}
	if err := validateID("contestId", req.ContestID); err != nil {
		return "", err
	}
	if !actor.CanActFor(req.UserEmail) {
		return "", fmt.Errorf("cannot register another user: %w", common.ErrForbidden)
	}

	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		return "", fmt.Errorf("contest not found: %w", err)
	}
	if contest.Status != model.ContestApproved {
		return "", fmt.Errorf("contest is not open for registration: %w", common.ErrValidation)
	}
	if contest.Price.IsPositive() && !actor.IsAdmin() {
		return "", fmt.Errorf("contest requires payment: %w", common.ErrForbidden)
	}

	exists, err := s.participationRepo.Exists(ctx, req.ContestID, req.UserEmail)
	if err != nil {
		return "", fmt.Errorf("failed to check participation: %w", err)
	}
	if exists {
		return "", fmt.Errorf("already registered: %w", common.ErrConflict)
	}

	p := &model.Participation{
		ID:           uuid.NewString(),
		ContestID:    req.ContestID,
		UserEmail:    req.UserEmail,
		RegisteredAt: time.Now().UTC(),
	}
	if req.RegisteredAt != nil {
		p.RegisteredAt = req.RegisteredAt.UTC()
	}
	// The unique (contest, user) index settles concurrent attempts.
	if err := s.participationRepo.Create(ctx, p); err != nil {
		return "", fmt.Errorf("failed to register: %w", err)
	}
	return p.ID, nil
}

// ListByUser decorates each of the user's participations with its contest.
// Contests deleted since registration leave only contestId and registeredAt.
func (s *ParticipationService) ListByUser(ctx context.Context, email string) ([]model.ParticipatedContest, error) {
	parts, err := s.participationRepo.ListByUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ContestID)
	}
	contests, err := s.contestRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load participated contests: %w", err)
	}
	byID := make(map[string]*model.Contest, len(contests))
	for i := range contests {
		byID[contests[i].ID] = &contests[i]
	}

	out := make([]model.ParticipatedContest, 0, len(parts))
	for _, p := range parts {
		out = append(out, model.ParticipatedContest{
			Contest:      byID[p.ContestID],
			ContestID:    p.ContestID,
			RegisteredAt: p.RegisteredAt,
		})
	}
	return out, nil
}
