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
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// categoryKeys maps the display labels clients filter by to stored types.
var categoryKeys = map[string]string{
	"Image Design":    "image-design",
	"Article Writing": "article-writing",
	"Business Ideas":  "business-idea",
	"Gaming Reviews":  "gaming-review",
}

// CategoryKey resolves a category filter. "" means no filter.
func CategoryKey(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, "all") {
		return ""
	}
	if key, ok := categoryKeys[label]; ok {
		return key
	}
	for _, key := range categoryKeys {
		if key == label {
			return key
		}
	}
	return slug.Make(label)
}

// validateID rejects ids that cannot name a stored record.
func validateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s is required: %w", field, common.ErrBadRequest)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, id, common.ErrBadRequest)
	}
	return nil
}

type ContestService struct {
	contestRepo       repository.ContestRepository
	participationRepo repository.ParticipationRepository
	now               func() time.Time
}

func NewContestService(contestRepo repository.ContestRepository, participationRepo repository.ParticipationRepository) *ContestService {
	return &ContestService{
		contestRepo:       contestRepo,
		participationRepo: participationRepo,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

type CreateContestRequest struct {
	Name            string          `json:"name"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	Type            string          `json:"type"`
	Price           decimal.Decimal `json:"price"`
	PrizeMoney      decimal.Decimal `json:"prizeMoney"`
	TaskInstruction string          `json:"taskInstruction"`
	Deadline        *time.Time      `json:"deadline"`
	CreatorName     string          `json:"creatorName"`
}

func (s *ContestService) ListAll(ctx context.Context) ([]model.Contest, error) {
	return s.list(ctx, model.ContestFilter{})
}

func (s *ContestService) ListByCreator(ctx context.Context, email string) ([]model.Contest, error) {
	return s.list(ctx, model.ContestFilter{CreatorEmail: email, OrderBy: model.OrderNewestFirst})
}

// ListApproved returns approved contests, newest first, optionally narrowed to
// a category label.
func (s *ContestService) ListApproved(ctx context.Context, category string) ([]model.Contest, error) {
	return s.list(ctx, model.ContestFilter{
		Status:  model.ContestApproved,
		Type:    CategoryKey(category),
		OrderBy: model.OrderNewestFirst,
	})
}

func (s *ContestService) ListPopular(ctx context.Context) ([]model.Contest, error) {
	return s.list(ctx, model.ContestFilter{
		Status:  model.ContestApproved,
		OrderBy: model.OrderMostParticipants,
		Limit:   model.PopularContestsLimit,
	})
}

func (s *ContestService) ListWonBy(ctx context.Context, email string) ([]model.Contest, error) {
	return s.list(ctx, model.ContestFilter{WinnerEmail: email, OrderBy: model.OrderNewestFirst})
}

func (s *ContestService) list(ctx context.Context, f model.ContestFilter) ([]model.Contest, error) {
	contests, err := s.contestRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

func (s *ContestService) Get(ctx context.Context, id string) (*model.Contest, error) {
	if err := validateID("contest id", id); err != nil {
		return nil, err
	}
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}
	return contest, nil
}

// Create stores a new pending contest owned by the actor. Lifecycle fields
// are never taken from the request.
func (s *ContestService) Create(ctx context.Context, actor model.Actor, req CreateContestRequest) (*model.Contest, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("contest name is required: %w", common.ErrValidation)
	}
	if req.Price.IsNegative() || req.PrizeMoney.IsNegative() {
		return nil, fmt.Errorf("price and prize money must not be negative: %w", common.ErrValidation)
	}

	now := s.now()
	contest := &model.Contest{
		ID:                uuid.NewString(),
		Name:              name,
		Slug:              slug.Make(name),
		Image:             req.Image,
		Description:       req.Description,
		Type:              CategoryKey(req.Type),
		Price:             req.Price,
		PrizeMoney:        req.PrizeMoney,
		TaskInstruction:   req.TaskInstruction,
		Deadline:          req.Deadline,
		CreatorEmail:      actor.Email,
		CreatorName:       req.CreatorName,
		Status:            model.ContestPending,
		ParticipantsCount: 0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	return contest, nil
}

// Update applies a partial edit. Only admins move status, and only between
// pending, approved and rejected; creators may edit their own contests.
func (s *ContestService) Update(ctx context.Context, actor model.Actor, id string, patch model.ContestPatch) error {
	if err := validateID("contest id", id); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update: %w", common.ErrBadRequest)
	}

	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("contest not found: %w", err)
	}

	if patch.Status != nil {
		if !actor.IsAdmin() {
			return fmt.Errorf("only admins change contest status: %w", common.ErrForbidden)
		}
		switch *patch.Status {
		case model.ContestPending, model.ContestApproved, model.ContestRejected:
		default:
			return fmt.Errorf("status %q cannot be set directly: %w", *patch.Status, common.ErrValidation)
		}
	}
	if !actor.IsAdmin() && contest.CreatorEmail != actor.Email {
		return fmt.Errorf("not the creator of this contest: %w", common.ErrForbidden)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return fmt.Errorf("contest name is required: %w", common.ErrValidation)
		}
		sl := slug.Make(name)
		patch.Name, patch.Slug = &name, &sl
	}
	if patch.Type != nil {
		t := CategoryKey(*patch.Type)
		patch.Type = &t
	}
	if (patch.Price != nil && patch.Price.IsNegative()) || (patch.PrizeMoney != nil && patch.PrizeMoney.IsNegative()) {
		return fmt.Errorf("price and prize money must not be negative: %w", common.ErrValidation)
	}

	if err := s.contestRepo.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	return nil
}

// DeclareWinner completes a contest. The actor must own the contest or be an
// admin, the winner must be registered, and an existing winner is never
// replaced.
func (s *ContestService) DeclareWinner(ctx context.Context, actor model.Actor, id string, winner model.Winner) error {
	if err := validateID("contest id", id); err != nil {
		return err
	}
	winner.Email = strings.TrimSpace(winner.Email)
	if winner.Email == "" {
		return fmt.Errorf("winnerEmail is required: %w", common.ErrBadRequest)
	}

	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("contest not found: %w", err)
	}
	if !actor.IsAdmin() && contest.CreatorEmail != actor.Email {
		return fmt.Errorf("not the creator of this contest: %w", common.ErrForbidden)
	}
	if contest.HasWinner() {
		return fmt.Errorf("winner already declared: %w", common.ErrConflict)
	}

	registered, err := s.participationRepo.Exists(ctx, id, winner.Email)
	if err != nil {
		return fmt.Errorf("failed to check participation: %w", err)
	}
	if !registered {
		return fmt.Errorf("%s is not registered for this contest: %w", winner.Email, common.ErrValidation)
	}

	if err := s.contestRepo.DeclareWinner(ctx, id, winner, s.now()); err != nil {
		return fmt.Errorf("failed to declare winner: %w", err)
	}
	return nil
}

func (s *ContestService) Delete(ctx context.Context, id string) error {
	if err := validateID("contest id", id); err != nil {
		return err
	}
	if err := s.contestRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	return nil
}
