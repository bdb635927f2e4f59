package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo    repository.SubmissionRepository
	participationRepo repository.ParticipationRepository
	contestRepo       repository.ContestRepository
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	participationRepo repository.ParticipationRepository,
	contestRepo repository.ContestRepository,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:    subRepo,
		participationRepo: participationRepo,
		contestRepo:       contestRepo,
	}
}

type CreateSubmissionRequest struct {
	ContestID   string     `json:"contestId"`
	UserEmail   string     `json:"userEmail"`
	TaskLink    string     `json:"taskLink"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

// Create stores the user's single deliverable for a contest. A second
// submission for the same pair yields ErrConflict.
func (s *SubmissionService) Create(ctx context.Context, actor model.Actor, req CreateSubmissionRequest) (*model.Submission, error) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if req.UserEmail == "" {
		return nil, fmt.Errorf("userEmail is required: %w", common.ErrBadRequest)
	}
	if err := validateID("contestId", req.ContestID); err != nil {
		return nil, err
	}
	if !actor.CanActFor(req.UserEmail) {
		return nil, fmt.Errorf("cannot submit for another user: %w", common.ErrForbidden)
	}
	taskLink := strings.TrimSpace(req.TaskLink)
	if taskLink == "" {
		return nil, fmt.Errorf("taskLink is required: %w", common.ErrValidation)
	}
	if u, err := url.Parse(taskLink); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("taskLink must be an absolute URL: %w", common.ErrValidation)
	}

	registered, err := s.participationRepo.Exists(ctx, req.ContestID, req.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !registered {
		return nil, fmt.Errorf("You must be registered/paid to submit a task.: %w", common.ErrForbidden)
	}

	exists, err := s.submissionRepo.Exists(ctx, req.ContestID, req.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("already submitted: %w", common.ErrConflict)
	}

	sub := &model.Submission{
		ID:          uuid.NewString(),
		ContestID:   req.ContestID,
		UserEmail:   req.UserEmail,
		TaskLink:    taskLink,
		Status:      model.SubmissionPending,
		SubmittedAt: time.Now().UTC(),
	}
	if req.SubmittedAt != nil {
		sub.SubmittedAt = req.SubmittedAt.UTC()
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return sub, nil
}

func (s *SubmissionService) ListByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	if err := validateID("contestId", contestID); err != nil {
		return nil, err
	}
	subs, err := s.submissionRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// ListByCreator gathers submissions across every contest the creator owns.
func (s *SubmissionService) ListByCreator(ctx context.Context, actor model.Actor, creatorEmail string) ([]model.Submission, error) {
	if !actor.CanActFor(creatorEmail) {
		return nil, fmt.Errorf("cannot read another creator's submissions: %w", common.ErrForbidden)
	}

	contests, err := s.contestRepo.List(ctx, model.ContestFilter{CreatorEmail: creatorEmail})
	if err != nil {
		return nil, fmt.Errorf("failed to list creator contests: %w", err)
	}
	ids := make([]string, len(contests))
	for i, c := range contests {
		ids[i] = c.ID
	}

	subs, err := s.submissionRepo.ListByContests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}
