package repository

import (
	"context"
	"database/sql"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type SubmissionRepository interface {
	// Create inserts sub. An existing (contest, user) pair yields ErrConflict.
	Create(ctx context.Context, sub *model.Submission) error
	Exists(ctx context.Context, contestID, userEmail string) (bool, error)
	ListByContest(ctx context.Context, contestID string) ([]model.Submission, error)
	ListByContests(ctx context.Context, contestIDs []string) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, contest_id, user_email, task_link, status, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.ContestID, s.UserEmail, s.TaskLink, s.Status, s.SubmittedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("already submitted: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Exists(ctx context.Context, contestID, userEmail string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM submissions WHERE contest_id = $1 AND user_email = $2)`
	if err := r.db.QueryRowContext(ctx, query, contestID, userEmail).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) ListByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	return r.ListByContests(ctx, []string{contestID})
}

func (r *pgSubmissionRepository) ListByContests(ctx context.Context, contestIDs []string) ([]model.Submission, error) {
	if len(contestIDs) == 0 {
		return []model.Submission{}, nil
	}
	query := `SELECT id, contest_id, user_email, task_link, status, submitted_at
	          FROM submissions WHERE contest_id IN (` + placeholders(1, len(contestIDs)) + `)
	          ORDER BY submitted_at`
	rows, err := r.db.QueryContext(ctx, query, stringArgs(contestIDs)...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByContests: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.ContestID, &s.UserEmail, &s.TaskLink, &s.Status, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByContests scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByContests rows: %w", err)
	}
	return subs, nil
}
