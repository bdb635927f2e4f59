package repository

import (
	"context"
	"database/sql"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type ParticipationRepository interface {
	// Create inserts p. An existing (contest, user) pair yields ErrConflict.
	Create(ctx context.Context, p *model.Participation) error
	Exists(ctx context.Context, contestID, userEmail string) (bool, error)
	ListByUser(ctx context.Context, userEmail string) ([]model.Participation, error)
}

type pgParticipationRepository struct {
	db *sql.DB
}

func NewPgParticipationRepository(db *sql.DB) ParticipationRepository {
	return &pgParticipationRepository{db: db}
}

func (r *pgParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	query := `INSERT INTO participations (id, contest_id, user_email, transaction_id, registered_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.ContestID, p.UserEmail, p.TransactionID, p.RegisteredAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("already registered: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgParticipationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgParticipationRepository) Exists(ctx context.Context, contestID, userEmail string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM participations WHERE contest_id = $1 AND user_email = $2)`
	if err := r.db.QueryRowContext(ctx, query, contestID, userEmail).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgParticipationRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgParticipationRepository) ListByUser(ctx context.Context, userEmail string) ([]model.Participation, error) {
	query := `SELECT id, contest_id, user_email, transaction_id, registered_at
	          FROM participations WHERE user_email = $1 ORDER BY registered_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("pgParticipationRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	out := []model.Participation{}
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.ContestID, &p.UserEmail, &p.TransactionID, &p.RegisteredAt); err != nil {
			return nil, fmt.Errorf("pgParticipationRepository.ListByUser scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipationRepository.ListByUser rows: %w", err)
	}
	return out, nil
}
