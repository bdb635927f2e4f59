package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	FindByID(ctx context.Context, id string) (*model.Contest, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Contest, error)
	List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error)
	Update(ctx context.Context, id string, patch model.ContestPatch) error
	// DeclareWinner completes the contest and credits the winner in one
	// transaction. A contest that already has a winner yields ErrConflict.
	DeclareWinner(ctx context.Context, id string, winner model.Winner, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

const contestColumns = `id, name, slug, image, description, type, price, prize_money, task_instruction,
	deadline, creator_email, creator_name, status, participants_count,
	winner_email, winner_name, winner_photo, win_date, created_at, updated_at`

func scanContest(row interface{ Scan(...interface{}) error }, c *model.Contest) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Image, &c.Description, &c.Type, &c.Price, &c.PrizeMoney, &c.TaskInstruction,
		&c.Deadline, &c.CreatorEmail, &c.CreatorName, &c.Status, &c.ParticipantsCount,
		&c.WinnerEmail, &c.WinnerName, &c.WinnerPhoto, &c.WinDate, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *pgContestRepository) Create(ctx context.Context, c *model.Contest) error {
	query := `INSERT INTO contests (id, name, slug, image, description, type, price, prize_money, task_instruction,
	              deadline, creator_email, creator_name, status, participants_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Slug, c.Image, c.Description, c.Type, c.Price, c.PrizeMoney, c.TaskInstruction,
		c.Deadline, c.CreatorEmail, c.CreatorName, c.Status, c.ParticipantsCount, c.CreatedAt,
	)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("contest %s already exists: %w", c.ID, common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`
	contest := &model.Contest{}
	if err := scanContest(r.db.QueryRowContext(ctx, query, id), contest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindByID: %w", err)
	}
	return contest, nil
}

func (r *pgContestRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Contest, error) {
	if len(ids) == 0 {
		return []model.Contest{}, nil
	}
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id IN (` + placeholders(1, len(ids)) + `)`
	return r.query(ctx, "pgContestRepository.FindByIDs", query, stringArgs(ids)...)
}

func (r *pgContestRepository) List(ctx context.Context, f model.ContestFilter) ([]model.Contest, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + contestColumns + ` FROM contests`)

	var conditions []string
	var args []interface{}
	argID := 1

	if f.CreatorEmail != "" {
		conditions = append(conditions, fmt.Sprintf("creator_email = $%d", argID))
		args = append(args, f.CreatorEmail)
		argID++
	}
	if f.WinnerEmail != "" {
		conditions = append(conditions, fmt.Sprintf("winner_email = $%d", argID))
		args = append(args, f.WinnerEmail)
		argID++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, f.Status)
		argID++
	}
	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argID))
		args = append(args, f.Type)
		argID++
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	switch f.OrderBy {
	case model.OrderNewestFirst:
		query.WriteString(" ORDER BY created_at DESC")
	case model.OrderMostParticipants:
		query.WriteString(" ORDER BY participants_count DESC, created_at DESC")
	}
	if f.Limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argID))
		args = append(args, f.Limit)
	}

	return r.query(ctx, "pgContestRepository.List", query.String(), args...)
}

func (r *pgContestRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]model.Contest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		var c model.Contest
		if err := scanContest(rows, &c); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return contests, nil
}

func (r *pgContestRepository) Update(ctx context.Context, id string, p model.ContestPatch) error {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Slug != nil {
		add("slug", *p.Slug)
	}
	if p.Image != nil {
		add("image", *p.Image)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Type != nil {
		add("type", *p.Type)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.PrizeMoney != nil {
		add("prize_money", *p.PrizeMoney)
	}
	if p.TaskInstruction != nil {
		add("task_instruction", *p.TaskInstruction)
	}
	if p.Deadline != nil {
		add("deadline", *p.Deadline)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if len(sets) == 0 {
		return fmt.Errorf("empty contest update: %w", common.ErrBadRequest)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contests SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update: %w", err)
	}
	return expectOneRow(res, "pgContestRepository.Update")
}

func (r *pgContestRepository) DeclareWinner(ctx context.Context, id string, w model.Winner, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgContestRepository.DeclareWinner begin: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE contests SET winner_email = $2, winner_name = $3, winner_photo = $4,
	              status = $5, win_date = $6, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND winner_email IS NULL`
	res, err := tx.ExecContext(ctx, query, id, w.Email, w.Name, w.Photo, model.ContestCompleted, at)
	if err != nil {
		return fmt.Errorf("pgContestRepository.DeclareWinner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContestRepository.DeclareWinner rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM contests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("pgContestRepository.DeclareWinner lookup: %w", err)
		}
		if !exists {
			return common.ErrNotFound
		}
		return fmt.Errorf("winner already declared for contest %s: %w", id, common.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET win_count = win_count + 1, updated_at = CURRENT_TIMESTAMP WHERE email = $1`, w.Email); err != nil {
		return fmt.Errorf("pgContestRepository.DeclareWinner win count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgContestRepository.DeclareWinner commit: %w", err)
	}
	return nil
}

func (r *pgContestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgContestRepository.Delete")
}
