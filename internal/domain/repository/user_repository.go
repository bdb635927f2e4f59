package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type UserRepository interface {
	// Create inserts user unless the email is taken. created is false for an
	// existing user.
	Create(ctx context.Context, user *model.User) (created bool, err error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, email string, upd model.ProfileUpdate) error
	UpdateRole(ctx context.Context, email, role string) error
	// TopByWins returns users with at least one win, most wins first.
	TopByWins(ctx context.Context, limit int) ([]model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `email, name, photo_url, role, win_count, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }, u *model.User) error {
	return row.Scan(&u.Email, &u.Name, &u.PhotoURL, &u.Role, &u.WinCount, &u.CreatedAt, &u.UpdatedAt)
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) (bool, error) {
	query := `INSERT INTO users (email, name, photo_url, role, win_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, 0, $5, $5)
	          ON CONFLICT (email) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, user.Email, user.Name, user.PhotoURL, user.Role, user.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.Create rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.query(ctx, "pgUserRepository.List", `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

func (r *pgUserRepository) TopByWins(ctx context.Context, limit int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE win_count > 0
	          ORDER BY win_count DESC, email LIMIT $1`
	return r.query(ctx, "pgUserRepository.TopByWins", query, limit)
}

func (r *pgUserRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, email string, upd model.ProfileUpdate) error {
	query := `UPDATE users SET name = COALESCE($2, name), photo_url = COALESCE($3, photo_url),
	          updated_at = CURRENT_TIMESTAMP WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email, upd.Name, upd.PhotoURL)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	return expectOneRow(res, "pgUserRepository.UpdateProfile")
}

func (r *pgUserRepository) UpdateRole(ctx context.Context, email, role string) error {
	query := `UPDATE users SET role = $2, updated_at = CURRENT_TIMESTAMP WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email, role)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateRole: %w", err)
	}
	return expectOneRow(res, "pgUserRepository.UpdateRole")
}

// expectOneRow maps an UPDATE/DELETE that matched nothing to ErrNotFound.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
