package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type PaymentRepository interface {
	// RecordPaidRegistration stores rec, the matching participation and the
	// contest counter increment atomically. A transaction id that is already
	// recorded leaves every table untouched and reports PaymentCreated=false.
	RecordPaidRegistration(ctx context.Context, rec *model.PaymentRecord, p *model.Participation) (model.PaidRegistrationOutcome, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.PaymentRecord, error)
	// List returns every payment when userEmail is empty.
	List(ctx context.Context, userEmail string) ([]model.PaymentRecord, error)

	DuplicateTransactionGroups(ctx context.Context) ([]model.DuplicateTransactionGroup, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	EnsureTransactionIDUnique(ctx context.Context) error
}

type pgPaymentRepository struct {
	db *sql.DB
}

func NewPgPaymentRepository(db *sql.DB) PaymentRepository {
	return &pgPaymentRepository{db: db}
}

const paymentColumns = `id, contest_id, contest_name, user_email, amount, currency, tracking_id, transaction_id, registered_at`

func scanPayment(row interface{ Scan(...interface{}) error }, p *model.PaymentRecord) error {
	return row.Scan(&p.ID, &p.ContestID, &p.ContestName, &p.UserEmail, &p.Amount, &p.Currency,
		&p.TrackingID, &p.TransactionID, &p.RegisteredAt)
}

func (r *pgPaymentRepository) RecordPaidRegistration(ctx context.Context, rec *model.PaymentRecord, p *model.Participation) (model.PaidRegistrationOutcome, error) {
	var out model.PaidRegistrationOutcome

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("pgPaymentRepository.RecordPaidRegistration begin: %w", err)
	}
	defer tx.Rollback()

	insertPayment := `INSERT INTO payments (contest_id, contest_name, user_email, amount, currency, tracking_id, transaction_id, registered_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	                  ON CONFLICT (transaction_id) DO NOTHING
	                  RETURNING id`
	err = tx.QueryRowContext(ctx, insertPayment,
		rec.ContestID, rec.ContestName, rec.UserEmail, rec.Amount, rec.Currency,
		rec.TrackingID, rec.TransactionID, rec.RegisteredAt,
	).Scan(&rec.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return out, mapPaymentErr("insert payment", err)
	}
	out.PaymentCreated = true

	insertParticipation := `INSERT INTO participations (id, contest_id, user_email, transaction_id, registered_at)
	                        VALUES ($1, $2, $3, $4, $5)
	                        ON CONFLICT (contest_id, user_email) DO NOTHING`
	res, err := tx.ExecContext(ctx, insertParticipation, p.ID, p.ContestID, p.UserEmail, p.TransactionID, p.RegisteredAt)
	if err != nil {
		return out, mapPaymentErr("insert participation", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return out, mapPaymentErr("participation rows affected", err)
	} else if n == 1 {
		out.ParticipationCreated = true
	}

	if out.ParticipationCreated {
		res, err = tx.ExecContext(ctx,
			`UPDATE contests SET participants_count = participants_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
			rec.ContestID)
		if err != nil {
			return out, mapPaymentErr("increment participants", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return out, mapPaymentErr("increment rows affected", err)
		} else if n == 1 {
			out.CounterIncremented = true
		}
	}

	if err := tx.Commit(); err != nil {
		return model.PaidRegistrationOutcome{}, mapPaymentErr("commit", err)
	}
	return out, nil
}

func mapPaymentErr(step string, err error) error {
	if common.IsUniqueViolation(err) {
		return fmt.Errorf("payment already processed: %w", common.ErrConflict)
	}
	return fmt.Errorf("pgPaymentRepository.RecordPaidRegistration %s: %w", step, err)
}

func (r *pgPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1 ORDER BY id LIMIT 1`
	rec := &model.PaymentRecord{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, transactionID), rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPaymentRepository.FindByTransactionID: %w", err)
	}
	return rec, nil
}

func (r *pgPaymentRepository) List(ctx context.Context, userEmail string) ([]model.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	var args []interface{}
	if userEmail != "" {
		query += ` WHERE user_email = $1`
		args = append(args, userEmail)
	}
	query += ` ORDER BY registered_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgPaymentRepository.List: %w", err)
	}
	defer rows.Close()

	records := []model.PaymentRecord{}
	for rows.Next() {
		var p model.PaymentRecord
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("pgPaymentRepository.List scan: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPaymentRepository.List rows: %w", err)
	}
	return records, nil
}

func (r *pgPaymentRepository) DuplicateTransactionGroups(ctx context.Context) ([]model.DuplicateTransactionGroup, error) {
	query := `SELECT transaction_id, id FROM payments
	          WHERE transaction_id IN (
	              SELECT transaction_id FROM payments GROUP BY transaction_id HAVING COUNT(*) > 1
	          )
	          ORDER BY transaction_id, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPaymentRepository.DuplicateTransactionGroups: %w", err)
	}
	defer rows.Close()

	var groups []model.DuplicateTransactionGroup
	for rows.Next() {
		var txID string
		var id int64
		if err := rows.Scan(&txID, &id); err != nil {
			return nil, fmt.Errorf("pgPaymentRepository.DuplicateTransactionGroups scan: %w", err)
		}
		if n := len(groups); n > 0 && groups[n-1].TransactionID == txID {
			groups[n-1].IDs = append(groups[n-1].IDs, id)
			continue
		}
		groups = append(groups, model.DuplicateTransactionGroup{TransactionID: txID, IDs: []int64{id}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPaymentRepository.DuplicateTransactionGroups rows: %w", err)
	}
	return groups, nil
}

func (r *pgPaymentRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id IN (`+placeholders(1, len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("pgPaymentRepository.DeleteByIDs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgPaymentRepository.DeleteByIDs rows affected: %w", err)
	}
	return n, nil
}

func (r *pgPaymentRepository) EnsureTransactionIDUnique(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS payments_transaction_id_key ON payments (transaction_id)`)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("duplicate transaction ids remain: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgPaymentRepository.EnsureTransactionIDUnique: %w", err)
	}
	return nil
}
