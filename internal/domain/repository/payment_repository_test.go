package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func newPaymentFixture() (*model.PaymentRecord, *model.Participation) {
	txID := "pi_123"
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &model.PaymentRecord{
		ContestID:     "7d1f7c55-3a8e-4c6e-9e55-0b5cfb1e6f10",
		ContestName:   "Logo Sprint",
		UserEmail:     "ana@example.com",
		Amount:        decimal.NewFromInt(10),
		Currency:      model.CurrencyUSD,
		TrackingID:    "TRK-ABCDEF12",
		TransactionID: txID,
		RegisteredAt:  now,
	}
	p := &model.Participation{
		ID:            "0b6a4a52-8d0c-4f69-9d8b-8f4a1f6f9a01",
		ContestID:     rec.ContestID,
		UserEmail:     rec.UserEmail,
		TransactionID: &txID,
		RegisteredAt:  now,
	}
	return rec, p
}

func TestRecordPaidRegistration_FirstTimeCommitsAllThreeWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec, p := newPaymentFixture()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments .* ON CONFLICT \(transaction_id\) DO NOTHING`).
		WithArgs(rec.ContestID, rec.ContestName, rec.UserEmail, sqlmock.AnyArg(), rec.Currency, rec.TrackingID, rec.TransactionID, rec.RegisteredAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))
	mock.ExpectExec(`INSERT INTO participations .* ON CONFLICT \(contest_id, user_email\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE contests SET participants_count = participants_count \+ 1`).
		WithArgs(rec.ContestID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := NewPgPaymentRepository(db).RecordPaidRegistration(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("RecordPaidRegistration: %v", err)
	}
	if !out.PaymentCreated || !out.ParticipationCreated || !out.CounterIncremented {
		t.Fatalf("outcome = %+v, want all writes", out)
	}
	if rec.ID != 41 {
		t.Fatalf("rec.ID = %d, want 41", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordPaidRegistration_ReplayTouchesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec, p := newPaymentFixture()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	out, err := NewPgPaymentRepository(db).RecordPaidRegistration(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("RecordPaidRegistration: %v", err)
	}
	if out != (model.PaidRegistrationOutcome{}) {
		t.Fatalf("outcome = %+v, want nothing created", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordPaidRegistration_ExistingParticipationSkipsCounter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec, p := newPaymentFixture()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(`INSERT INTO participations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	out, err := NewPgPaymentRepository(db).RecordPaidRegistration(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("RecordPaidRegistration: %v", err)
	}
	if !out.PaymentCreated || out.ParticipationCreated || out.CounterIncremented {
		t.Fatalf("outcome = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordPaidRegistration_UniqueViolationIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec, p := newPaymentFixture()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).WillReturnError(&pgconn.PgError{Code: common.PgUniqueViolation})
	mock.ExpectRollback()

	_, err = NewPgPaymentRepository(db).RecordPaidRegistration(context.Background(), rec, p)
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordPaidRegistration_CounterFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec, p := newPaymentFixture()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(`INSERT INTO participations`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE contests`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewPgPaymentRepository(db).RecordPaidRegistration(context.Background(), rec, p)
	if err == nil || errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want internal failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDuplicateTransactionGroups_GroupsInIDOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT transaction_id, id FROM payments`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "id"}).
			AddRow("pi_a", int64(1)).
			AddRow("pi_a", int64(4)).
			AddRow("pi_b", int64(2)).
			AddRow("pi_b", int64(3)).
			AddRow("pi_b", int64(7)))

	groups, err := NewPgPaymentRepository(db).DuplicateTransactionGroups(context.Background())
	if err != nil {
		t.Fatalf("DuplicateTransactionGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].TransactionID != "pi_a" || len(groups[0].IDs) != 2 {
		t.Fatalf("group 0 = %+v", groups[0])
	}
	if groups[1].TransactionID != "pi_b" || len(groups[1].IDs) != 3 || groups[1].IDs[0] != 2 {
		t.Fatalf("group 1 = %+v", groups[1])
	}
}

func TestDeleteByIDs_BuildsPlaceholderList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM payments WHERE id IN \(\$1, \$2\)`).
		WithArgs(int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewPgPaymentRepository(db).DeleteByIDs(context.Background(), []int64{4, 7})
	if err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
