package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
)

const contestID = "7d1f7c55-3a8e-4c6e-9e55-0b5cfb1e6f10"

func TestDeclareWinner_CreditsWinnerInSameTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Now()
	w := model.Winner{Email: "ana@example.com", Name: "Ana", Photo: "https://img/ana.png"}
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE contests SET winner_email .* WHERE id = \$1 AND winner_email IS NULL`).
		WithArgs(contestID, w.Email, w.Name, w.Photo, model.ContestCompleted, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET win_count = win_count \+ 1`).
		WithArgs(w.Email).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewPgContestRepository(db).DeclareWinner(context.Background(), contestID, w, at); err != nil {
		t.Fatalf("DeclareWinner: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeclareWinner_ExistingWinnerIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE contests SET winner_email`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(contestID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err = NewPgContestRepository(db).DeclareWinner(context.Background(), contestID, model.Winner{Email: "b@example.com"}, time.Now())
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeclareWinner_MissingContestIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE contests SET winner_email`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err = NewPgContestRepository(db).DeclareWinner(context.Background(), contestID, model.Winner{Email: "b@example.com"}, time.Now())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContestList_ApprovedByTypeNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM contests WHERE status = \$1 AND type = \$2 ORDER BY created_at DESC$`).
		WithArgs(model.ContestApproved, "image-design").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPgContestRepository(db).List(context.Background(), model.ContestFilter{
		Status:  model.ContestApproved,
		Type:    "image-design",
		OrderBy: model.OrderNewestFirst,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestContestUpdate_NoMatchIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	status := model.ContestApproved
	mock.ExpectExec(`UPDATE contests SET status = \$1, updated_at = CURRENT_TIMESTAMP WHERE id = \$2`).
		WithArgs(status, contestID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPgContestRepository(db).Update(context.Background(), contestID, model.ContestPatch{Status: &status})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
