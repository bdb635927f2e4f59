package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table idempotently. The unique index on
// payments.transaction_id is not part of it: the startup repair pass installs
// it once duplicates are gone.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		email      TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		photo_url  TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT 'user',
		win_count  INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS users_win_count_idx ON users (win_count DESC) WHERE win_count > 0`,

	`CREATE TABLE IF NOT EXISTS contests (
		id                 UUID PRIMARY KEY,
		name               TEXT NOT NULL,
		slug               TEXT NOT NULL DEFAULT '',
		image              TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		type               TEXT NOT NULL DEFAULT '',
		price              NUMERIC(12, 2) NOT NULL DEFAULT 0,
		prize_money        NUMERIC(12, 2) NOT NULL DEFAULT 0,
		task_instruction   TEXT NOT NULL DEFAULT '',
		deadline           TIMESTAMPTZ,
		creator_email      TEXT NOT NULL,
		creator_name       TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'pending',
		participants_count INTEGER NOT NULL DEFAULT 0 CHECK (participants_count >= 0),
		winner_email       TEXT,
		winner_name        TEXT,
		winner_photo       TEXT,
		win_date           TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS contests_status_created_idx ON contests (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS contests_creator_idx ON contests (creator_email)`,

	// contest_id carries no foreign key: a participation outlives a deleted contest.
	`CREATE TABLE IF NOT EXISTS participations (
		id             UUID PRIMARY KEY,
		contest_id     UUID NOT NULL,
		user_email     TEXT NOT NULL,
		transaction_id TEXT,
		registered_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (contest_id, user_email)
	)`,

	`CREATE TABLE IF NOT EXISTS submissions (
		id           UUID PRIMARY KEY,
		contest_id   UUID NOT NULL,
		user_email   TEXT NOT NULL,
		task_link    TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (contest_id, user_email)
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGSERIAL PRIMARY KEY,
		contest_id     UUID NOT NULL,
		contest_name   TEXT NOT NULL DEFAULT '',
		user_email     TEXT NOT NULL,
		amount         NUMERIC(12, 2) NOT NULL,
		currency       TEXT NOT NULL,
		tracking_id    TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		registered_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS payments_user_email_idx ON payments (user_email)`,
}

// EnsureSchema applies the table definitions.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
