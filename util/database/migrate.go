package database

import (
	"context"
	"database/sql"
	"log/slog"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user',
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS books (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		author     TEXT NOT NULL,
		isbn       TEXT NOT NULL,
		category   TEXT NOT NULL,
		quantity   BIGINT NOT NULL CHECK (quantity >= 0),
		available  BIGINT NOT NULL CHECK (available >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT books_available_within_quantity CHECK (available <= quantity)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_key ON books (isbn)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		id          BIGSERIAL PRIMARY KEY,
		book_id     BIGINT NOT NULL REFERENCES books(id),
		user_id     BIGINT NOT NULL REFERENCES users(id),
		borrow_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		return_date TIMESTAMPTZ NOT NULL,
		status      TEXT NOT NULL DEFAULT 'borrowed'
	)`,
	`CREATE INDEX IF NOT EXISTS borrow_records_book_status_idx ON borrow_records (book_id, status)`,
	`CREATE INDEX IF NOT EXISTS borrow_records_user_idx ON borrow_records (user_id)`,
}

// Migrate applies the schema. Statements are idempotent so startup can
// run it unconditionally.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Error("migration failed", "step", i, "err", err)
			return err
		}
	}
	log.Info("schema up to date", "steps", len(migrations))
	return nil
}
