package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librarymgmt/model"
)

// Repo is the loan ledger plus the availability-counter side of books.
// Methods taking a *sql.Tx participate in the caller's transaction; the
// borrow and return workflows need their two writes to commit together.
type Repo interface {
	Transact(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Books
	GetBookAvailabilityForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (available int64, found bool, err error)
	DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	// Ledger
	InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	GetRecordForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error
	DeleteRecord(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context, status string, page, limit int64) ([]model.BorrowRow, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.BorrowRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Transact(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Books

func (r *repo) GetBookAvailabilityForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (int64, bool, error) {
	const q = `
		SELECT available
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var avail int64
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&avail)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return avail, true, nil
}

func (r *repo) DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	// Guard: never below zero.
	const q = `
		UPDATE books
		SET available = available - 1
		WHERE id = $1
		AND available > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	// Guard: never above quantity.
	const q = `
		UPDATE books
		SET available = available + 1
		WHERE id = $1
		AND available < quantity`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

// Ledger

func (r *repo) InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	const q = `
		INSERT INTO borrow_records (book_id, user_id, borrow_date, return_date, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		rec.BookID, rec.UserID, rec.BorrowDate, rec.ReturnDate, rec.Status,
	).Scan(&rec.ID)
}

func (r *repo) GetRecordForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error) {
	const q = `
		SELECT id, book_id, user_id, borrow_date, return_date, status
		FROM borrow_records
		WHERE id = $1
		FOR UPDATE`
	rec := &model.BorrowRecord{}
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&rec.ID, &rec.BookID, &rec.UserID, &rec.BorrowDate, &rec.ReturnDate, &rec.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
	const q = `
		UPDATE borrow_records
		SET status = 'returned',
			return_date = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM borrow_records WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) List(ctx context.Context, status string, page, limit int64) ([]model.BorrowRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	const q = `
		SELECT
			br.id          AS id,
			br.book_id     AS book_id,
			b.title        AS book_title,
			b.author       AS book_author,
			br.user_id     AS user_id,
			u.name         AS user_name,
			u.email        AS user_email,
			br.borrow_date AS borrow_date,
			br.return_date AS return_date,
			br.status      AS status
		FROM borrow_records br
		JOIN books b ON b.id = br.book_id
		JOIN users u ON u.id = br.user_id
		WHERE ($1 = '' OR br.status = $1)
		ORDER BY br.borrow_date DESC, br.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	const cq = `
		SELECT COUNT(*)
		FROM borrow_records
		WHERE ($1 = '' OR status = $1)`
	if err := r.db.QueryRowContext(ctx, cq, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.BorrowRow, error) {
	const q = `
		SELECT
			br.id          AS id,
			br.book_id     AS book_id,
			b.title        AS book_title,
			b.author       AS book_author,
			br.user_id     AS user_id,
			u.name         AS user_name,
			u.email        AS user_email,
			br.borrow_date AS borrow_date,
			br.return_date AS return_date,
			br.status      AS status
		FROM borrow_records br
		JOIN books b ON b.id = br.book_id
		JOIN users u ON u.id = br.user_id
		WHERE br.user_id = $1
		ORDER BY br.borrow_date DESC, br.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]model.BorrowRow, error) {
	var out []model.BorrowRow
	for rows.Next() {
		var h model.BorrowRow
		if err := rows.Scan(
			&h.ID, &h.BookID, &h.BookTitle, &h.BookAuthor,
			&h.UserID, &h.UserName, &h.UserEmail,
			&h.BorrowDate, &h.ReturnDate, &h.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
