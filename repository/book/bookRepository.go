package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"librarymgmt/model"
)

// Repo's delete path is transactional: the ledger's foreign key means a
// book and its returned history rows have to go together, and the
// active-loan check has to hold under the same lock.
type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title, author, isbn, category string) (*model.Book, error)
	List(ctx context.Context, search, category string, page, limit int64) ([]model.Book, int64, error)
	Search(ctx context.Context, query, category, author string, page, limit int64) ([]model.Book, int64, error)

	Transact(ctx context.Context, fn func(tx *sql.Tx) error) error
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	CountActiveBorrows(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
	DeleteReturnedRecords(ctx context.Context, tx *sql.Tx, bookID int64) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, title, author, isbn, category, quantity, available, created_at`

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, isbn, category, quantity, available)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		b.Title, b.Author, b.ISBN, b.Category, b.Quantity, b.Available,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+bookCols+`
		FROM books
		WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.Available, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update touches bibliographic fields only. quantity and available are
// owned by restock and the borrow workflow respectively.
func (r *repo) Update(ctx context.Context, id int64, title, author, isbn, category string) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, category = $5
		WHERE id = $1
		RETURNING `+bookCols,
		id, title, author, isbn, category,
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.Available, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

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

// LockByID takes the book's row lock so a concurrent borrow and a delete
// of the same book serialize.
func (r *repo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var got int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) CountActiveBorrows(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM borrow_records
		WHERE book_id = $1
		AND status = 'borrowed'`,
		bookID,
	).Scan(&n)
	return n, err
}

// DeleteReturnedRecords clears the book's closed history so the ledger's
// foreign key does not block the book delete.
func (r *repo) DeleteReturnedRecords(ctx context.Context, tx *sql.Tx, bookID int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM borrow_records
		WHERE book_id = $1
		AND status = 'returned'`,
		bookID,
	)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) List(ctx context.Context, search, category string, page, limit int64) ([]model.Book, int64, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		WHERE ($1 = '' OR title ILIKE '%'||$1||'%' OR author ILIKE '%'||$1||'%')
		AND ($2 = '' OR category = $2)
		ORDER BY id
		LIMIT $3 OFFSET $4`
	const cq = `
		SELECT COUNT(*)
		FROM books
		WHERE ($1 = '' OR title ILIKE '%'||$1||'%' OR author ILIKE '%'||$1||'%')
		AND ($2 = '' OR category = $2)`
	return r.pageQuery(ctx, q, cq, search, category, page, limit)
}

// Search additionally matches ISBN and supports an author filter.
func (r *repo) Search(ctx context.Context, query, category, author string, page, limit int64) ([]model.Book, int64, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		WHERE (title ILIKE '%'||$1||'%' OR author ILIKE '%'||$1||'%' OR isbn ILIKE '%'||$1||'%')
		AND ($2 = '' OR category = $2)
		AND ($3 = '' OR author ILIKE '%'||$3||'%')
		ORDER BY id
		LIMIT $4 OFFSET $5`
	const cq = `
		SELECT COUNT(*)
		FROM books
		WHERE (title ILIKE '%'||$1||'%' OR author ILIKE '%'||$1||'%' OR isbn ILIKE '%'||$1||'%')
		AND ($2 = '' OR category = $2)
		AND ($3 = '' OR author ILIKE '%'||$3||'%')`
	return r.pageQuery(ctx, q, cq, query, category, page, limit, author)
}

func (r *repo) pageQuery(ctx context.Context, q, countQ, p1, p2 string, page, limit int64, extra ...string) ([]model.Book, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	args := []any{p1, p2}
	countArgs := []any{p1, p2}
	for _, e := range extra {
		args = append(args, e)
		countArgs = append(countArgs, e)
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.Available, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
