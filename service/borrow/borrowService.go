package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymgmt/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrNoCopies        ErrCode = "NO_COPIES"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrConflict        ErrCode = "CONFLICT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// maxAttempts bounds automatic retries of transactions that aborted on a
// write conflict. No partial state is ever visible, so retrying is safe.
const maxAttempts = 3

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sql.Tx) error) error

	GetBookAvailabilityForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (available int64, found bool, err error)
	DecrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	IncrementAvailable(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	GetRecordForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error
	DeleteRecord(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context, status string, page, limit int64) ([]model.BorrowRow, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.BorrowRow, error)
}

type Service interface {
	// Borrow issues a loan: one new ledger record plus one availability
	// decrement, committed together or not at all.
	Borrow(ctx context.Context, bookID, userID int64, due time.Time) (*model.BorrowRecord, error)

	// Return closes a loan and gives the copy back to the pool.
	Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// Delete removes a ledger record unconditionally (administrative).
	Delete(ctx context.Context, recordID int64) error

	List(ctx context.Context, status string, page, limit int64) (*model.BorrowPage, error)
	ListByUser(ctx context.Context, userID int64) ([]model.BorrowRow, error)
}

// ----- Service implementation -----

type service struct {
	r   Repo
	log *slog.Logger
}

func New(r Repo, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, log: log}
}

func (s *service) Borrow(ctx context.Context, bookID, userID int64, due time.Time) (*model.BorrowRecord, error) {
	var rec *model.BorrowRecord
	err := s.withRetry(ctx, func() error {
		return s.r.Transact(ctx, func(tx *sql.Tx) error {
			avail, found, err := s.r.GetBookAvailabilityForUpdate(ctx, tx, bookID)
			if err != nil {
				return err
			}
			if !found {
				return makeErr(ErrBookNotFound)
			}
			if avail <= 0 {
				return makeErr(ErrNoCopies)
			}

			rec = &model.BorrowRecord{
				BookID:     bookID,
				UserID:     userID,
				BorrowDate: time.Now().UTC(),
				ReturnDate: due,
				Status:     model.BorrowStatusBorrowed,
			}
			if err := s.r.InsertRecord(ctx, tx, rec); err != nil {
				// The book row is locked and known to exist, so a foreign
				// key trip here can only be the user reference.
				if isFKViolation(err) {
					return makeErr(ErrUserNotFound)
				}
				return err
			}

			ok, err := s.r.DecrementAvailable(ctx, tx, bookID)
			if err != nil {
				return err
			}
			if !ok {
				// Row was locked above, so the guard only trips if the
				// counter was already zero.
				return makeErr(ErrNoCopies)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	var rec *model.BorrowRecord
	err := s.withRetry(ctx, func() error {
		return s.r.Transact(ctx, func(tx *sql.Tx) error {
			cur, err := s.r.GetRecordForUpdate(ctx, tx, recordID)
			if err != nil {
				return err
			}
			if cur == nil {
				return makeErr(ErrNotFound)
			}
			if cur.Status == model.BorrowStatusReturned {
				return makeErr(ErrAlreadyReturned)
			}

			now := time.Now().UTC()
			if err := s.r.MarkReturned(ctx, tx, recordID, now); err != nil {
				return err
			}

			ok, err := s.r.IncrementAvailable(ctx, tx, cur.BookID)
			if err != nil {
				return err
			}
			if !ok {
				// Counter already at quantity: a copy came back that the
				// counter never accounted for. Clamp and flag.
				s.log.Warn("data integrity: available already at quantity, increment skipped",
					"book_id", cur.BookID, "record_id", recordID)
			}

			cur.Status = model.BorrowStatusReturned
			cur.ReturnDate = now
			rec = cur
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Delete(ctx context.Context, recordID int64) error {
	ok, err := s.r.DeleteRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) List(ctx context.Context, status string, page, limit int64) (*model.BorrowPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, total, err := s.r.List(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &model.BorrowPage{
		BorrowRecords: rows,
		TotalPages:    (total + limit - 1) / limit,
		CurrentPage:   page,
	}, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]model.BorrowRow, error) {
	return s.r.ListByUser(ctx, userID)
}

// withRetry re-runs fn on transaction write conflicts, a bounded number
// of times, then surfaces CONFLICT to the caller.
func (s *service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		s.log.Warn("transaction conflict, retrying", "attempt", attempt, "err", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return makeErr(ErrConflict)
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure ||
		pgErr.Code == pgerrcode.DeadlockDetected
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
