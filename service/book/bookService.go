package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymgmt/model"
	openlibraryrepo "librarymgmt/repository/openlibrary"
)

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrISBNTaken      ErrCode = "ISBN_TAKEN"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrHasActiveLoans ErrCode = "HAS_ACTIVE_LOANS"
	ErrUpstream       ErrCode = "UPSTREAM"
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

type Service interface {
	Create(ctx context.Context, title, author, isbn, category string, quantity int64) (*model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title, author, isbn, category string) (*model.Book, error)
	// Delete is rejected while an open loan references the book.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search, category string, page, limit int64) (*model.BookPage, error)
	Search(ctx context.Context, query, category, author string, page, limit int64) (*model.BookPage, error)

	// Open Library metadata
	Lookup(ctx context.Context, workKey string) (*model.BookDetail, error)
	SearchRemote(ctx context.Context, query string, limit int) (*openlibraryrepo.SearchResult, error)
}

type service struct {
	r  Repo
	ol openlibraryrepo.Repo
}

func New(r Repo, ol openlibraryrepo.Repo) Service { return &service{r: r, ol: ol} }

func (s *service) Create(ctx context.Context, title, author, isbn, category string, quantity int64) (*model.Book, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" ||
		strings.TrimSpace(isbn) == "" || strings.TrimSpace(category) == "" || quantity < 0 {
		return nil, makeErr(ErrBadInput)
	}

	b := &model.Book{
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		ISBN:      strings.TrimSpace(isbn),
		Category:  strings.TrimSpace(category),
		Quantity:  quantity,
		Available: quantity, // all copies on the shelf at creation
	}
	if err := s.r.Create(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, title, author, isbn, category string) (*model.Book, error) {
	b, err := s.r.Update(ctx, id, title, author, isbn, category)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

// Delete removes the book together with its returned history rows. The
// book row is locked first so the active-loan check cannot race a
// concurrent borrow.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.r.Transact(ctx, func(tx *sql.Tx) error {
		found, err := s.r.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			return makeErr(ErrNotFound)
		}

		active, err := s.r.CountActiveBorrows(ctx, tx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return makeErr(ErrHasActiveLoans)
		}

		if err := s.r.DeleteReturnedRecords(ctx, tx, id); err != nil {
			return err
		}
		ok, err := s.r.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return makeErr(ErrNotFound)
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, search, category string, page, limit int64) (*model.BookPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	books, total, err := s.r.List(ctx, search, category, page, limit)
	if err != nil {
		return nil, err
	}
	return &model.BookPage{
		Books:       books,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

func (s *service) Search(ctx context.Context, query, category, author string, page, limit int64) (*model.BookPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	books, total, err := s.r.Search(ctx, query, category, author, page, limit)
	if err != nil {
		return nil, err
	}
	return &model.BookPage{
		Books:       books,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

func (s *service) Lookup(ctx context.Context, workKey string) (*model.BookDetail, error) {
	d, err := s.ol.GetWork(ctx, workKey)
	if err != nil {
		return nil, makeErr(ErrUpstream)
	}
	return d, nil
}

func (s *service) SearchRemote(ctx context.Context, query string, limit int) (*openlibraryrepo.SearchResult, error) {
	res, err := s.ol.Search(ctx, query, limit)
	if err != nil {
		return nil, makeErr(ErrUpstream)
	}
	return res, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
