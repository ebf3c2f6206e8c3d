package usersvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrBadRole    ErrCode = "BAD_ROLE"
	ErrBadStatus  ErrCode = "BAD_STATUS"
	ErrBadInput   ErrCode = "BAD_INPUT"
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"
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

type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Profile(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
	UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func (s *service) Profile(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, makeErr(ErrBadInput)
	}
	u, err := s.ur.UpdateProfile(ctx, id, name, email)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, makeErr(ErrBadRole)
	}
	u, err := s.ur.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error) {
	if !model.ValidUserStatus(status) {
		return nil, makeErr(ErrBadStatus)
	}
	u, err := s.ur.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
