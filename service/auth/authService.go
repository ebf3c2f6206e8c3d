package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
	"librarymgmt/util/hash"
	jwtutil "librarymgmt/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"
	ErrBadInput        ErrCode = "BAD_INPUT"
	ErrInvalidCreds    ErrCode = "BAD_CREDENTIALS"
	ErrAccountDisabled ErrCode = "ACCOUNT_DISABLED"
	ErrTokenInvalid    ErrCode = "TOKEN_INVALID"
	ErrTokenExpired    ErrCode = "TOKEN_EXPIRED"
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
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Verify(ctx context.Context, authHeader string) (*model.User, error)
}

type service struct {
	ur       userrepo.Repo
	secret   string
	ttlHours int
}

func New(ur userrepo.Repo, secret string, ttlHours int) Service {
	return &service{ur: ur, secret: secret, ttlHours: ttlHours}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || len(req.Password) < 6 {
		return nil, "", makeErr(ErrBadInput)
	}

	if existing, err := s.ur.ByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		Status:       model.UserActive,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		// Races with a concurrent register land on the unique index.
		if isUniqueViolation(err) {
			return nil, "", makeErr(ErrEmailTaken)
		}
		return nil, "", err
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	if u.Status != model.UserActive {
		return nil, "", makeErr(ErrAccountDisabled)
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Verify(ctx context.Context, authHeader string) (*model.User, error) {
	claims, err := jwtutil.ParseAuth(authHeader, s.secret)
	if err != nil {
		if errors.Is(err, jwtutil.ErrExpired) {
			return nil, makeErr(ErrTokenExpired)
		}
		return nil, makeErr(ErrTokenInvalid)
	}

	u, err := s.ur.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrTokenInvalid)
	}
	return u, nil
}

func (s *service) issue(u *model.User) (string, error) {
	return jwtutil.Issue(s.secret, jwtutil.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}, s.ttlHours)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
