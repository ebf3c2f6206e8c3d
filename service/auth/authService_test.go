package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
	"librarymgmt/util/hash"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (m *mockRepo) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockRepo) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	return nil, nil
}
func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error) {
	return nil, nil
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Halim Iskandar",
		Email:    "USER@Example.COM",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.Equal(t, model.UserActive, u.Status)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret", 24)

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "x",
		Email:    " ",
		Password: "123",
	})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Halim",
		Email:    "taken@example.com",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_DuplicateRace(t *testing.T) {
	// Two concurrent registers: the check passes but the insert lands on
	// the unique index.
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Halim",
		Email:    "taken@example.com",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "ok",
		Email:    "ok@example.com",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           7,
				Email:        "user@example.com",
				PasswordHash: hashed,
				Role:         model.RoleLibrarian,
				Status:       model.UserActive,
			}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.Login(ctx, model.LoginReq{
		Email:    "User@Example.com",
		Password: pw,
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret", 24)

	_, _, err := svc.Login(ctx, model.LoginReq{
		Email:    "missing@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "correct-password")

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           101,
				Email:        "user@example.com",
				PasswordHash: hashed,
				Status:       model.UserActive,
			}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(ctx, model.LoginReq{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           5,
				Email:        "user@example.com",
				PasswordHash: hashed,
				Status:       model.UserInactive,
			}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(ctx, model.LoginReq{
		Email:    "user@example.com",
		Password: pw,
	})
	require.Error(t, err)
	require.Equal(t, ErrAccountDisabled, Code(err))
}

func TestVerify_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)
	stored := &model.User{
		ID:           7,
		Name:         "Halim",
		Email:        "user@example.com",
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		Status:       model.UserActive,
	}
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return stored, nil },
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			require.Equal(t, int64(7), id)
			return stored, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, tok, err := svc.Login(ctx, model.LoginReq{Email: stored.Email, Password: pw})
	require.NoError(t, err)

	u, err := svc.Verify(ctx, "Bearer "+tok)
	require.NoError(t, err)
	require.Equal(t, stored.ID, u.ID)
	require.Equal(t, stored.Role, u.Role)
}

func TestVerify_Garbage(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret", 24)

	_, err := svc.Verify(ctx, "Bearer not-a-token")
	require.Error(t, err)
	require.Equal(t, ErrTokenInvalid, Code(err))
}

func TestVerify_Expired(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, PasswordHash: hashed, Status: model.UserActive}, nil
		},
	}
	// negative TTL mints an already-expired token
	issuer := New(m, "test-secret", -1)
	_, tok, err := issuer.Login(ctx, model.LoginReq{Email: "user@example.com", Password: pw})
	require.NoError(t, err)

	svc := New(m, "test-secret", 24)
	_, err = svc.Verify(ctx, tok)
	require.Error(t, err)
	require.Equal(t, ErrTokenExpired, Code(err))
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrEmailTaken, Code(makeErr(ErrEmailTaken)))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
}
