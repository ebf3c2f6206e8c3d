package usersvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
)

type mockRepo struct {
	byIDFn         func(ctx context.Context, id int64) (*model.User, error)
	updateRoleFn   func(ctx context.Context, id int64, role model.Role) (*model.User, error)
	updateStatusFn func(ctx context.Context, id int64, status model.UserStatus) (*model.User, error)
	updateProfFn   func(ctx context.Context, id int64, name, email string) (*model.User, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error { return nil }
func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (m *mockRepo) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	if m.updateProfFn == nil {
		return nil, nil
	}
	return m.updateProfFn(ctx, id, name, email)
}
func (m *mockRepo) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	if m.updateRoleFn == nil {
		return nil, nil
	}
	return m.updateRoleFn(ctx, id, role)
}
func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error) {
	if m.updateStatusFn == nil {
		return nil, nil
	}
	return m.updateStatusFn(ctx, id, status)
}

func TestUpdateRole_Invalid(t *testing.T) {
	ctx := context.Background()
	called := false
	svc := New(&mockRepo{
		updateRoleFn: func(ctx context.Context, id int64, role model.Role) (*model.User, error) {
			called = true
			return &model.User{ID: id, Role: role}, nil
		},
	})

	_, err := svc.UpdateRole(ctx, 1, model.Role("superuser"))
	require.Error(t, err)
	require.Equal(t, ErrBadRole, Code(err))
	require.False(t, called)
}

func TestUpdateRole_Success(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{
		updateRoleFn: func(ctx context.Context, id int64, role model.Role) (*model.User, error) {
			return &model.User{ID: id, Role: role}, nil
		},
	})

	u, err := svc.UpdateRole(ctx, 3, model.RoleLibrarian)
	require.NoError(t, err)
	require.Equal(t, model.RoleLibrarian, u.Role)
}

func TestUpdateRole_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.UpdateRole(ctx, 3, model.RoleAdmin)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdateStatus_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.UpdateStatus(ctx, 1, model.UserStatus("banned"))
	require.Error(t, err)
	require.Equal(t, ErrBadStatus, Code(err))
}

func TestUpdateStatus_Success(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{
		updateStatusFn: func(ctx context.Context, id int64, status model.UserStatus) (*model.User, error) {
			return &model.User{ID: id, Status: status}, nil
		},
	})

	u, err := svc.UpdateStatus(ctx, 4, model.UserInactive)
	require.NoError(t, err)
	require.Equal(t, model.UserInactive, u.Status)
}

func TestProfile_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.Profile(ctx, 9)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdateProfile_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.UpdateProfile(ctx, 1, " ", "a@b.c")
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestUpdateProfile_NormalizesEmail(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{
		updateProfFn: func(ctx context.Context, id int64, name, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: id, Name: name, Email: email}, nil
		},
	})

	u, err := svc.UpdateProfile(ctx, 1, "Halim", "  USER@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", u.Email)
}
