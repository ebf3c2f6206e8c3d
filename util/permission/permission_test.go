package permission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"librarymgmt/model"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		perm Permission
		want bool
	}{
		{"user views books", model.RoleUser, ViewBooks, true},
		{"user borrows books", model.RoleUser, BorrowBooks, true},
		{"user cannot manage books", model.RoleUser, ManageBooks, false},
		{"user cannot manage borrows", model.RoleUser, ManageBorrows, false},
		{"librarian manages books", model.RoleLibrarian, ManageBooks, true},
		{"librarian manages borrows", model.RoleLibrarian, ManageBorrows, true},
		{"librarian views users", model.RoleLibrarian, ViewUsers, true},
		{"librarian cannot manage users", model.RoleLibrarian, ManageUsers, false},
		{"admin manages users", model.RoleAdmin, ManageUsers, true},
		{"admin wildcard grants manage books", model.RoleAdmin, ManageBooks, true},
		{"admin wildcard grants borrows", model.RoleAdmin, ManageBorrows, true},
		{"unknown role denies", model.Role("ghost"), ViewBooks, false},
		{"empty role denies", model.Role(""), ViewBooks, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Allowed(tt.role, tt.perm))
		})
	}
}

func TestForRole(t *testing.T) {
	require.Empty(t, ForRole(model.Role("nobody")))
	require.Contains(t, ForRole(model.RoleAdmin), FullAccess)
	require.Len(t, ForRole(model.RoleUser), 2)
}
