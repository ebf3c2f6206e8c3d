// Package permission holds the static role -> capability table consulted
// by the authorization middleware.
package permission

import "librarymgmt/model"

type Permission string

const (
	ViewBooks     Permission = "view_books"
	BorrowBooks   Permission = "borrow_books"
	ManageBooks   Permission = "manage_books"
	ManageBorrows Permission = "manage_borrows"
	ViewUsers     Permission = "view_users"
	ManageUsers   Permission = "manage_users"
	SystemConfig  Permission = "system_config"
	FullAccess    Permission = "full_access"
)

var table = map[model.Role][]Permission{
	model.RoleUser: {
		ViewBooks,
		BorrowBooks,
	},
	model.RoleLibrarian: {
		ViewBooks,
		BorrowBooks,
		ManageBooks,
		ManageBorrows,
		ViewUsers,
	},
	model.RoleAdmin: {
		FullAccess,
		ManageUsers,
		SystemConfig,
	},
}

// ForRole returns the permission set of a role, empty for unknown roles.
func ForRole(role model.Role) []Permission {
	return table[role]
}

// Allowed reports whether the role carries the permission. full_access
// grants everything; an unknown role always denies.
func Allowed(role model.Role, p Permission) bool {
	for _, have := range table[role] {
		if have == p || have == FullAccess {
			return true
		}
	}
	return false
}
