package domain

import (
	"slices"
	"time"
)

// Role grants access to protected catalog operations.
type Role string

const (
	// RoleModerator may update catalog entries.
	RoleModerator Role = "Moderator"
	// RoleAdministrator may delete catalog entries and run ingestion.
	RoleAdministrator Role = "Administrator"
)

// User is an API account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// HasRole reports whether the user holds role. Administrators implicitly hold Moderator.
func (u *User) HasRole(role Role) bool {
	if slices.Contains(u.Roles, role) {
		return true
	}
	return role == RoleModerator && slices.Contains(u.Roles, RoleAdministrator)
}
