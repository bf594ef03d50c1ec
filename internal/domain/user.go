package domain

import "time"

// Role enumerates what an account may do.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaffOrAdmin reports whether the role can work tickets.
func (r Role) IsStaffOrAdmin() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is an account that can raise or work tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	TeamID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
