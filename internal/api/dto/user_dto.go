package dto

import "time"

// RegisterRequest payload for self-service signup.
type RegisterRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	DepartmentID *string `json:"department_id" validate:"omitempty,min=1"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest is an admin change to role and placement.
type UpdateAccountRequest struct {
	Role            *string `json:"role" validate:"omitempty,oneof=USER STAFF ADMIN"`
	DepartmentID    *string `json:"department_id"`
	ClearDepartment bool    `json:"clear_department_id"`
	TeamID          *string `json:"team_id"`
	ClearTeam       bool    `json:"clear_team_id"`
	Active          *bool   `json:"active"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DepartmentID *string   `json:"department_id"`
	TeamID       *string   `json:"team_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
