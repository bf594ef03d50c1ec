package domain

// Principal is the authenticated caller as seen by services.
type Principal struct {
	UserID       string
	Role         Role
	DepartmentID *string
	TeamID       *string
}

// PrincipalFromUser derives a principal from a loaded account.
func PrincipalFromUser(u *User) Principal {
	return Principal{
		UserID:       u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		TeamID:       u.TeamID,
	}
}
