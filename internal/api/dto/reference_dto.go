package dto

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   string  `json:"description"`
	ParentID      *string `json:"parent_id"`
	DefaultTeamID *string `json:"default_team_id"`
}

// SetCategoryParentRequest re-parents a category; null makes it a root.
type SetCategoryParentRequest struct {
	ParentID *string `json:"parent_id"`
}

// CreatePriorityRequest payload.
type CreatePriorityRequest struct {
	Name               string `json:"name" validate:"required,max=50"`
	ResponseSLAHours   int    `json:"response_sla_hours" validate:"gt=0"`
	ResolutionSLAHours int    `json:"resolution_sla_hours" validate:"gt=0"`
	SortOrder          int    `json:"sort_order"`
}

// CreateStatusRequest payload.
type CreateStatusRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	IsFinal   bool   `json:"is_final"`
	SortOrder int    `json:"sort_order"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name         string  `json:"name" validate:"required,max=150"`
	Description  string  `json:"description"`
	DepartmentID *string `json:"department_id"`
	LeadID       *string `json:"lead_id"`
}

// CategoryResponse payload.
type CategoryResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ParentID      *string `json:"parent_id"`
	DefaultTeamID *string `json:"default_team_id"`
}

// PriorityResponse payload.
type PriorityResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ResponseSLAHours   int    `json:"response_sla_hours"`
	ResolutionSLAHours int    `json:"resolution_sla_hours"`
	SortOrder          int    `json:"sort_order"`
}

// StatusResponse payload.
type StatusResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsFinal   bool   `json:"is_final"`
	SortOrder int    `json:"sort_order"`
}

// DepartmentResponse payload.
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TeamResponse payload.
type TeamResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	DepartmentID *string `json:"department_id"`
	LeadID       *string `json:"lead_id"`
}
