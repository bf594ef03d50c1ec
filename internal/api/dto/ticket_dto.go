package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	CategoryID  string     `json:"category_id" validate:"required"`
	PriorityID  string     `json:"priority_id" validate:"required"`
	DueBy       *time.Time `json:"due_by"`
}

// UpdateTicketRequest edits ticket details; omitted fields stay unchanged.
type UpdateTicketRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	CategoryID  *string    `json:"category_id" validate:"omitempty,min=1"`
	PriorityID  *string    `json:"priority_id" validate:"omitempty,min=1"`
	DueBy       *time.Time `json:"due_by"`
	ClearDueBy  bool       `json:"clear_due_by"`
	Version     *int       `json:"version" validate:"omitempty,gte=1"`
}

// AssignRequest sets or clears the assignee.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// ChangeStatusRequest moves a ticket to any known status.
type ChangeStatusRequest struct {
	StatusID string `json:"status_id" validate:"required"`
}

// TicketResponse is the list representation.
type TicketResponse struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CategoryID   string     `json:"category_id"`
	PriorityID   string     `json:"priority_id"`
	StatusID     string     `json:"status_id"`
	RequesterID  string     `json:"requester_id"`
	AssigneeID   *string    `json:"assignee_id"`
	TeamID       *string    `json:"team_id"`
	DepartmentID *string    `json:"department_id"`
	DueBy        *time.Time `json:"due_by"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	ClosedAt     *time.Time `json:"closed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int        `json:"version"`
}

// TicketDetailResponse adds resolved reference names and counts.
type TicketDetailResponse struct {
	TicketResponse
	Category        string               `json:"category"`
	Priority        string               `json:"priority"`
	Status          string               `json:"status"`
	StatusIsFinal   bool                 `json:"status_is_final"`
	SLABreached     bool                 `json:"sla_breached"`
	CommentCount    int                  `json:"comment_count"`
	AttachmentCount int                  `json:"attachment_count"`
	Attachments     []AttachmentResponse `json:"attachments"`
}

// TicketPageResponse wraps one page of tickets.
type TicketPageResponse struct {
	Items      []TicketResponse `json:"items"`
	TotalCount int              `json:"total_count"`
	PageNumber int              `json:"page_number"`
	PageSize   int              `json:"page_size"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID          string         `json:"id"`
	ChangedByID *string        `json:"changed_by_id"`
	ChangeType  string         `json:"change_type"`
	OldValue    map[string]any `json:"old_value"`
	NewValue    map[string]any `json:"new_value"`
	CreatedAt   time.Time      `json:"created_at"`
}
