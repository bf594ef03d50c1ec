package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResolved      EventType = "ticket_resolved"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// AllTicketEvents lists every type the lifecycle publishes.
var AllTicketEvents = []EventType{
	EventTicketCreated,
	EventTicketAssigned,
	EventTicketStatusChanged,
	EventTicketResolved,
	EventTicketReopened,
	EventTicketUpdated,
	EventTicketDeleted,
	EventTicketCommentAdded,
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	ActorID      *string   `json:"actor_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string  `json:"title"`
	RequesterID  string  `json:"requester_id"`
	PriorityID   string  `json:"priority_id"`
	DepartmentID *string `json:"department_id,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string `json:"new_assignee_id,omitempty"`
}

// TicketStatusChangedPayload payload; also used for resolve and reopen.
type TicketStatusChangedPayload struct {
	OldStatusID string `json:"old_status_id"`
	NewStatusID string `json:"new_status_id"`
	NewStatus   string `json:"new_status"`
}

// TicketUpdatedPayload lists the edited fields.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}
