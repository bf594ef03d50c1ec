package domain

import "time"

// TicketNumberPrefix starts every human readable ticket number.
const TicketNumberPrefix = "INC"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	Number       string
	Title        string
	Description  string
	CategoryID   string
	PriorityID   string
	StatusID     string
	RequesterID  string
	AssigneeID   *string
	TeamID       *string
	DepartmentID *string
	DueBy        *time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	// Version is the optimistic concurrency stamp; the store bumps it on every update.
	Version int
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (t Ticket) Clone() Ticket {
	out := t
	out.AssigneeID = cloneString(t.AssigneeID)
	out.TeamID = cloneString(t.TeamID)
	out.DepartmentID = cloneString(t.DepartmentID)
	out.DueBy = cloneTime(t.DueBy)
	out.ResolvedAt = cloneTime(t.ResolvedAt)
	out.ClosedAt = cloneTime(t.ClosedAt)
	return out
}

// SLABreached reports whether the resolution SLA elapsed while the ticket is still open-ended.
func SLABreached(createdAt time.Time, priority Priority, status Status, now time.Time) bool {
	if status.IsFinal {
		return false
	}
	return createdAt.Add(priority.ResolutionSLA()).Before(now)
}

// TicketStats aggregates ticket counts for dashboards.
type TicketStats struct {
	ByStatus     map[string]int
	ByDepartment map[string]int
	SLABreaches  int
	Total        int
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
