package repository

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TicketFilter holds conjunctive, optional ticket criteria.
type TicketFilter struct {
	Search       *string
	StatusID     *string
	PriorityID   *string
	CategoryID   *string
	AssigneeID   *string
	RequesterID  *string
	DepartmentID *string
	TeamID       *string
}

// Page selects a 1-based page of results.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// SearchTerm returns the trimmed, lower-cased search text or "" when absent.
func (f TicketFilter) SearchTerm() string {
	if f.Search == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*f.Search))
}

// Matches evaluates the filter against a ticket in memory, mirroring whereClause.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	eq := func(want *string, got string) bool {
		return want == nil || *want == got
	}
	eqPtr := func(want *string, got *string) bool {
		if want == nil {
			return true
		}
		return got != nil && *got == *want
	}
	if !eq(f.StatusID, t.StatusID) || !eq(f.PriorityID, t.PriorityID) || !eq(f.CategoryID, t.CategoryID) {
		return false
	}
	if !eq(f.RequesterID, t.RequesterID) || !eqPtr(f.AssigneeID, t.AssigneeID) {
		return false
	}
	if !eqPtr(f.DepartmentID, t.DepartmentID) || !eqPtr(f.TeamID, t.TeamID) {
		return false
	}
	term := f.SearchTerm()
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Number), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// whereClause renders the filter as SQL predicates. prefix qualifies column names
// (e.g. "t.") for joined queries.
func (f TicketFilter) whereClause(prefix string, args []any) (string, []any) {
	clauses := []string{"1=1"}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		clauses = append(clauses, fmt.Sprintf("%s%s=$%d", prefix, column, len(args)))
	}
	add("status_id", f.StatusID)
	add("priority_id", f.PriorityID)
	add("category_id", f.CategoryID)
	add("assignee_id", f.AssigneeID)
	add("requester_id", f.RequesterID)
	add("department_id", f.DepartmentID)
	add("team_id", f.TeamID)

	if term := f.SearchTerm(); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(%[1]stitle) LIKE %[2]s OR LOWER(%[1]snumber) LIKE %[2]s OR LOWER(%[1]sdescription) LIKE %[2]s)",
			prefix, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
