package domain

import (
	"strings"
	"time"
)

// Category is a hierarchical ticket classification.
type Category struct {
	ID            string
	Name          string
	Description   string
	ParentID      *string
	DefaultTeamID *string
	CreatedAt     time.Time
}

// Priority is a severity level with SLA targets expressed in hours.
type Priority struct {
	ID                 string
	Name               string
	ResponseSLAHours   int
	ResolutionSLAHours int
	SortOrder          int
}

// ResponseSLA returns the response target as a duration.
func (p Priority) ResponseSLA() time.Duration {
	return time.Duration(p.ResponseSLAHours) * time.Hour
}

// ResolutionSLA returns the resolution target as a duration.
func (p Priority) ResolutionSLA() time.Duration {
	return time.Duration(p.ResolutionSLAHours) * time.Hour
}

// Status is a data driven workflow state.
type Status struct {
	ID        string
	Name      string
	IsFinal   bool
	SortOrder int
}

// HasName compares status names case-insensitively.
func (s Status) HasName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name))
}
