package domain

import "time"

// NamedCount is one bar of a chart.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TicketMetrics is the dashboard payload: counts by status and department
// name plus open tickets past their resolution SLA.
type TicketMetrics struct {
	ByStatus     []NamedCount `json:"by_status"`
	ByDepartment []NamedCount `json:"by_department"`
	SLABreaches  int          `json:"sla_breaches"`
	Total        int          `json:"total"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
