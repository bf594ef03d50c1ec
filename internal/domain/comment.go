package domain

import "time"

// Comment is an append-only note on a ticket.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	HTML       string
	IsInternal bool
	CreatedAt  time.Time
}

// Attachment stores metadata for a file linked to a ticket.
type Attachment struct {
	ID           string
	TicketID     string
	UploadedByID string
	FileName     string
	FilePath     string
	ContentType  string
	SizeBytes    int64
	UploadedAt   time.Time
}
