package domain

import "time"

// Notification is an in-app message in a user's inbox.
type Notification struct {
	ID        string
	UserID    string
	Subject   string
	Body      string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
