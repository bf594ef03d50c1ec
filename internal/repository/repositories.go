package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories bundles every repository the services depend on.
type Repositories struct {
	Tickets       TicketRepository
	History       TicketHistoryRepository
	Users         UserRepository
	Departments   DepartmentRepository
	Teams         TeamRepository
	Reference     ReferenceRepository
	Comments      CommentRepository
	Attachments   AttachmentRepository
	Notifications NotificationRepository
	Chat          ChatRepository
}

// NewPostgresRepositories returns the pgx implementations over one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Tickets:       NewTicketRepository(pool),
		History:       NewTicketHistoryRepository(pool),
		Users:         NewUserRepository(pool),
		Departments:   NewDepartmentRepository(pool),
		Teams:         NewTeamRepository(pool),
		Reference:     NewReferenceRepository(pool),
		Comments:      NewCommentRepository(pool),
		Attachments:   NewAttachmentRepository(pool),
		Notifications: NewNotificationRepository(pool),
		Chat:          NewChatRepository(pool),
	}
}
