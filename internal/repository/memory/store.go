// Package memory keeps every repository in process. It backs the test suite and
// the development mode used when no Postgres DSN is configured.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Store holds all tables behind a single lock so multi-table writes are atomic.
type Store struct {
	mu sync.RWMutex

	tickets       map[string]domain.Ticket
	numbers       map[string]string
	sequences     map[string]int
	history       []domain.TicketHistory
	users         map[string]domain.User
	departments   map[string]domain.Department
	teams         map[string]domain.Team
	categories    map[string]domain.Category
	priorities    map[string]domain.Priority
	statuses      map[string]domain.Status
	comments      []domain.Comment
	attachments   []domain.Attachment
	notifications []domain.Notification
	conversations map[string]domain.ChatConversation
	participants  map[string]map[string]time.Time
	messages      []domain.ChatMessage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tickets:     map[string]domain.Ticket{},
		numbers:     map[string]string{},
		sequences:   map[string]int{},
		users:       map[string]domain.User{},
		departments: map[string]domain.Department{},
		teams:       map[string]domain.Team{},
		categories:  map[string]domain.Category{},
		priorities:  map[string]domain.Priority{},
		statuses:    map[string]domain.Status{},

		conversations: map[string]domain.ChatConversation{},
		participants:  map[string]map[string]time.Time{},
	}
}

// NewRepositories creates a fresh store and returns every repository backed by it.
func NewRepositories() repository.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tickets:       &ticketRepo{s},
		History:       &historyRepo{s},
		Users:         &userRepo{s},
		Departments:   &departmentRepo{s},
		Teams:         &teamRepo{s},
		Reference:     &referenceRepo{s},
		Comments:      &commentRepo{s},
		Attachments:   &attachmentRepo{s},
		Notifications: &notificationRepo{s},
		Chat:          &chatRepo{s},
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func cloneStr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// refExists reports whether an optional id resolves in table.
func refExists[T any](table map[string]T, id *string) bool {
	if id == nil {
		return true
	}
	_, ok := table[*id]
	return ok
}
