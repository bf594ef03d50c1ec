package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	chatPageSize       = 100
	maxChatMessageRune = 4000
)

// ChatService keeps one conversation per ticket. Anyone who can view the
// ticket can read and post.
type ChatService struct {
	tickets repository.TicketRepository
	chat    repository.ChatRepository
	now     func() time.Time
}

// ChatDependencies bundles collaborators.
type ChatDependencies struct {
	TicketRepo repository.TicketRepository
	ChatRepo   repository.ChatRepository
	Clock      func() time.Time
}

// ChatThread is a page of a ticket conversation.
type ChatThread struct {
	Conversation domain.ChatConversation
	Messages     []domain.ChatMessage
	Page         repository.Page
	TotalCount   int
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ChatService{tickets: deps.TicketRepo, chat: deps.ChatRepo, now: clock}
}

// ConversationForTicket returns the ticket's conversation, creating it on first use.
func (s *ChatService) ConversationForTicket(ctx context.Context, principal domain.Principal, ticketID string) (*domain.ChatConversation, error) {
	ticket, err := s.visibleTicket(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	return s.getOrCreate(ctx, ticket.ID)
}

// Messages returns one page of the ticket conversation, oldest first. A zero
// page size means 100.
func (s *ChatService) Messages(ctx context.Context, principal domain.Principal, ticketID string, page repository.Page) (*ChatThread, error) {
	conv, err := s.ConversationForTicket(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	if page.Size <= 0 {
		page.Size = chatPageSize
	}
	page = page.Normalize()
	messages, total, err := s.chat.ListMessages(ctx, conv.ID, page)
	if err != nil {
		return nil, storeError(err, "chat message", nil)
	}
	return &ChatThread{Conversation: *conv, Messages: messages, Page: page, TotalCount: total}, nil
}

// PostMessage appends a message from the principal to the ticket conversation.
func (s *ChatService) PostMessage(ctx context.Context, principal domain.Principal, ticketID, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errorutil.NewValidationError("message body is required", map[string]any{"body": "required"})
	}
	if utf8.RuneCountInString(body) > maxChatMessageRune {
		return nil, errorutil.NewValidationError("message body is too long", map[string]any{"body": "too long"})
	}
	conv, err := s.ConversationForTicket(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	msg := &domain.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       principal.UserID,
		Body:           body,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.chat.AddMessage(ctx, msg); err != nil {
		return nil, storeError(err, "chat message", map[string]any{"ticket_id": ticketID})
	}
	return msg, nil
}

// UserConversations lists the conversations the principal has posted in,
// most recent activity first.
func (s *ChatService) UserConversations(ctx context.Context, principal domain.Principal) ([]domain.ChatConversationSummary, error) {
	summaries, err := s.chat.ListConversationsByUser(ctx, principal.UserID)
	if err != nil {
		return nil, storeError(err, "chat conversation", nil)
	}
	return summaries, nil
}

func (s *ChatService) getOrCreate(ctx context.Context, ticketID string) (*domain.ChatConversation, error) {
	conv, err := s.chat.GetConversationByTicket(ctx, ticketID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "chat conversation", nil)
	}

	conv = &domain.ChatConversation{ID: uuid.NewString(), TicketID: ticketID, CreatedAt: s.now().UTC()}
	err = s.chat.CreateConversation(ctx, conv)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent first message.
		conv, err = s.chat.GetConversationByTicket(ctx, ticketID)
	}
	if err != nil {
		return nil, storeError(err, "chat conversation", map[string]any{"ticket_id": ticketID})
	}
	return conv, nil
}

func (s *ChatService) visibleTicket(ctx context.Context, principal domain.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !CanViewTicket(principal, ticket) {
		return nil, errorutil.NewForbidden("access denied")
	}
	return ticket, nil
}
