package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type notificationRepo struct{ s *Store }

type chatRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&n.ID)
	if _, ok := s.users[n.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *notificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *chatRepo) GetConversationByTicket(_ context.Context, ticketID string) (*domain.ChatConversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, conv := range r.s.conversations {
		if conv.TicketID == ticketID {
			out := conv
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *chatRepo) CreateConversation(_ context.Context, conv *domain.ChatConversation) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&conv.ID)
	if _, ok := s.tickets[conv.TicketID]; !ok {
		return repository.ErrInvalidReference
	}
	for _, existing := range s.conversations {
		if existing.TicketID == conv.TicketID {
			return repository.ErrDuplicate
		}
	}
	s.conversations[conv.ID] = *conv
	s.participants[conv.ID] = map[string]time.Time{}
	return nil
}

func (r *chatRepo) AddMessage(_ context.Context, msg *domain.ChatMessage) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&msg.ID)
	if _, ok := s.conversations[msg.ConversationID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[msg.SenderID]; !ok {
		return repository.ErrInvalidReference
	}
	s.messages = append(s.messages, *msg)
	if _, joined := s.participants[msg.ConversationID][msg.SenderID]; !joined {
		s.participants[msg.ConversationID][msg.SenderID] = msg.CreatedAt
	}
	return nil
}

func (r *chatRepo) ListMessages(_ context.Context, conversationID string, page repository.Page) ([]domain.ChatMessage, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.conversationMessages(conversationID)
	page = page.Normalize()
	start := page.Offset()
	if start >= len(all) {
		return []domain.ChatMessage{}, len(all), nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return append([]domain.ChatMessage{}, all[start:end]...), len(all), nil
}

func (r *chatRepo) ListConversationsByUser(_ context.Context, userID string) ([]domain.ChatConversationSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.ChatConversationSummary{}
	for convID, members := range r.s.participants {
		if _, ok := members[userID]; !ok {
			continue
		}
		summary := domain.ChatConversationSummary{Conversation: r.s.conversations[convID]}
		if msgs := r.conversationMessages(convID); len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			summary.LastMessage = &last
		}
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool { return lastActivity(result[i]).After(lastActivity(result[j])) })
	return result, nil
}

// conversationMessages expects the read lock to be held.
func (r *chatRepo) conversationMessages(conversationID string) []domain.ChatMessage {
	out := []domain.ChatMessage{}
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func lastActivity(s domain.ChatConversationSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.Conversation.CreatedAt
}
