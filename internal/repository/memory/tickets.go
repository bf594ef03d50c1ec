package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepo struct{ s *Store }

type historyRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&ticket.ID)
	if _, ok := s.tickets[ticket.ID]; ok {
		return repository.ErrDuplicate
	}
	if _, taken := s.numbers[ticket.Number]; taken {
		return repository.ErrDuplicateTicketNumber
	}
	if err := s.checkTicketRefs(ticket); err != nil {
		return err
	}
	if _, ok := s.users[ticket.RequesterID]; !ok {
		return repository.ErrInvalidReference
	}
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	s.tickets[ticket.ID] = ticket.Clone()
	s.numbers[ticket.Number] = ticket.ID
	s.appendHistory(history)
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	if err := s.checkTicketRefs(ticket); err != nil {
		return err
	}

	next := ticket.Clone()
	// identity fields are immutable after creation
	next.Number = stored.Number
	next.RequesterID = stored.RequesterID
	next.CreatedAt = stored.CreatedAt
	next.Version = stored.Version + 1
	s.tickets[ticket.ID] = next
	s.appendHistory(history)
	ticket.Version = next.Version
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.tickets, id)
	delete(s.numbers, ticket.Number)

	history := s.history[:0]
	for _, h := range s.history {
		if h.TicketID != id {
			history = append(history, h)
		}
	}
	s.history = history

	comments := s.comments[:0]
	for _, c := range s.comments {
		if c.TicketID != id {
			comments = append(comments, c)
		}
	}
	s.comments = comments

	attachments := s.attachments[:0]
	for _, a := range s.attachments {
		if a.TicketID != id {
			attachments = append(attachments, a)
		}
	}
	s.attachments = attachments

	for convID, conv := range s.conversations {
		if conv.TicketID != id {
			continue
		}
		delete(s.conversations, convID)
		delete(s.participants, convID)
		messages := s.messages[:0]
		for _, m := range s.messages {
			if m.ConversationID != convID {
				messages = append(messages, m)
			}
		}
		s.messages = messages
	}
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := ticket.Clone()
	return &out, nil
}

func (r *ticketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	id, ok := r.s.numbers[number]
	r.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) Query(_ context.Context, filter repository.TicketFilter, page repository.Page) (repository.TicketPage, error) {
	page = page.Normalize()
	result := repository.TicketPage{Items: []domain.Ticket{}, PageNumber: page.Number, PageSize: page.Size}

	matched := r.s.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Number > matched[j].Number
	})

	result.TotalCount = len(matched)
	start := page.Offset()
	if start >= len(matched) {
		return result, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	result.Items = append(result.Items, matched[start:end]...)
	return result, nil
}

func (r *ticketRepo) NextSequence(_ context.Context, dayKey string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[dayKey]++
	return r.s.sequences[dayKey], nil
}

func (r *ticketRepo) Stats(_ context.Context, filter repository.TicketFilter, now time.Time) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{ByStatus: map[string]int{}, ByDepartment: map[string]int{}}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, ticket := range r.s.matchingLocked(filter) {
		stats.Total++
		stats.ByStatus[ticket.StatusID]++
		dept := ""
		if ticket.DepartmentID != nil {
			dept = *ticket.DepartmentID
		}
		stats.ByDepartment[dept]++

		priority, okP := r.s.priorities[ticket.PriorityID]
		status, okS := r.s.statuses[ticket.StatusID]
		if okP && okS && domain.SLABreached(ticket.CreatedAt, priority, status, now) {
			stats.SLABreaches++
		}
	}
	return stats, nil
}

func (s *Store) matching(filter repository.TicketFilter) []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchingLocked(filter)
}

func (s *Store) matchingLocked(filter repository.TicketFilter) []domain.Ticket {
	matched := make([]domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		if filter.Matches(ticket) {
			matched = append(matched, ticket.Clone())
		}
	}
	return matched
}

// checkTicketRefs mirrors the foreign keys of the tickets table. Caller holds the lock.
func (s *Store) checkTicketRefs(ticket *domain.Ticket) error {
	if _, ok := s.categories[ticket.CategoryID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.priorities[ticket.PriorityID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.statuses[ticket.StatusID]; !ok {
		return repository.ErrInvalidReference
	}
	if !refExists(s.users, ticket.AssigneeID) || !refExists(s.teams, ticket.TeamID) || !refExists(s.departments, ticket.DepartmentID) {
		return repository.ErrInvalidReference
	}
	return nil
}

func (s *Store) appendHistory(entries []domain.TicketHistory) {
	for _, entry := range entries {
		ensureID(&entry.ID)
		s.history = append(s.history, entry)
	}
}

func (r *historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.TicketHistory{}
	for _, h := range r.s.history {
		if h.TicketID == ticketID {
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
