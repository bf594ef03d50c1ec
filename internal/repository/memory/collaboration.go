package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type commentRepo struct{ s *Store }

type attachmentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&comment.ID)
	if _, ok := s.tickets[comment.TicketID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return repository.ErrInvalidReference
	}
	s.comments = append(s.comments, *comment)
	return nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.TicketID != ticketID || (c.IsInternal && !includeInternal) {
			continue
		}
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *commentRepo) CountByTicket(_ context.Context, ticketID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, c := range r.s.comments {
		if c.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

func (r *attachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&attachment.ID)
	if _, ok := s.tickets[attachment.TicketID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := s.users[attachment.UploadedByID]; !ok {
		return repository.ErrInvalidReference
	}
	s.attachments = append(s.attachments, *attachment)
	return nil
}

func (r *attachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Attachment{}
	for _, a := range r.s.attachments {
		if a.TicketID == ticketID {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].UploadedAt.Before(result[j].UploadedAt) })
	return result, nil
}

func (r *attachmentRepo) CountByTicket(_ context.Context, ticketID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, a := range r.s.attachments {
		if a.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}
