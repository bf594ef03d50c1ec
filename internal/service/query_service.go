package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// QueryService is the read side: filter and paginate, nothing else. Callers
// apply ScopeFilter first.
type QueryService struct {
	tickets repository.TicketRepository
}

// NewQueryService constructs the service.
func NewQueryService(tickets repository.TicketRepository) *QueryService {
	return &QueryService{tickets: tickets}
}

// Query returns one page plus the total match count. Empty results are not an error.
func (s *QueryService) Query(ctx context.Context, filter repository.TicketFilter, page repository.Page) (repository.TicketPage, error) {
	if page.Number < 0 || page.Size < 0 {
		return repository.TicketPage{}, errorutil.NewValidationError("invalid pagination",
			map[string]any{"page": page.Number, "page_size": page.Size})
	}
	result, err := s.tickets.Query(ctx, filter, page.Normalize())
	if err != nil {
		return repository.TicketPage{}, errorutil.NewInternalError(err)
	}
	return result, nil
}
