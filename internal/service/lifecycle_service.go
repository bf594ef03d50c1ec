package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	maxTitleLength           = 200
	defaultMaxNumberAttempts = 3
)

// LifecycleService applies ticket state transitions against the store.
type LifecycleService struct {
	tickets     repository.TicketRepository
	reference   repository.ReferenceRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	history     repository.TicketHistoryRepository
	identity    IdentityProvider
	workflow    *Workflow
	router      *Router
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo     repository.TicketRepository
	ReferenceRepo  repository.ReferenceRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	HistoryRepo    repository.TicketHistoryRepository
	Identity       IdentityProvider
	Workflow       *Workflow
	Router         *Router
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// MaxNumberAttempts bounds ticket number reallocation on collision.
	MaxNumberAttempts int
}

// CreateTicketInput describes a new ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	CategoryID  string
	PriorityID  string
	RequesterID string
	DueBy       *time.Time
}

// UpdateTicketInput carries optional edits; nil fields are left unchanged.
// Version, when set, must match the stored stamp.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	PriorityID  *string
	DueBy       *time.Time
	ClearDueBy  bool
	Version     *int
}

// TicketDetails is a ticket joined with its reference data and child counts.
type TicketDetails struct {
	Ticket          domain.Ticket
	Category        domain.Category
	Priority        domain.Priority
	Status          domain.Status
	CommentCount    int
	AttachmentCount int
	Attachments     []domain.Attachment
	SLABreached     bool
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	attempts := deps.MaxNumberAttempts
	if attempts <= 0 {
		attempts = defaultMaxNumberAttempts
	}
	return &LifecycleService{
		tickets:     deps.TicketRepo,
		reference:   deps.ReferenceRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		history:     deps.HistoryRepo,
		identity:    deps.Identity,
		workflow:    deps.Workflow,
		router:      deps.Router,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         clock,
		maxAttempts: attempts,
	}
}

// CreateTicket validates input, routes and persists a ticket in the open status.
func (s *LifecycleService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	now := s.now().UTC()

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validateText(title, description); err != nil {
		return nil, err
	}
	if input.DueBy != nil && dueBeforeToday(*input.DueBy, now) {
		return nil, errorutil.NewValidationError("due date cannot be in the past",
			map[string]any{"due_by": input.DueBy.UTC().Format(time.RFC3339)})
	}

	category, err := s.reference.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, referenceError(err, "category", map[string]any{"category_id": input.CategoryID})
	}
	if _, err := s.reference.GetPriority(ctx, input.PriorityID); err != nil {
		return nil, referenceError(err, "priority", map[string]any{"priority_id": input.PriorityID})
	}
	exists, err := s.identity.UserExists(ctx, input.RequesterID)
	if err != nil {
		return nil, storeError(err, "user", nil)
	}
	if !exists {
		return nil, errorutil.NewReferenceNotFound("requester", map[string]any{"requester_id": input.RequesterID})
	}

	openID, err := s.workflow.OpenStatusID()
	if err != nil {
		return nil, err
	}
	route, err := s.router.RouteNewTicket(ctx, input.RequesterID, category)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		CategoryID:   category.ID,
		PriorityID:   input.PriorityID,
		StatusID:     openID,
		RequesterID:  input.RequesterID,
		DepartmentID: route.DepartmentID,
		TeamID:       route.TeamID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.DueBy != nil {
		due := input.DueBy.UTC()
		ticket.DueBy = &due
	}

	var lastNumber string
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number, err := s.router.NextTicketNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		ticket.Number = number
		lastNumber = number

		entry := s.historyEntry(ticket.ID, &input.RequesterID, domain.ChangeTypeCreated, nil, map[string]any{
			"ticket_number": number,
			"status_id":     openID,
		}, now)
		err = s.tickets.Create(ctx, ticket, entry)
		if err == nil {
			s.logger.Info("ticket created",
				zap.String("ticket_id", ticket.ID),
				zap.String("ticket_number", ticket.Number))
			s.publish(ctx, events.EventTicketCreated, ticket, &input.RequesterID, events.TicketCreatedPayload{
				Title:        ticket.Title,
				RequesterID:  ticket.RequesterID,
				PriorityID:   ticket.PriorityID,
				DepartmentID: ticket.DepartmentID,
				TeamID:       ticket.TeamID,
			})
			return ticket, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTicketNumber) {
			return nil, storeError(err, "ticket", nil)
		}
		s.logger.Warn("ticket number collision; reallocating",
			zap.String("ticket_number", number),
			zap.Int("attempt", attempt))
	}
	return nil, errorutil.NewDuplicateTicketNumber(lastNumber, repository.ErrDuplicateTicketNumber)
}

// Assign sets or clears the assignee. Status is left alone.
func (s *LifecycleService) Assign(ctx context.Context, actorID, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		if err := s.router.ValidateAssignee(ctx, ticket, *assigneeID); err != nil {
			return nil, err
		}
	}

	old := ticket.AssigneeID
	if sameOptional(old, assigneeID) {
		return ticket, nil
	}
	now := s.now().UTC()
	ticket.AssigneeID = copyOptional(assigneeID)
	ticket.UpdatedAt = now

	entry := s.historyEntry(ticket.ID, &actorID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_id": derefOrNil(old)},
		map[string]any{"assignee_id": derefOrNil(assigneeID)}, now)
	if err := s.tickets.Update(ctx, ticket, entry); err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.publish(ctx, events.EventTicketAssigned, ticket, &actorID, events.TicketAssignedPayload{
		OldAssigneeID: old,
		NewAssigneeID: ticket.AssigneeID,
	})
	return ticket, nil
}

// ChangeStatus moves the ticket to statusID. Entering a final status stamps
// ResolvedAt once; leaving one never clears it.
func (s *LifecycleService) ChangeStatus(ctx context.Context, actorID, ticketID, statusID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	status, err := s.reference.GetStatus(ctx, statusID)
	if err != nil {
		return nil, referenceError(err, "status", map[string]any{"status_id": statusID})
	}

	now := s.now().UTC()
	if status.IsFinal && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if status.IsFinal && !s.workflow.IsResolvedStatus(status.ID) && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}
	return s.transition(ctx, actorID, ticket, status, events.EventTicketStatusChanged, now)
}

// Resolve moves the ticket to the resolved anchor and stamps ResolvedAt.
func (s *LifecycleService) Resolve(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	resolvedID, err := s.workflow.ResolvedStatusID()
	if err != nil {
		return nil, err
	}
	status, err := s.reference.GetStatus(ctx, resolvedID)
	if err != nil {
		return nil, s.anchorLookupError(err, resolvedID)
	}

	now := s.now().UTC()
	ticket.ResolvedAt = &now
	return s.transition(ctx, actorID, ticket, status, events.EventTicketResolved, now)
}

// Reopen moves the ticket to the open anchor and clears the resolution stamps.
func (s *LifecycleService) Reopen(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	openID, err := s.workflow.OpenStatusID()
	if err != nil {
		return nil, err
	}
	status, err := s.reference.GetStatus(ctx, openID)
	if err != nil {
		return nil, s.anchorLookupError(err, openID)
	}

	now := s.now().UTC()
	ticket.ResolvedAt = nil
	ticket.ClosedAt = nil
	return s.transition(ctx, actorID, ticket, status, events.EventTicketReopened, now)
}

func (s *LifecycleService) transition(ctx context.Context, actorID string, ticket *domain.Ticket, status *domain.Status, eventType events.EventType, now time.Time) (*domain.Ticket, error) {
	oldStatusID := ticket.StatusID
	ticket.StatusID = status.ID
	ticket.UpdatedAt = now

	entry := s.historyEntry(ticket.ID, &actorID, domain.ChangeTypeStatus,
		map[string]any{"status_id": oldStatusID},
		map[string]any{"status_id": status.ID, "status": status.Name}, now)
	if err := s.tickets.Update(ctx, ticket, entry); err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticket.ID})
	}
	s.logger.Info("ticket status changed",
		zap.String("ticket_number", ticket.Number),
		zap.String("status", status.Name))
	s.publish(ctx, eventType, ticket, &actorID, events.TicketStatusChangedPayload{
		OldStatusID: oldStatusID,
		NewStatusID: status.ID,
		NewStatus:   status.Name,
	})
	return ticket, nil
}

// UpdateTicket edits descriptive fields. An unchanged past due date is kept.
func (s *LifecycleService) UpdateTicket(ctx context.Context, actorID, ticketID string, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != ticket.Version {
		return nil, errorutil.NewConcurrencyConflict("ticket", map[string]any{
			"ticket_id":        ticketID,
			"expected_version": *input.Version,
			"current_version":  ticket.Version,
		})
	}

	now := s.now().UTC()
	oldValues := map[string]any{}
	newValues := map[string]any{}
	changed := []string{}
	record := func(field string, oldValue, newValue any) {
		oldValues[field] = oldValue
		newValues[field] = newValue
		changed = append(changed, field)
	}

	title, description := ticket.Title, ticket.Description
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
	}
	if err := validateText(title, description); err != nil {
		return nil, err
	}
	if title != ticket.Title {
		record("title", ticket.Title, title)
		ticket.Title = title
	}
	if description != ticket.Description {
		record("description", ticket.Description, description)
		ticket.Description = description
	}

	if input.CategoryID != nil && *input.CategoryID != ticket.CategoryID {
		if _, err := s.reference.GetCategory(ctx, *input.CategoryID); err != nil {
			return nil, referenceError(err, "category", map[string]any{"category_id": *input.CategoryID})
		}
		record("category_id", ticket.CategoryID, *input.CategoryID)
		ticket.CategoryID = *input.CategoryID
	}
	if input.PriorityID != nil && *input.PriorityID != ticket.PriorityID {
		if _, err := s.reference.GetPriority(ctx, *input.PriorityID); err != nil {
			return nil, referenceError(err, "priority", map[string]any{"priority_id": *input.PriorityID})
		}
		record("priority_id", ticket.PriorityID, *input.PriorityID)
		ticket.PriorityID = *input.PriorityID
	}

	switch {
	case input.ClearDueBy && ticket.DueBy != nil:
		record("due_by", ticket.DueBy.Format(time.RFC3339), nil)
		ticket.DueBy = nil
	case input.DueBy != nil && (ticket.DueBy == nil || !ticket.DueBy.Equal(*input.DueBy)):
		if dueBeforeToday(*input.DueBy, now) {
			return nil, errorutil.NewValidationError("due date cannot be in the past",
				map[string]any{"due_by": input.DueBy.UTC().Format(time.RFC3339)})
		}
		due := input.DueBy.UTC()
		var previous any
		if ticket.DueBy != nil {
			previous = ticket.DueBy.Format(time.RFC3339)
		}
		record("due_by", previous, due.Format(time.RFC3339))
		ticket.DueBy = &due
	}

	if len(changed) == 0 {
		return ticket, nil
	}
	ticket.UpdatedAt = now
	entry := s.historyEntry(ticket.ID, &actorID, domain.ChangeTypeDetails, oldValues, newValues, now)
	if err := s.tickets.Update(ctx, ticket, entry); err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.publish(ctx, events.EventTicketUpdated, ticket, &actorID, events.TicketUpdatedPayload{Fields: changed})
	return ticket, nil
}

// DeleteTicket removes a ticket and its child records.
func (s *LifecycleService) DeleteTicket(ctx context.Context, actorID, ticketID string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.logger.Info("ticket deleted", zap.String("ticket_number", ticket.Number), zap.String("actor_id", actorID))
	s.publish(ctx, events.EventTicketDeleted, ticket, &actorID, nil)
	return nil
}

// GetTicket loads a ticket by id.
func (s *LifecycleService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.loadTicket(ctx, ticketID)
}

// GetTicketByNumber loads a ticket by its human readable number.
func (s *LifecycleService) GetTicketByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_number": number})
	}
	return ticket, nil
}

// Details joins a ticket with reference data, child counts and SLA state.
func (s *LifecycleService) Details(ctx context.Context, ticket *domain.Ticket) (*TicketDetails, error) {
	category, err := s.reference.GetCategory(ctx, ticket.CategoryID)
	if err != nil {
		return nil, storeError(err, "category", nil)
	}
	priority, err := s.reference.GetPriority(ctx, ticket.PriorityID)
	if err != nil {
		return nil, storeError(err, "priority", nil)
	}
	status, err := s.reference.GetStatus(ctx, ticket.StatusID)
	if err != nil {
		return nil, storeError(err, "status", nil)
	}
	comments, err := s.comments.CountByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, storeError(err, "comment", nil)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, storeError(err, "attachment", nil)
	}

	return &TicketDetails{
		Ticket:          *ticket,
		Category:        *category,
		Priority:        *priority,
		Status:          *status,
		CommentCount:    comments,
		AttachmentCount: len(attachments),
		Attachments:     attachments,
		SLABreached:     domain.SLABreached(ticket.CreatedAt, *priority, *status, s.now()),
	}, nil
}

// History returns the audit trail, oldest first.
func (s *LifecycleService) History(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket history", nil)
	}
	return entries, nil
}

func (s *LifecycleService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

// anchorLookupError covers an anchor deleted after the workflow was loaded.
func (s *LifecycleService) anchorLookupError(err error, statusID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("workflow anchor status vanished", zap.String("status_id", statusID))
		return errorutil.NewConfigurationError("required workflow status is not configured",
			map[string]any{"status_id": statusID})
	}
	return storeError(err, "status", nil)
}

func (s *LifecycleService) historyEntry(ticketID string, actorID *string, changeType domain.TicketChangeType, oldValue, newValue map[string]any, at time.Time) domain.TicketHistory {
	return domain.TicketHistory{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		ChangedByID: copyOptional(actorID),
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
		CreatedAt:   at,
	}
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, actorID *string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		ActorID:      actorID,
		Timestamp:    s.now().UTC(),
		Payload:      payload,
	})
}

func validateText(title, description string) error {
	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		details["title"] = "must be at most 200 characters"
	}
	if description == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return errorutil.NewValidationError("invalid ticket input", details)
	}
	return nil
}

// dueBeforeToday compares calendar dates in UTC so a due date of today is accepted.
func dueBeforeToday(due, now time.Time) bool {
	dy, dm, dd := due.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return dueDay.Before(today)
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyOptional(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func derefOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
