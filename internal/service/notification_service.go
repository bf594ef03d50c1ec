package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const (
	defaultInboxLimit = 10
	maxInboxLimit     = 50
)

// NotificationService turns domain events into inbox entries and emails, and
// serves each user's inbox.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	tickets    repository.TicketRepository
	inbox      repository.NotificationRepository
	mailer     Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
	now        func() time.Time
}

// NotificationDependencies bundles collaborators. A nil Mailer logs instead of sending.
type NotificationDependencies struct {
	Dispatcher       events.Dispatcher
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	NotificationRepo repository.NotificationRepository
	Mailer           Mailer
	Logger           *zap.Logger
	Clock            func() time.Time
	Config           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		inbox:      deps.NotificationRepo,
		mailer:     deps.Mailer,
		logger:     logger,
		cfg:        deps.Config,
		now:        clock,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleCommentAdded)
	for _, t := range []events.EventType{
		events.EventTicketStatusChanged,
		events.EventTicketReopened,
		events.EventTicketUpdated,
		events.EventTicketDeleted,
	} {
		n.dispatcher.Subscribe(t, n.handleWebhookOnly)
	}
}

// ListNotifications returns the newest entries of userID's inbox. limit <= 0
// means the default; it is capped at maxInboxLimit.
func (n *NotificationService) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	items, err := n.inbox.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeError(err, "notification", nil)
	}
	return items, nil
}

// UnreadCount returns how many inbox entries userID has not read.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := n.inbox.CountUnread(ctx, userID)
	if err != nil {
		return 0, storeError(err, "notification", nil)
	}
	return count, nil
}

// MarkAsRead flags one of userID's notifications as read. Notifications of
// other users are reported as not found.
func (n *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	if err := n.inbox.MarkRead(ctx, notificationID, userID); err != nil {
		return storeError(err, "notification", map[string]any{"notification_id": notificationID})
	}
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_number", event.TicketNumber))
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		n.notify(ctx, payload.RequesterID, event,
			fmt.Sprintf("[%s] Ticket received", event.TicketNumber),
			fmt.Sprintf("Your ticket %q has been logged as %s.", payload.Title, event.TicketNumber),
			true)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_number", event.TicketNumber))
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if ok && payload.NewAssigneeID != nil {
		n.notify(ctx, *payload.NewAssigneeID, event,
			fmt.Sprintf("[%s] Ticket assigned to you", event.TicketNumber),
			fmt.Sprintf("Ticket %s has been assigned to you.", event.TicketNumber),
			true)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketResolved", zap.String("ticket_number", event.TicketNumber))
	if ticket := n.lookupTicket(ctx, event.TicketID); ticket != nil {
		n.notify(ctx, ticket.RequesterID, event,
			fmt.Sprintf("[%s] Ticket resolved", event.TicketNumber),
			fmt.Sprintf("Your ticket %q has been resolved.", ticket.Title),
			false)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok || payload.IsInternal {
		return nil
	}
	n.logger.Info("TicketCommentAdded", zap.String("ticket_number", event.TicketNumber))
	if ticket := n.lookupTicket(ctx, event.TicketID); ticket != nil {
		// The other side of the conversation hears about the reply.
		recipient := ticket.RequesterID
		if payload.AuthorID == ticket.RequesterID {
			recipient = ""
			if ticket.AssigneeID != nil {
				recipient = *ticket.AssigneeID
			}
		}
		if recipient != "" && recipient != payload.AuthorID {
			n.notify(ctx, recipient, event,
				fmt.Sprintf("[%s] New comment", event.TicketNumber),
				payload.BodyPreview,
				false)
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleWebhookOnly(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketChanged",
		zap.String("ticket_number", event.TicketNumber),
		zap.String("event_type", string(event.Type)))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// notify stores an inbox entry for userID and, when withEmail is set, mails it.
func (n *NotificationService) notify(ctx context.Context, userID string, event events.Event, subject, body string, withEmail bool) {
	if strings.TrimSpace(userID) == "" {
		return
	}
	if n.inbox != nil {
		entry := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Subject:   subject,
			Body:      body,
			Link:      ticketLink(event.TicketID),
			CreatedAt: n.now().UTC(),
		}
		if err := n.inbox.Create(ctx, entry); err != nil {
			n.logger.Warn("storing notification failed",
				zap.String("user_id", userID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
	if withEmail {
		n.emailUser(ctx, userID, event, subject, body)
	}
}

func (n *NotificationService) lookupTicket(ctx context.Context, ticketID string) *domain.Ticket {
	if n.tickets == nil || ticketID == "" {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		n.logger.Warn("notification ticket lookup failed", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil
	}
	return ticket
}

func (n *NotificationService) emailUser(ctx context.Context, userID string, event events.Event, subject, body string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || n.users == nil {
		return
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("notification recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if n.mailer == nil {
		n.logger.Debug("sendEmailNotificationStub",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("to", user.Email),
			zap.String("event_type", string(event.Type)))
		return
	}
	if err := n.mailer.Send(user.Email, subject, body); err != nil {
		n.logger.Warn("email notification failed",
			zap.String("to", user.Email),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func ticketLink(ticketID string) string {
	if ticketID == "" {
		return ""
	}
	return "/tickets/" + ticketID
}
