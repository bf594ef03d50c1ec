package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	commentPreviewLength = 120
	maxAttachmentBytes   = 25 << 20
)

// CommentService appends comments and attachment records to tickets.
type CommentService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	renderer    *MarkdownRenderer
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// CommentDependencies bundles collaborators.
type CommentDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Renderer       *MarkdownRenderer
	Dispatcher     events.Dispatcher
	Clock          func() time.Time
}

// AttachmentInput describes an already stored file.
type AttachmentInput struct {
	FileName    string
	FilePath    string
	ContentType string
	SizeBytes   int64
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewMarkdownRenderer()
	}
	return &CommentService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		renderer:    renderer,
		dispatcher:  deps.Dispatcher,
		now:         clock,
	}
}

// AddComment appends a comment. Only staff may post internal notes.
func (s *CommentService) AddComment(ctx context.Context, principal domain.Principal, ticketID, content string, internal bool) (*domain.Comment, error) {
	ticket, err := s.visibleTicket(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorutil.NewValidationError("comment content is required", map[string]any{"content": "required"})
	}
	if internal && !principal.Role.IsStaffOrAdmin() {
		return nil, errorutil.NewForbidden("only staff can add internal notes")
	}

	rendered, err := s.renderer.Render(content)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	comment := &domain.Comment{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		AuthorID:   principal.UserID,
		Content:    content,
		HTML:       rendered,
		IsInternal: internal,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "comment", map[string]any{"ticket_id": ticketID})
	}

	if s.dispatcher != nil {
		actor := principal.UserID
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventTicketCommentAdded,
			TicketID:     ticket.ID,
			TicketNumber: ticket.Number,
			ActorID:      &actor,
			Timestamp:    comment.CreatedAt,
			Payload: events.TicketCommentAddedPayload{
				CommentID:   comment.ID,
				AuthorID:    comment.AuthorID,
				IsInternal:  comment.IsInternal,
				BodyPreview: preview(comment.Content, commentPreviewLength),
			},
		})
	}
	return comment, nil
}

// ListComments returns comments oldest first; end users never see internal notes.
func (s *CommentService) ListComments(ctx context.Context, principal domain.Principal, ticketID string) ([]domain.Comment, error) {
	if _, err := s.visibleTicket(ctx, principal, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID, principal.Role.IsStaffOrAdmin())
	if err != nil {
		return nil, storeError(err, "comment", nil)
	}
	return comments, nil
}

// AddAttachment records metadata for a file linked to the ticket.
func (s *CommentService) AddAttachment(ctx context.Context, principal domain.Principal, ticketID string, input AttachmentInput) (*domain.Attachment, error) {
	ticket, err := s.visibleTicket(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.FileName) == "" {
		details["file_name"] = "required"
	}
	if strings.TrimSpace(input.FilePath) == "" {
		details["file_path"] = "required"
	}
	if input.SizeBytes < 0 || input.SizeBytes > maxAttachmentBytes {
		details["size_bytes"] = "out of range"
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid attachment", details)
	}

	attachment := &domain.Attachment{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		UploadedByID: principal.UserID,
		FileName:     strings.TrimSpace(input.FileName),
		FilePath:     strings.TrimSpace(input.FilePath),
		ContentType:  input.ContentType,
		SizeBytes:    input.SizeBytes,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, storeError(err, "attachment", map[string]any{"ticket_id": ticketID})
	}
	return attachment, nil
}

func (s *CommentService) visibleTicket(ctx context.Context, principal domain.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !CanViewTicket(principal, ticket) {
		return nil, errorutil.NewForbidden("access denied")
	}
	return ticket, nil
}

func preview(body string, max int) string {
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	return string(runes[:max]) + "..."
}
