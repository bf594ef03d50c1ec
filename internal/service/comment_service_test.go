package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var (
	alice = domain.Principal{UserID: "alice", Role: domain.RoleUser, DepartmentID: strPtr("it")}
	bob   = domain.Principal{UserID: "bob", Role: domain.RoleStaff, DepartmentID: strPtr("it"), TeamID: strPtr("desk")}
	carol = domain.Principal{UserID: "carol", Role: domain.RoleStaff, DepartmentID: strPtr("hr")}
)

func TestAddCommentRendersSanitizedMarkdown(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	comment, err := f.comments.AddComment(context.Background(), alice, ticket.ID,
		"**Still** jammed <script>alert(1)</script>", false)
	require.NoError(t, err)
	assert.Equal(t, "**Still** jammed <script>alert(1)</script>", comment.Content)
	assert.Contains(t, comment.HTML, "<strong>Still</strong>")
	assert.NotContains(t, comment.HTML, "<script>")

	last := f.events.Events()[len(f.events.Events())-1]
	assert.Equal(t, events.EventTicketCommentAdded, last.Type)
	payload := last.Payload.(events.TicketCommentAddedPayload)
	assert.False(t, payload.IsInternal)
	assert.Equal(t, comment.ID, payload.CommentID)
}

func TestInternalNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.comments.AddComment(ctx, alice, ticket.ID, "let me see", true)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))

	_, err = f.comments.AddComment(ctx, bob, ticket.ID, "public reply", false)
	require.NoError(t, err)
	_, err = f.comments.AddComment(ctx, bob, ticket.ID, "toner supplier is late", true)
	require.NoError(t, err)

	forUser, err := f.comments.ListComments(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, forUser, 1)
	assert.Equal(t, "public reply", forUser[0].Content)

	forStaff, err := f.comments.ListComments(ctx, bob, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, forStaff, 2)
}

func TestCommentAccessAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.comments.AddComment(ctx, carol, ticket.ID, "drive-by", false)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))

	_, err = f.comments.AddComment(ctx, alice, ticket.ID, "   ", false)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	_, err = f.comments.ListComments(ctx, alice, "missing")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))
}

func TestAddAttachment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	att, err := f.comments.AddAttachment(ctx, alice, ticket.ID, AttachmentInput{
		FileName:    "jam.jpg",
		FilePath:    "uploads/2025/03/jam.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", att.UploadedByID)

	details, err := f.lifecycle.Details(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AttachmentCount)
	require.Len(t, details.Attachments, 1)
	assert.Equal(t, "jam.jpg", details.Attachments[0].FileName)

	_, err = f.comments.AddAttachment(ctx, alice, ticket.ID, AttachmentInput{FileName: "huge.iso", FilePath: "x", SizeBytes: 26 << 20})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
}
