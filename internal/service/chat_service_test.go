package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newChat(f *fixture) *ChatService {
	return NewChatService(ChatDependencies{TicketRepo: f.repos.Tickets, ChatRepo: f.repos.Chat, Clock: f.clock.Now})
}

func TestChatConversationPerTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := newChat(f)
	ticket := f.createTicket(t)

	first, err := chat.ConversationForTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	again, err := chat.ConversationForTicket(ctx, bob, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, ticket.ID, first.TicketID)

	_, err = chat.ConversationForTicket(ctx, carol, ticket.ID)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))

	_, err = chat.ConversationForTicket(ctx, alice, "missing")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))
}

func TestChatMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := newChat(f)
	ticket := f.createTicket(t)

	_, err := chat.PostMessage(ctx, alice, ticket.ID, "  Tray 2 again  ")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	reply, err := chat.PostMessage(ctx, bob, ticket.ID, "On my way")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = chat.PostMessage(ctx, alice, ticket.ID, "Thanks")
	require.NoError(t, err)

	thread, err := chat.Messages(ctx, alice, ticket.ID, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, thread.TotalCount)
	assert.Equal(t, 100, thread.Page.Size)
	require.Len(t, thread.Messages, 3)
	assert.Equal(t, "Tray 2 again", thread.Messages[0].Body)
	assert.Equal(t, reply.ID, thread.Messages[1].ID)

	paged, err := chat.Messages(ctx, bob, ticket.ID, repository.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, paged.Messages, 1)
	assert.Equal(t, "Thanks", paged.Messages[0].Body)

	_, err = chat.Messages(ctx, carol, ticket.ID, repository.Page{})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))
	_, err = chat.PostMessage(ctx, carol, ticket.ID, "hello")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))
}

func TestChatMessageValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := newChat(f)
	ticket := f.createTicket(t)

	_, err := chat.PostMessage(ctx, alice, ticket.ID, "   ")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	_, err = chat.PostMessage(ctx, alice, ticket.ID, strings.Repeat("x", maxChatMessageRune+1))
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
}

func TestUserConversations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := newChat(f)
	older := f.createTicket(t)
	newer := f.createTicket(t)

	_, err := chat.PostMessage(ctx, alice, older.ID, "first")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = chat.PostMessage(ctx, alice, newer.ID, "second")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = chat.PostMessage(ctx, bob, older.ID, "latest")
	require.NoError(t, err)

	mine, err := chat.UserConversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, older.ID, mine[0].Conversation.TicketID)
	require.NotNil(t, mine[0].LastMessage)
	assert.Equal(t, "latest", mine[0].LastMessage.Body)

	bobs, err := chat.UserConversations(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	// Opening a conversation without posting does not join it.
	admin := domain.Principal{UserID: "admin", Role: domain.RoleAdmin}
	_, err = chat.ConversationForTicket(ctx, admin, newer.ID)
	require.NoError(t, err)
	admins, err := chat.UserConversations(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}
