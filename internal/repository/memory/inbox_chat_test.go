package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func TestNotificationsPerUser(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Notifications.Create(ctx, &domain.Notification{
			UserID:    "alice",
			Subject:   "update",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repos.Notifications.Create(ctx, &domain.Notification{UserID: "bob", Subject: "other", CreatedAt: baseTime}))
	assert.ErrorIs(t, repos.Notifications.Create(ctx, &domain.Notification{UserID: "ghost"}), repository.ErrInvalidReference)

	latest, err := repos.Notifications.ListByUser(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].CreatedAt.After(latest[1].CreatedAt))

	unread, err := repos.Notifications.CountUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	require.NoError(t, repos.Notifications.MarkRead(ctx, latest[0].ID, "alice"))
	assert.ErrorIs(t, repos.Notifications.MarkRead(ctx, latest[1].ID, "bob"), repository.ErrNotFound)

	unread, err = repos.Notifications.CountUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
}

func TestChatConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(t)

	ticket := newTicket("INC20250310001")
	require.NoError(t, repos.Tickets.Create(ctx, ticket))

	_, err := repos.Chat.GetConversationByTicket(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	conv := &domain.ChatConversation{TicketID: ticket.ID, CreatedAt: baseTime}
	require.NoError(t, repos.Chat.CreateConversation(ctx, conv))
	assert.ErrorIs(t, repos.Chat.CreateConversation(ctx, &domain.ChatConversation{TicketID: ticket.ID}), repository.ErrDuplicate)
	assert.ErrorIs(t, repos.Chat.CreateConversation(ctx, &domain.ChatConversation{TicketID: "missing"}), repository.ErrInvalidReference)

	for i, sender := range []string{"alice", "bob", "alice"} {
		require.NoError(t, repos.Chat.AddMessage(ctx, &domain.ChatMessage{
			ConversationID: conv.ID,
			SenderID:       sender,
			Body:           "line",
			CreatedAt:      baseTime.Add(time.Duration(i+1) * time.Minute),
		}))
	}
	assert.ErrorIs(t, repos.Chat.AddMessage(ctx, &domain.ChatMessage{ConversationID: conv.ID, SenderID: "ghost"}), repository.ErrInvalidReference)

	page, total, err := repos.Chat.ListMessages(ctx, conv.ID, repository.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "alice", page[0].SenderID)

	summaries, err := repos.Chat.ListConversationsByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, baseTime.Add(3*time.Minute), summaries[0].LastMessage.CreatedAt)

	require.NoError(t, repos.Tickets.Delete(ctx, ticket.ID))
	_, err = repos.Chat.GetConversationByTicket(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	summaries, err = repos.Chat.ListConversationsByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
