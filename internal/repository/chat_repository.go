package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ChatRepository persists ticket conversations, their messages and participants.
type ChatRepository interface {
	GetConversationByTicket(ctx context.Context, ticketID string) (*domain.ChatConversation, error)
	// CreateConversation returns ErrDuplicate when the ticket already has one.
	CreateConversation(ctx context.Context, conversation *domain.ChatConversation) error
	// AddMessage stores the message and records the sender as a participant.
	AddMessage(ctx context.Context, message *domain.ChatMessage) error
	// ListMessages returns one page oldest first plus the total message count.
	ListMessages(ctx context.Context, conversationID string, page Page) ([]domain.ChatMessage, int, error)
	// ListConversationsByUser returns the user's conversations, most recent activity first.
	ListConversationsByUser(ctx context.Context, userID string) ([]domain.ChatConversationSummary, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository builds the repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

func (r *chatRepository) GetConversationByTicket(ctx context.Context, ticketID string) (*domain.ChatConversation, error) {
	var conv domain.ChatConversation
	err := r.pool.QueryRow(ctx,
		`SELECT id, ticket_id, created_at FROM chat_conversations WHERE ticket_id=$1`, ticketID,
	).Scan(&conv.ID, &conv.TicketID, &conv.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &conv, nil
}

func (r *chatRepository) CreateConversation(ctx context.Context, conv *domain.ChatConversation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_conversations (id, ticket_id, created_at) VALUES ($1,$2,$3)`,
		conv.ID, conv.TicketID, conv.CreatedAt)
	return mapPgError(err)
}

func (r *chatRepository) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `
        INSERT INTO chat_messages (id, conversation_id, sender_id, body, created_at)
        VALUES ($1,$2,$3,$4,$5)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt,
	); err != nil {
		return mapPgError(err)
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO chat_participants (conversation_id, user_id, joined_at)
        VALUES ($1,$2,$3) ON CONFLICT (conversation_id, user_id) DO NOTHING`,
		msg.ConversationID, msg.SenderID, msg.CreatedAt,
	); err != nil {
		return mapPgError(err)
	}
	return mapPgError(tx.Commit(ctx))
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID string, page Page) ([]domain.ChatMessage, int, error) {
	page = page.Normalize()
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE conversation_id=$1`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, conversation_id, sender_id, body, created_at
        FROM chat_messages WHERE conversation_id=$1
        ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`,
		conversationID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.ChatMessage{}
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, m)
	}
	return result, total, rows.Err()
}

func (r *chatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]domain.ChatConversationSummary, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.created_at, m.id, m.sender_id, m.body, m.created_at
        FROM chat_participants p
        JOIN chat_conversations c ON c.id = p.conversation_id
        LEFT JOIN LATERAL (
            SELECT id, sender_id, body, created_at FROM chat_messages
            WHERE conversation_id = c.id ORDER BY created_at DESC LIMIT 1
        ) m ON TRUE
        WHERE p.user_id=$1
        ORDER BY COALESCE(m.created_at, c.created_at) DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ChatConversationSummary{}
	for rows.Next() {
		var (
			summary             domain.ChatConversationSummary
			msgID, sender, body *string
			sentAt              *time.Time
		)
		if err := rows.Scan(
			&summary.Conversation.ID,
			&summary.Conversation.TicketID,
			&summary.Conversation.CreatedAt,
			&msgID, &sender, &body, &sentAt,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			summary.LastMessage = &domain.ChatMessage{
				ID:             *msgID,
				ConversationID: summary.Conversation.ID,
				SenderID:       *sender,
				Body:           *body,
				CreatedAt:      *sentAt,
			}
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}
