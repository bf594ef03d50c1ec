package domain

import "time"

// ChatConversation is the live conversation attached to one ticket.
type ChatConversation struct {
	ID        string
	TicketID  string
	CreatedAt time.Time
}

// ChatMessage is a single chat line. Senders become participants of the conversation.
type ChatMessage struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	CreatedAt      time.Time
}

// ChatConversationSummary pairs a conversation with its latest message, if any.
type ChatConversationSummary struct {
	Conversation ChatConversation
	LastMessage  *ChatMessage
}
