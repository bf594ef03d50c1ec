package dto

import "time"

// CreateCommentRequest payload; content is markdown.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required,max=10000"`
	IsInternal bool   `json:"is_internal"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	HTML       string    `json:"html"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateAttachmentRequest records metadata for an already stored file.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	FilePath    string `json:"file_path" validate:"required"`
	ContentType string `json:"content_type" validate:"omitempty,max=127"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	FilePath     string    `json:"file_path"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID string    `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCountResponse carries the inbox badge count.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// PostChatMessageRequest payload.
type PostChatMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// ChatMessageResponse is one chat line.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatThreadResponse is a page of a ticket conversation.
type ChatThreadResponse struct {
	ConversationID string                `json:"conversation_id"`
	TicketID       string                `json:"ticket_id"`
	Messages       []ChatMessageResponse `json:"messages"`
	TotalCount     int                   `json:"total_count"`
	PageNumber     int                   `json:"page_number"`
	PageSize       int                   `json:"page_size"`
}

// ChatConversationResponse summarises a conversation for the chat list.
type ChatConversationResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticket_id"`
	CreatedAt   time.Time            `json:"created_at"`
	LastMessage *ChatMessageResponse `json:"last_message"`
}
