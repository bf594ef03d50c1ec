package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ChatHandler serves per-ticket conversations.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Thread GET /tickets/:id/chat?page=&page_size=.
func (h *ChatHandler) Thread(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	pageNumber, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	pageSize, err := intQuery(c, "page_size")
	if err != nil {
		return err
	}
	thread, err := h.chat.Messages(c.UserContext(), principal, c.Params("id"), repository.Page{Number: pageNumber, Size: pageSize})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatThreadResponse(thread)})
}

// Post POST /tickets/:id/chat.
func (h *ChatHandler) Post(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PostChatMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.chat.PostMessage(c.UserContext(), principal, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": chatMessageResponse(msg)})
}

// Conversations GET /chat/conversations.
func (h *ChatHandler) Conversations(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.chat.UserConversations(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatConversationResponses(items)})
}
