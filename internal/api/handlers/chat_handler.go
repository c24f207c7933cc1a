package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codesellers/backend/internal/storage/models"
)

type ChatRepository interface {
	ListChats(limit int) ([]models.Chat, error)
	ListMessages(chatID string) ([]models.Message, error)
	DeleteChat(id string) error
}

type ChatHandler struct {
	chats ChatRepository
}

func NewChatHandler(chats ChatRepository) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
		})
	}

	chats, err := h.chats.ListChats(limit)
	if err != nil {
		return respondError(c, err, "Failed to list chats")
	}

	return c.JSON(fiber.Map{"chats": chats})
}

func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	messages, err := h.chats.ListMessages(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to list messages")
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	if err := h.chats.DeleteChat(c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete chat")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
