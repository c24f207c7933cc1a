package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/query"
	"github.com/codesellers/backend/pkg/logger"
)

type QueryHandler struct {
	queryEngine *query.Engine
	defaultK    int
	maxK        int
}

func NewQueryHandler(queryEngine *query.Engine, defaultK, maxK int) *QueryHandler {
	return &QueryHandler{
		queryEngine: queryEngine,
		defaultK:    defaultK,
		maxK:        maxK,
	}
}

func (h *QueryHandler) resolveK(k *int) int {
	if k == nil {
		return h.defaultK
	}
	return clampK(*k, h.maxK)
}

// clampK caps k at maxK when a cap is configured. Non-positive k is passed
// through so the engine reports it.
func clampK(k, maxK int) int {
	if maxK > 0 && k > maxK {
		return maxK
	}
	return k
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
		ChatID  string `json:"chat_id"`
		K       *int   `json:"k"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	k := h.resolveK(req.K)
	if k <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "k must be positive",
		})
	}

	response, err := h.queryEngine.Ask(c.UserContext(), query.AskRequest{
		ChatID:  req.ChatID,
		Message: req.Message,
		K:       k,
	})
	if err != nil {
		return respondError(c, err, "Failed to process query")
	}

	return c.JSON(response)
}

func (h *QueryHandler) HandleContext(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
		K     *int   `json:"k"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	contextBlock, err := h.queryEngine.RankedContext(req.Query, h.resolveK(req.K))
	if err != nil {
		return respondError(c, err, "Failed to build context")
	}

	return c.JSON(fiber.Map{
		"context": contextBlock,
	})
}
