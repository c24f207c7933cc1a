package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/internal/storage/sqlite"
	"github.com/codesellers/backend/pkg/logger"
)

// respondError maps domain errors onto status codes. Unexpected errors are
// logged and reported with the generic message only.
func respondError(c *fiber.Ctx, err error, generic string) error {
	switch {
	case errors.Is(err, sales.ErrRegionNotFound), errors.Is(err, sqlite.ErrChatNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, sales.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Error(generic, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": generic})
}
