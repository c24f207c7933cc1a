package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/codesellers/backend/internal/query"
)

type SalesHandler struct {
	queryEngine *query.Engine
}

func NewSalesHandler(queryEngine *query.Engine) *SalesHandler {
	return &SalesHandler{queryEngine: queryEngine}
}

func (h *SalesHandler) GetRegions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"regions": h.queryEngine.Regions(),
	})
}

func (h *SalesHandler) GetRegionSales(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("region"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid region"})
	}

	rs, err := h.queryEngine.RegionSummary(name)
	if err != nil {
		return respondError(c, err, "Failed to summarize region")
	}

	return c.JSON(fiber.Map{
		"region":  rs.Region,
		"summary": rs.Summary,
		"records": rs.Records,
	})
}
