package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codesellers/backend/internal/dataset"
	"github.com/codesellers/backend/internal/ingestion"
)

type DatasetHandler struct {
	store  *dataset.Store
	loader *dataset.Loader
}

func NewDatasetHandler(store *dataset.Store, loader *dataset.Loader) *DatasetHandler {
	return &DatasetHandler{store: store, loader: loader}
}

func (h *DatasetHandler) Reload(c *fiber.Ctx) error {
	corpus, err := h.loader.Reload(c.UserContext())
	if err != nil {
		var serr *ingestion.StructuralError
		if errors.As(err, &serr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":           "Dataset is missing required columns",
				"missing_columns": serr.Missing,
			})
		}
		return respondError(c, err, "Failed to reload dataset")
	}

	return c.JSON(corpus.Stats())
}

func (h *DatasetHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.store.Snapshot().Stats())
}

func (h *DatasetHandler) Skipped(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"skipped": h.store.Snapshot().Skipped,
	})
}
