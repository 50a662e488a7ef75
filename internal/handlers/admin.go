package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"redirector/internal/apperr"
	"redirector/internal/models"
)

// AdminHandler handles mapping CRUD via JSON API.
type AdminHandler struct {
	store  MappingWriter
	logger *zap.Logger
}

// NewAdminHandler creates a new admin API handler.
func NewAdminHandler(store MappingWriter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{store: store, logger: logger}
}

// List returns every mapping ordered by id.
func (h *AdminHandler) List(c fiber.Ctx) error {
	mappings, err := h.store.ListMappings(c.Context())
	if err != nil {
		return storeError("failed to list mappings", err)
	}
	return c.JSON(mappings)
}

// Create stores a new mapping and returns it with its assigned id.
func (h *AdminHandler) Create(c fiber.Ctx) error {
	in, err := decodeInput(c)
	if err != nil {
		return err
	}

	m, err := h.store.CreateMapping(c.Context(), in)
	if err != nil {
		return storeError("failed to create mapping", err)
	}

	h.logger.Info("mapping created", zap.Int64("mapping_id", m.ID), zap.String("path", m.Path))
	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update replaces the editable fields of a mapping.
func (h *AdminHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := decodeInput(c)
	if err != nil {
		return err
	}

	m, err := h.store.UpdateMapping(c.Context(), id, in)
	if err != nil {
		return storeError("failed to update mapping", err)
	}

	h.logger.Info("mapping updated", zap.Int64("mapping_id", m.ID), zap.String("path", m.Path))
	return c.JSON(m)
}

// Delete removes a mapping. Deleting an unknown id succeeds.
func (h *AdminHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.store.DeleteMapping(c.Context(), id); err != nil {
		return storeError("failed to delete mapping", err)
	}

	h.logger.Info("mapping deleted", zap.Int64("mapping_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperr.ClientInput("invalid mapping id", err)
	}
	return id, nil
}

func decodeInput(c fiber.Ctx) (models.MappingInput, error) {
	var in models.MappingInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return in, apperr.ClientInput("invalid request body", err)
	}
	return in, nil
}
