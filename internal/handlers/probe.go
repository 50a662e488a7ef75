package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"redirector/internal/db"
)

// ProbeHandler serves the liveness and readiness endpoints.
type ProbeHandler struct {
	store  Pinger
	kind   string
	logger *zap.Logger
}

// NewProbeHandler creates a probe handler reporting on store.
func NewProbeHandler(store Pinger, logger *zap.Logger) *ProbeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProbeHandler{
		store:  store,
		kind:   storeKind(store),
		logger: logger,
	}
}

// storeKind names the backend behind store for readiness responses.
func storeKind(store Pinger) string {
	switch store.(type) {
	case *db.Memory:
		return "memory"
	case *db.DB:
		return "postgres"
	default:
		return "unknown"
	}
}

// Liveness returns 200 OK while the process is serving.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness pings the mapping store. A failed ping is logged and answered
// with 503 so the instance is taken out of rotation.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		h.logger.Warn("mapping store not ready", zap.String("store", h.kind), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"store":  h.kind,
			"error":  "mapping store unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"store":  h.kind,
	})
}
