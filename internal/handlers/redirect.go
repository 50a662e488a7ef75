package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"
	"go.uber.org/zap"

	"redirector/internal/apperr"
	"redirector/internal/botdetect"
	"redirector/internal/db"
	"redirector/internal/metrics"
)

// RedirectHandler resolves request paths to mappings.
type RedirectHandler struct {
	store    MappingReader
	detector botdetect.Detector
	hits     HitRecorder
	fallback string
	logger   *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(store MappingReader, detector botdetect.Detector, hits HitRecorder, fallbackURL string, logger *zap.Logger) *RedirectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		store:    store,
		detector: detector,
		hits:     hits,
		fallback: fallbackURL,
		logger:   logger,
	}
}

// Handle serves any path that is not claimed by another route.
//
// Unknown paths redirect to the fallback URL whatever the client. Preview
// crawlers get an HTML card built from the mapping and are not counted. Every
// other client is redirected to the mapping's destination and a hit is queued.
func (h *RedirectHandler) Handle(c fiber.Ctx) error {
	ua := utils.CopyString(c.Get(fiber.HeaderUserAgent))
	if ua == "" {
		return apperr.ClientInput("missing User-Agent header", nil)
	}

	path := utils.CopyString(c.Path())
	h.logger.Debug("resolving path", zap.String("path", path), zap.String("user_agent", ua))

	m, err := h.store.GetMappingByPath(c.Context(), path)
	if errors.Is(err, db.ErrMappingNotFound) {
		h.logger.Debug("no mapping, redirecting to fallback", zap.String("path", path))
		metrics.ObserveResolution(metrics.OutcomeFallback)
		return redirect(c, h.fallback)
	}
	if err != nil {
		return apperr.Storage("failed to look up mapping", err)
	}

	if h.detector.IsPreviewCrawler(ua) {
		h.logger.Debug("preview crawler detected", zap.Int64("mapping_id", m.ID))
		metrics.ObserveResolution(metrics.OutcomePreview)
		return renderPreview(c, m)
	}

	h.hits.Submit(m.ID)
	metrics.ObserveResolution(metrics.OutcomeRedirect)
	return redirect(c, m.Redirect)
}

// Favicon answers browser favicon requests with an empty body.
func (h *RedirectHandler) Favicon(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).Send(nil)
}

func redirect(c fiber.Ctx, to string) error {
	return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(to)
}
