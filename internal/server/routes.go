package server

import (
	"github.com/gofiber/fiber/v3"

	"redirector/internal/apperr"
	"redirector/internal/botdetect"
	"redirector/internal/db"
	"redirector/internal/handlers"
	"redirector/internal/middleware"
)

// RegisterRoutes registers all application routes. The catch-all redirect
// route must stay last.
func (s *Server) RegisterRoutes(store db.Store, hits handlers.HitRecorder, detector botdetect.Detector) {
	// Initialize middleware
	adminAuth := middleware.NewAdminAuth(s.Cfg.Admin.Token)

	// Initialize handlers
	redirectHandler := handlers.NewRedirectHandler(store, detector, hits, s.Cfg.Redirect.FallbackURL, s.logger)
	adminHandler := handlers.NewAdminHandler(store, s.logger)
	probeHandler := handlers.NewProbeHandler(store, s.logger)

	s.App.All("/favicon.ico", redirectHandler.Favicon)

	// Probes are unauthenticated
	admin := s.App.Group("/admin")
	admin.Get("/healthz", probeHandler.Liveness)
	admin.Get("/readyz", probeHandler.Readiness)

	// Admin API - token required
	api := admin.Group("/api", adminAuth.RequireToken)
	api.Get("/urls", adminHandler.List)
	api.Post("/urls", adminHandler.Create)
	api.Put("/urls/:id", adminHandler.Update)
	api.Delete("/urls/:id", adminHandler.Delete)

	// Nothing under /admin reaches the redirect engine
	s.App.All("/admin", adminNotFound)
	admin.All("/*", adminNotFound)

	// Redirect routes - must be last (catch-all for paths)
	s.App.All("/*", redirectHandler.Handle)
}

func adminNotFound(c fiber.Ctx) error {
	return apperr.NotFound("no such admin route", nil)
}
