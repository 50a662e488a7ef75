package server

import (
	"errors"
	"net"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/utils/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"redirector/internal/apperr"
	"redirector/internal/config"
	"redirector/internal/middleware"
)

// ErrorResponse is the JSON envelope returned for every failed request.
type ErrorResponse struct {
	ErrMsg string `json:"errmsg"`
	Detail string `json:"detail"`
}

// Server wraps the Fiber app and configuration.
type Server struct {
	App    *fiber.App
	Cfg    *config.Config
	logger *zap.Logger
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:       "redirector",
		CaseSensitive: true,
		StrictRouting: true,
		ErrorHandler:  ErrorHandler(logger),
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New())

	return &Server{
		App:    app,
		Cfg:    cfg,
		logger: logger,
	}
}

// ErrorHandler renders errors as an ErrorResponse. Application errors carry
// their own status; routing errors from fiber keep theirs; anything else is a 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var appErr *apperr.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Status()
			message = appErr.Message
			if message == "" {
				message = appErr.Kind.String()
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", utils.CopyString(c.Path())),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			ErrMsg: message,
			Detail: err.Error(),
		})
	}
}

// Start listens on the configured unix socket, or on host:port when no socket
// is set. It blocks until the server stops.
func (s *Server) Start() error {
	if s.Cfg.Server.Socket != "" {
		if err := os.Remove(s.Cfg.Server.Socket); err != nil && !os.IsNotExist(err) {
			return err
		}
		ln, err := net.Listen("unix", s.Cfg.Server.Socket)
		if err != nil {
			return err
		}
		s.logger.Info("listening on unix socket", zap.String("socket", s.Cfg.Server.Socket))
		return s.App.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}

	addr := s.Cfg.Server.Addr()
	s.logger.Info("listening", zap.String("addr", addr))
	return s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
