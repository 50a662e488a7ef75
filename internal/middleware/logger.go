package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/utils/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs one line per request. Handler errors are rendered
// through the app's error handler first so the logged status is final.
// Request strings are copied since fiber reuses their memory.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := zapcore.InfoLevel
		if status >= fiber.StatusInternalServerError {
			level = zapcore.ErrorLevel
		}

		logger.Log(level, "request",
			zap.String("method", c.Method()),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestid.FromContext(c)),
		)
		return nil
	}
}
