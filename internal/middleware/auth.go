package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"redirector/internal/apperr"
)

// AdminAuth guards the admin API with a static token.
type AdminAuth struct {
	token []byte
}

// NewAdminAuth creates a new admin auth middleware instance.
func NewAdminAuth(token string) *AdminAuth {
	return &AdminAuth{token: []byte(token)}
}

// RequireToken rejects requests whose Authorization header is not exactly the
// configured token. An empty configured token rejects everything.
func (m *AdminAuth) RequireToken(c fiber.Ctx) error {
	got := []byte(c.Get(fiber.HeaderAuthorization))
	if len(m.token) == 0 || subtle.ConstantTimeCompare(got, m.token) != 1 {
		return apperr.Unauthorized("invalid or missing admin token")
	}
	return c.Next()
}
