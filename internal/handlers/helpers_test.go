package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"redirector/internal/apperr"
	"redirector/internal/models"
)

const (
	browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	larkUA    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4450.0 Safari/537.36"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return c.Status(apperr.KindOf(err).Status()).JSON(fiber.Map{"errmsg": err.Error()})
		},
	})
}

func doRequest(t *testing.T, app *fiber.App, method, target, ua string, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	// An explicitly empty header keeps net/http from adding its default agent.
	req.Header.Set(fiber.HeaderUserAgent, ua)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func decodeJSON[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (s failingStore) GetMappingByPath(context.Context, string) (*models.Mapping, error) {
	return nil, s.err
}

func (s failingStore) ListMappings(context.Context) ([]models.Mapping, error) {
	return nil, s.err
}

func (s failingStore) CreateMapping(context.Context, models.MappingInput) (*models.Mapping, error) {
	return nil, s.err
}

func (s failingStore) UpdateMapping(context.Context, int64, models.MappingInput) (*models.Mapping, error) {
	return nil, s.err
}

func (s failingStore) DeleteMapping(context.Context, int64) error {
	return s.err
}

func (s failingStore) Ping(context.Context) error {
	return s.err
}
