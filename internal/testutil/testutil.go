// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"redirector/internal/config"
	"redirector/internal/db"
	"redirector/internal/models"
)

// TestToken is the admin token used by NewTestConfig.
const TestToken = "secret123"

// TestFallbackURL is the fallback URL used by NewTestConfig.
const TestFallbackURL = "https://fallback.example/"

// TestDB connects to TEST_DATABASE_URL, runs migrations and registers cleanup.
// The test is skipped when the variable is unset.
func TestDB(t *testing.T) *db.DB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString, 4)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_, _ = database.Pool.Exec(ctx, "DELETE FROM urls")
		database.Close()
	})

	return database
}

// NewTestConfig returns a valid configuration backed by the memory store.
func NewTestConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{URL: db.MemoryScheme},
		Admin:    config.AdminConfig{Token: TestToken},
		Redirect: config.RedirectConfig{FallbackURL: TestFallbackURL},
		Hits:     config.HitsConfig{Workers: 1, QueueSize: 64, Timeout: time.Second},
	}
}

// CreateTestMapping inserts a mapping and returns it.
func CreateTestMapping(t *testing.T, store db.Store, in models.MappingInput) *models.Mapping {
	t.Helper()

	m, err := store.CreateMapping(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create test mapping: %v", err)
	}
	return m
}

// Hits returns the stored hit count for path, or -1 if it does not resolve.
func Hits(t *testing.T, store db.Store, path string) int64 {
	t.Helper()

	m, err := store.GetMappingByPath(context.Background(), path)
	if err != nil {
		return -1
	}
	return m.Hits
}

// RecordingHits records submitted ids without touching a store.
type RecordingHits struct {
	mu  sync.Mutex
	ids []int64
}

// Submit records id.
func (r *RecordingHits) Submit(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return true
}

// IDs returns a copy of the recorded ids.
func (r *RecordingHits) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}
