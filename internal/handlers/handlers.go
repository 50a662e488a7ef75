// Package handlers implements the HTTP handlers for path resolution, the
// admin API and health probes.
package handlers

import (
	"context"
	"errors"

	"redirector/internal/apperr"
	"redirector/internal/db"
	"redirector/internal/models"
)

// MappingReader resolves a path to its mapping.
type MappingReader interface {
	GetMappingByPath(ctx context.Context, path string) (*models.Mapping, error)
}

// MappingWriter is the store surface used by the admin API.
type MappingWriter interface {
	ListMappings(ctx context.Context) ([]models.Mapping, error)
	CreateMapping(ctx context.Context, in models.MappingInput) (*models.Mapping, error)
	UpdateMapping(ctx context.Context, id int64, in models.MappingInput) (*models.Mapping, error)
	DeleteMapping(ctx context.Context, id int64) error
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HitRecorder queues a detached hit increment. It must not block.
type HitRecorder interface {
	Submit(id int64) bool
}

// storeError translates a store error into an application error.
func storeError(msg string, err error) error {
	if errors.Is(err, db.ErrMappingNotFound) {
		return apperr.NotFound("mapping not found", err)
	}
	return apperr.Storage(msg, err)
}
