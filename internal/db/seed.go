package db

import (
	"context"
	"errors"
	"fmt"

	"redirector/internal/models"
)

// SeedMappings inserts the given mappings, skipping any whose path already
// resolves. It returns the number of mappings inserted.
func SeedMappings(ctx context.Context, store Store, seeds []models.MappingInput) (int, error) {
	inserted := 0
	for _, seed := range seeds {
		_, err := store.GetMappingByPath(ctx, seed.Path)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrMappingNotFound) {
			return inserted, fmt.Errorf("failed to check seed %s: %w", seed.Path, err)
		}

		if _, err := store.CreateMapping(ctx, seed); err != nil {
			return inserted, fmt.Errorf("failed to seed mapping %s: %w", seed.Path, err)
		}
		inserted++
	}
	return inserted, nil
}
