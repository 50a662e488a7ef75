package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"redirector/internal/models"
)

// mappingColumns is the standard column list for mapping queries.
const mappingColumns = `id, path, title, body, icon, redirect, hits, created_at, updated_at`

// scanMapping scans a row into a Mapping struct.
func scanMapping(row pgx.Row) (*models.Mapping, error) {
	var m models.Mapping
	err := row.Scan(
		&m.ID,
		&m.Path,
		&m.Title,
		&m.Body,
		&m.Icon,
		&m.Redirect,
		&m.Hits,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMappingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// scanMappings scans multiple rows into a slice of Mappings.
func scanMappings(rows pgx.Rows) ([]models.Mapping, error) {
	defer rows.Close()

	mappings := []models.Mapping{}
	for rows.Next() {
		var m models.Mapping
		if err := rows.Scan(
			&m.ID,
			&m.Path,
			&m.Title,
			&m.Body,
			&m.Icon,
			&m.Redirect,
			&m.Hits,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

// GetMappingByPath retrieves the mapping for an exact path.
// The path column is not unique; the lowest id wins.
func (d *DB) GetMappingByPath(ctx context.Context, path string) (*models.Mapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM urls WHERE path = $1 ORDER BY id ASC LIMIT 1`
	m, err := scanMapping(d.Pool.QueryRow(ctx, query, path))
	if err != nil && !errors.Is(err, ErrMappingNotFound) {
		return nil, fmt.Errorf("failed to fetch mapping by path: %w", err)
	}
	return m, err
}

// ListMappings retrieves all mappings ordered by id.
func (d *DB) ListMappings(ctx context.Context) ([]models.Mapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM urls ORDER BY id ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	mappings, err := scanMappings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}

// CreateMapping inserts a new mapping. The database assigns id, hits and
// both timestamps.
func (d *DB) CreateMapping(ctx context.Context, in models.MappingInput) (*models.Mapping, error) {
	query := `
		INSERT INTO urls (path, title, body, icon, redirect)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + mappingColumns

	m, err := scanMapping(d.Pool.QueryRow(ctx, query,
		in.Path,
		in.Title,
		in.Body,
		in.Icon,
		in.Redirect,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert mapping: %w", err)
	}
	return m, nil
}

// UpdateMapping replaces the editable fields of a mapping and refreshes
// updated_at. Hits and created_at are left untouched.
func (d *DB) UpdateMapping(ctx context.Context, id int64, in models.MappingInput) (*models.Mapping, error) {
	query := `
		UPDATE urls
		SET path = $1, title = $2, body = $3, icon = $4, redirect = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + mappingColumns

	m, err := scanMapping(d.Pool.QueryRow(ctx, query,
		in.Path,
		in.Title,
		in.Body,
		in.Icon,
		in.Redirect,
		id,
	))
	if errors.Is(err, ErrMappingNotFound) {
		return nil, ErrMappingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update mapping %d: %w", id, err)
	}
	return m, nil
}

// DeleteMapping deletes a mapping by id. Deleting a missing id is not an error.
func (d *DB) DeleteMapping(ctx context.Context, id int64) error {
	if _, err := d.Pool.Exec(ctx, `DELETE FROM urls WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete mapping %d: %w", id, err)
	}
	return nil
}

// IncrementHits increments the hit count for a mapping. A mapping deleted in
// the meantime is silently skipped.
func (d *DB) IncrementHits(ctx context.Context, id int64) error {
	if _, err := d.Pool.Exec(ctx, `UPDATE urls SET hits = hits + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment hits for mapping %d: %w", id, err)
	}
	return nil
}
