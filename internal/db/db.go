package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"redirector/internal/models"
	"redirector/migrations"
)

// MemoryScheme selects the in-memory store in Open.
const MemoryScheme = "memory://"

// Store persists mappings. Implementations are safe for concurrent use and
// apply every operation atomically to a single record.
type Store interface {
	GetMappingByPath(ctx context.Context, path string) (*models.Mapping, error)
	ListMappings(ctx context.Context) ([]models.Mapping, error)
	CreateMapping(ctx context.Context, in models.MappingInput) (*models.Mapping, error)
	UpdateMapping(ctx context.Context, id int64, in models.MappingInput) (*models.Mapping, error)
	DeleteMapping(ctx context.Context, id int64) error
	IncrementHits(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close()
}

// Pool is the subset of *pgxpool.Pool used by DB.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// DB is the Postgres-backed Store.
type DB struct {
	Pool Pool
}

// Options tunes the store opened by Open.
type Options struct {
	MaxConns int32
	Migrate  bool
}

// Open returns a Store for the given URL. memory:// selects the in-memory
// store; anything else is treated as a Postgres connection string.
func Open(ctx context.Context, url string, opts Options) (Store, error) {
	if strings.HasPrefix(url, MemoryScheme) {
		return NewMemory(), nil
	}

	database, err := New(ctx, url, opts.MaxConns)
	if err != nil {
		return nil, err
	}
	if opts.Migrate {
		if err := database.RunMigrations(url); err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string, maxConns int32) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool Pool) *DB {
	return &DB{Pool: pool}
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}
