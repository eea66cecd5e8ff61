package infra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/loadboard-app/loadboard/internal/db"
)

// Harness owns the lifecycle of the Postgres test container and pgx pool.
type Harness struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	dsn       string
}

// NewHarness boots a Postgres 16 container and applies the schema. If
// TEST_PG_DSN is set, that database is reused instead of a container.
func NewHarness(ctx context.Context) (*Harness, error) {
	var (
		container *postgres.PostgresContainer
		dsn       = os.Getenv("TEST_PG_DSN")
	)

	if dsn == "" {
		pgC, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("loadboard_test"),
			postgres.WithUsername("loadboard"),
			postgres.WithPassword("loadboard"),
		)
		if err != nil {
			return nil, fmt.Errorf("start postgres container: %w", err)
		}
		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = pgC.Terminate(ctx)
			return nil, fmt.Errorf("resolve connection string: %w", err)
		}
		container = pgC
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConns = 32
	cfg.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Harness{container: container, pool: pool, dsn: dsn}, nil
}

// Pool exposes the configured pgx pool.
func (h *Harness) Pool() *pgxpool.Pool {
	return h.pool
}

// DSN returns the connection string for direct connections.
func (h *Harness) DSN() string {
	return h.dsn
}

// Close tears down resources.
func (h *Harness) Close(ctx context.Context) {
	if h.pool != nil {
		h.pool.Close()
	}
	if h.container != nil {
		_ = h.container.Terminate(ctx)
	}
}

// Reset truncates mutable tables for a clean slate between tests.
func (h *Harness) Reset(ctx context.Context) error {
	tables := []string{
		"notifications",
		"audit_log",
		"flags",
		"complaints",
		"ratings",
		"offers",
		"shipments",
		"users",
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reset begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, tbl := range tables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+tbl+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", tbl, err)
		}
	}
	return tx.Commit(ctx)
}
