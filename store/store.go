// Package store is the durable record of every project, plan, run, step,
// audit, and artifact the copilot has ever touched, backed by PostgreSQL
// via pgx/v5.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool with the repository methods the
// control API and orchestrator need.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and applies the embedded schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connecting: %w", err)
	}
	if err := Bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: bootstrapping schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
