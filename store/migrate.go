package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// schemaMigrationID is the single tracked migration filename. The schema
// is additive-only (CREATE TABLE IF NOT EXISTS); there is no migration
// sequence to order, so one id is enough to make bootstrap idempotent.
const schemaMigrationID = "schema.sql"

// Bootstrap applies the embedded schema exactly once, tracked in a
// schema_migrations table the same way the teacher's raw SQL migration
// engine tracks applied files: create the tracking table if missing,
// check whether this id was already applied, and if not, run the schema
// and record it inside a single transaction.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("ensuring schema_migrations table: %w", err)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE id = $1`, schemaMigrationID,
	).Scan(&count); err != nil {
		return fmt.Errorf("checking schema migration status: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting schema transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (id) VALUES ($1)`, schemaMigrationID,
	); err != nil {
		return fmt.Errorf("recording schema migration: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing schema migration: %w", err)
	}
	return nil
}
