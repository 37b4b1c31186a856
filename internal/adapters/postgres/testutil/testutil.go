// Package testutil provides Postgres plumbing for adapter tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres"
	pgdedupe "github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres/dedupe"
)

// OpenMigratedPool connects to the database named by TEST_DATABASE_URL,
// applies the schema, and truncates dedupe state so tests start clean.
// Skips the test when the env var is unset, so the suite passes without a
// local Postgres.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres adapter tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pgdedupe.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE dedupe_records`); err != nil {
		t.Fatalf("truncate dedupe_records: %v", err)
	}
	return pool
}
