// Package testutil opens a migrated, clean database for postgres contract
// tests. Tests that use it are skipped unless TEST_DATABASE_URL is set.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/wanderlist-app/reminder-api/migrations"
)

// OpenMigratedPool connects to TEST_DATABASE_URL, applies all migrations, and
// truncates the tables so each test run starts clean. The pool is closed via
// t.Cleanup.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}
	ctx := context.Background()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open migration connection: %v", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("set goose dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close migration connection: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE trips, users, notifications`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}
