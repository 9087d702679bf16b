// Package testutil provides Postgres helpers for integration tests. Every
// helper skips the calling test when TEST_DATABASE_URL is not set, so the
// in-process backends still run without a database.
//
// Each helper works in its own throwaway schema. Packages that run in
// parallel against the same database never see each other's tables or
// goose version rows.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/eldplan/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool returns a pool bound to a fresh schema with every migration
// applied. The schema is dropped and the pool closed when t finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	db, schema := newSchema(t)
	provider, err := migrations.NewProvider(db)
	if err != nil {
		t.Fatalf("testutil.NewPool: goose provider: %v", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		t.Fatalf("testutil.NewPool: migrate %s: %v", schema, err)
	}

	cfg, err := pgxpool.ParseConfig(dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB returns a database/sql handle bound to a fresh, empty schema.
// Use it to drive goose directly. The schema is dropped when t finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _ := newSchema(t)
	return db
}

// newSchema creates a uniquely named schema and opens a *sql.DB whose
// search_path points at it.
func newSchema(t *testing.T) (*sql.DB, string) {
	t.Helper()
	ctx := context.Background()
	url := dsn(t)
	schema := "eldplan_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("testutil: open: %v", err)
	}
	t.Cleanup(func() { _ = admin.Close() })
	if _, err := admin.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		t.Fatalf("testutil: create schema: %v", err)
	}

	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		t.Fatalf("testutil: parse dsn: %v", err)
	}
	cfg.RuntimeParams["search_path"] = schema
	db := stdlib.OpenDB(*cfg)

	// Cleanups run last-in first-out: db closes, then the schema drops,
	// then admin closes.
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
	})
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("testutil: ping: %v", err)
	}
	return db, schema
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNEnv)
	if v == "" {
		t.Skip(DSNEnv + " not set; skipping Postgres test")
	}
	return v
}
