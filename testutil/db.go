// Package testutil provides shared test helpers: trip-log fixtures for unit
// tests and migrated Postgres schemas for the repo integration tests.
// Database helpers skip automatically when TEST_DATABASE_URL is not set, so
// unit tests run without a database.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/repo"
	"github.com/pkordes/bikeshare-stats/migrations"
)

// DSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func DSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}

// SchemaDSN creates an empty schema named after a fresh UUID and returns a
// DSN whose connections use it as search_path. The schema is dropped when the
// test finishes. Packages run in parallel under go test, so every test that
// touches tables gets its own schema instead of sharing public.
func SchemaDSN(t *testing.T) string {
	t.Helper()
	dsn := DSN(t)
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err, "testutil.SchemaDSN: connect")
	defer conn.Close(ctx)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err, "testutil.SchemaDSN: create schema")

	t.Cleanup(func() {
		c, err := pgx.Connect(context.Background(), dsn)
		if err != nil {
			t.Logf("testutil.SchemaDSN: drop %s: %v", schema, err)
			return
		}
		defer c.Close(context.Background())
		if _, err := c.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("testutil.SchemaDSN: drop %s: %v", schema, err)
		}
	})
	return withSearchPath(dsn, schema)
}

// withSearchPath adds a search_path runtime parameter to a URL or
// keyword/value connection string.
func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err == nil {
			q := u.Query()
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	return dsn + " search_path=" + schema
}

// MigratedPool returns a pool on a fresh schema with every migration applied
// through repo.Migrate. The pool is closed before the schema is dropped.
func MigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := SchemaDSN(t)
	ctx := context.Background()

	require.NoError(t, repo.Migrate(ctx, dsn, slog.New(slog.DiscardHandler)))

	pool, err := repo.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// MigrationProvider returns a goose provider over the embedded migrations,
// bound to a fresh, unmigrated schema, along with its *sql.DB so callers can
// inspect the schema between steps.
func MigrationProvider(t *testing.T) (*goose.Provider, *sql.DB) {
	t.Helper()
	db, err := sql.Open("pgx", SchemaDSN(t))
	require.NoError(t, err, "testutil.MigrationProvider: open")
	t.Cleanup(func() { db.Close() })

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "testutil.MigrationProvider: create provider")
	return provider, db
}

// SeedCity imports rs as city's dataset and fails the test on error.
func SeedCity(t *testing.T, trips repo.TripRepo, city domain.City, rs *domain.RecordSet) {
	t.Helper()
	n, err := trips.Import(context.Background(), city, rs)
	require.NoError(t, err, "testutil.SeedCity: import %s", city)
	require.EqualValues(t, rs.Len(), n, "testutil.SeedCity: rows written for %s", city)
}
