package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/store"
	"github.com/pkordes/bikeshare-stats/migrations"
)

// connectBackoff retries the first ping while a freshly started database
// container is still coming up: 500ms doubling, at most 6 attempts.
func connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
}

// Open creates a connection pool and verifies the database is reachable,
// retrying the ping with exponential backoff.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.Open: create pool: %w", err)
	}
	err = retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.Open: ping: %w", err)
	}
	return pool, nil
}

// Migrate applies every pending migration embedded in the migrations package.
// goose needs a *sql.DB, so it gets its own short-lived connection.
func Migrate(ctx context.Context, dsn string, log *slog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("repo.Migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("repo.Migrate: up: %w", err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// NewRegistry returns a store.Registry whose city sources read imported rows
// from trips, so the API can serve the Postgres backend through the same Loader.
func NewRegistry(trips TripRepo) *store.Registry {
	sources := make(map[domain.City]store.Source, len(domain.Cities))
	for _, c := range domain.Cities {
		sources[c] = trips.Source(c)
	}
	return store.NewRegistry(sources)
}
