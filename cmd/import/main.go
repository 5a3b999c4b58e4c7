// Package main is the trip-log importer. It applies the Postgres migrations,
// then loads each city's CSV/XLSX trip log from DATA_DIR and replaces that
// city's rows in the database, so the API can run with SOURCE_BACKEND=postgres.
//
// Usage:
//
//	import [-city chicago,washington]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/pkordes/bikeshare-stats/internal/config"
	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/repo"
	"github.com/pkordes/bikeshare-stats/internal/store"
)

func main() {
	cityList := flag.String("city", "", "comma-separated cities to import (default: all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	cities, err := parseCities(*cityList)
	if err != nil {
		slog.Error("invalid -city flag", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repo.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	pool, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	trips := repo.NewTripRepo(pool)
	loader := store.NewLoader(store.NewFileRegistry(cfg.DataDir, cfg.CityFiles))

	// One failing city does not stop the others; every failure is reported.
	var errs error
	for _, c := range cities {
		if err := importCity(ctx, loader, trips, c); err != nil {
			slog.Error("import failed", "city", c, "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		slog.Error("import finished with errors", "failed", len(multierr.Errors(errs)), "cities", len(cities))
		os.Exit(1)
	}
	slog.Info("import finished", "cities", len(cities))
}

func importCity(ctx context.Context, loader *store.Loader, trips repo.TripRepo, c domain.City) error {
	start := time.Now()
	rs, err := loader.Load(ctx, string(c))
	if err != nil {
		return err
	}
	n, err := trips.Import(ctx, c, rs)
	if err != nil {
		return err
	}
	slog.Info("city imported",
		"city", c,
		"source", rs.Source(),
		"rows", n,
		"has_gender", rs.HasGender(),
		"has_birth_year", rs.HasBirthYear(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// parseCities parses the -city flag. Empty means every supported city.
func parseCities(list string) ([]domain.City, error) {
	if strings.TrimSpace(list) == "" {
		return domain.Cities, nil
	}
	var out []domain.City
	for _, part := range strings.Split(list, ",") {
		c, err := domain.ParseCity(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
