// Package main is the interactive terminal client. It reads trip logs the same
// way the API server does (DATA_DIR files or the Postgres backend) and drives
// an internal/cli session over stdin/stdout.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkordes/bikeshare-stats/internal/cache"
	"github.com/pkordes/bikeshare-stats/internal/cli"
	"github.com/pkordes/bikeshare-stats/internal/config"
	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/repo"
	"github.com/pkordes/bikeshare-stats/internal/service"
	"github.com/pkordes/bikeshare-stats/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so they never interleave with the prompts on stdout.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: max(logLevel, slog.LevelWarn)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := store.NewFileRegistry(cfg.DataDir, cfg.CityFiles)
	if cfg.SourceBackend == config.BackendPostgres {
		pool, err := repo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		registry = repo.NewRegistry(repo.NewTripRepo(pool))
	}

	// Datasets stay loaded for the whole session so restarting on the same
	// city does not re-read the file.
	datasets := cache.New[*domain.RecordSet](cfg.CacheTTL)
	defer datasets.Close()
	statsSvc := service.NewStatsService(store.NewLoader(registry), datasets, nil, logger)

	if err := cli.New(statsSvc, os.Stdin, os.Stdout).Run(ctx); err != nil {
		slog.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}
