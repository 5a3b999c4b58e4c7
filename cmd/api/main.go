// Package main is the entry point for the bikeshare stats API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/bikeshare-stats/internal/cache"
	"github.com/pkordes/bikeshare-stats/internal/config"
	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/handler"
	"github.com/pkordes/bikeshare-stats/internal/metrics"
	"github.com/pkordes/bikeshare-stats/internal/middleware"
	"github.com/pkordes/bikeshare-stats/internal/repo"
	"github.com/pkordes/bikeshare-stats/internal/service"
	"github.com/pkordes/bikeshare-stats/internal/store"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Trip-log sources -------------------------------------------------
	// The file backend reads CSV/XLSX logs from DATA_DIR; the postgres backend
	// reads logs previously loaded with cmd/import.
	var registry *store.Registry
	switch cfg.SourceBackend {
	case config.BackendPostgres:
		ctx := context.Background()
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
		slog.Info("database connection established")
		registry = repo.NewRegistry(repo.NewTripRepo(pool))
	default:
		registry = store.NewFileRegistry(cfg.DataDir, cfg.CityFiles)
		slog.Info("reading trip logs from disk", "data_dir", cfg.DataDir)
	}

	// --- Metrics ----------------------------------------------------------
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	// --- Services ---------------------------------------------------------
	datasets := cache.New[*domain.RecordSet](cfg.CacheTTL)
	defer datasets.Close()

	statsSvc := service.NewStatsService(store.NewLoader(registry), datasets, m, logger)
	exportSvc := service.NewExportService(statsSvc, m, logger)

	if cfg.Preload {
		start := time.Now()
		if err := statsSvc.Preload(context.Background(), domain.Cities); err != nil {
			slog.Error("failed to preload datasets", "error", err)
			os.Exit(1)
		}
		slog.Info("datasets preloaded", "duration_ms", time.Since(start).Milliseconds())
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → RateLimit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))

	r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	api := handler.NewServer(statsSvc, exportSvc, logger, cfg.MaxUploadBytes)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	r.With(limiter.Handler).Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	// A cold city load can take several seconds, so the write timeout is
	// looser than the read timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.SourceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
