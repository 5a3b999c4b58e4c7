// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Source backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// LogLevel controls the minimum log level. Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// DataDir is the directory holding the per-city trip logs.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// CitiesFile optionally points at a YAML file mapping city slugs to file
	// names (relative to DataDir) or absolute paths.
	CitiesFile string `envconfig:"CITIES_FILE"`

	// SourceBackend selects where trip logs are read from: "file" or "postgres".
	SourceBackend string `envconfig:"SOURCE_BACKEND" default:"file"`

	// DatabaseURL is the Postgres connection string. Required when SourceBackend is postgres.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// CacheTTL is how long a loaded city dataset stays in memory.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"30m"`

	// MaxUploadBytes caps the body of POST /analyze.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`

	// RateLimitRPS and RateLimitBurst configure the per-process token bucket.
	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`

	// Preload loads every city at startup instead of on first request.
	Preload bool `envconfig:"PRELOAD" default:"false"`

	// CityFiles is populated from CitiesFile, not from the environment.
	CityFiles map[domain.City]string `ignored:"true"`
}

// Load reads a .env file if one exists, then configuration from environment
// variables. Variables already set in the environment win over .env entries.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.SourceBackend = strings.ToLower(strings.TrimSpace(cfg.SourceBackend))

	var missing []string
	switch cfg.SourceBackend {
	case BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("config: SOURCE_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, cfg.SourceBackend)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.CitiesFile != "" {
		files, err := LoadCityFiles(cfg.CitiesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.CityFiles = files
	}

	return cfg, nil
}

// cityFilesDoc is the YAML layout of CITIES_FILE:
//
//	cities:
//	  chicago: chicago.csv
//	  new york city: nyc_2017.xlsx
type cityFilesDoc struct {
	Cities map[string]string `yaml:"cities"`
}

// LoadCityFiles reads a YAML city → file map. City keys are parsed with
// domain.ParseCity, so unknown cities are rejected.
func LoadCityFiles(path string) (map[domain.City]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read cities file: %w", err)
	}
	var doc cityFilesDoc
	if err := yaml.UnmarshalStrict(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse cities file %s: %w", path, err)
	}
	out := make(map[domain.City]string, len(doc.Cities))
	for name, file := range doc.Cities {
		c, err := domain.ParseCity(name)
		if err != nil {
			return nil, fmt.Errorf("config: cities file %s: %w", path, err)
		}
		out[c] = strings.TrimSpace(file)
	}
	return out, nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
