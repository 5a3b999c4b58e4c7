// Package handler implements the HTTP handlers for the bikeshare stats API.
// All handlers are methods on Server. Methods are split into files by
// resource (health.go, stats.go, export.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/middleware"
	"github.com/pkordes/bikeshare-stats/spec"
)

// StatsServicer defines the statistics operations the handlers depend on.
// Defined here, in the consumer package, so handler tests can inject a mock.
type StatsServicer interface {
	Cities() []domain.City
	Summary(ctx context.Context, city string, f domain.Filter) (domain.Report, error)
	Raw(ctx context.Context, city string, cursor int) (domain.Page, error)
	Analyze(ctx context.Context, name string, r io.Reader, f domain.Filter) (domain.Report, error)
	Reload(ctx context.Context, city string) error
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, city string, f domain.Filter, format domain.ExportFormat, w io.Writer) (int, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	stats     StatsServicer
	export    ExportServicer
	validate  *validator.Validate
	log       *slog.Logger
	maxUpload int64
}

// NewServer constructs the Server. maxUpload caps the body of POST /analyze.
func NewServer(stats StatsServicer, export ExportServicer, log *slog.Logger, maxUpload int64) *Server {
	return &Server{
		stats:     stats,
		export:    export,
		validate:  newValidator(),
		log:       log.With("component", "handler"),
		maxUpload: maxUpload,
	}
}

// Routes returns the API router. Cross-cutting middleware (request IDs,
// logging, CORS, rate limiting) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", getOpenAPI)

	r.Route("/cities", func(r chi.Router) {
		r.Get("/", s.listCities)
		r.Route("/{city}", func(r chi.Router) {
			r.Get("/stats", s.getStats)
			r.Get("/raw", s.getRaw)
			r.Get("/export", s.getExport)
			r.Post("/reload", s.reload)
		})
	})

	r.With(middleware.NewMaxBodySizeHandler(s.maxUpload)).Post("/analyze", s.analyze)
	return r
}

// getOpenAPI serves the embedded OpenAPI document.
func getOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
