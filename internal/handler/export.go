package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

var exportContentTypes = map[domain.ExportFormat]string{
	domain.FormatCSV:  "text/csv; charset=utf-8",
	domain.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// getExport handles GET /cities/{city}/export.
// It returns the filtered raw trips as a CSV (default) or XLSX download.
// The file is rendered into memory first so a failure part-way through
// still produces a JSON error rather than a truncated download.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	p, err := s.bindExport(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f, err := p.filter()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	city := chi.URLParam(r, "city")
	format := domain.ExportFormat(p.Format)
	var buf bytes.Buffer
	rows, err := s.export.Export(r.Context(), city, f, format, &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(city, f, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Row-Count", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// exportFilename builds e.g. "chicago-march-all.csv".
func exportFilename(city string, f domain.Filter, format domain.ExportFormat) string {
	slug := city
	if c, err := domain.ParseCity(city); err == nil {
		slug = string(c)
	}
	return fmt.Sprintf("%s-%s-%s.%s", slug, f.Month, f.Day, format)
}
