package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CityResponse describes one supported city.
type CityResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CitiesResponse is the body of GET /cities.
type CitiesResponse struct {
	Cities []CityResponse `json:"cities"`
}

// listCities handles GET /cities.
func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	cities := s.stats.Cities()
	out := CitiesResponse{Cities: make([]CityResponse, 0, len(cities))}
	for _, c := range cities {
		out.Cities = append(out.Cities, CityResponse{Slug: string(c), Name: c.DisplayName()})
	}
	render.JSON(w, r, out)
}

// getStats handles GET /cities/{city}/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	p, err := s.bindFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f, err := p.filter()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.stats.Summary(r.Context(), chi.URLParam(r, "city"), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// getRaw handles GET /cities/{city}/raw.
// Defaults to cursor=0; the next page is requested with the returned next_cursor.
func (s *Server) getRaw(w http.ResponseWriter, r *http.Request) {
	p, err := s.bindRaw(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.stats.Raw(r.Context(), chi.URLParam(r, "city"), p.Cursor)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// reload handles POST /cities/{city}/reload.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if err := s.stats.Reload(r.Context(), chi.URLParam(r, "city")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// analyze handles POST /analyze. The body is a CSV trip log in the same
// layout as the published city files; ?month= and ?day= filter it.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	p, err := s.bindFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f, err := p.filter()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.stats.Analyze(r.Context(), uploadName(r), r.Body, f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// uploadName names an ad-hoc dataset for logs and the report's city field.
func uploadName(r *http.Request) string {
	var name string
	if err := bindQuery(r, "name", &name); err != nil || name == "" {
		return "upload"
	}
	return name
}

