package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// respondError maps a service error onto a status code and error body.
// Unrecognised errors are logged and reported as 500 without detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds the upload limit")
	case errors.Is(err, domain.ErrUnknownCity):
		writeError(w, r, http.StatusNotFound, "unknown_city", unwrapMessage(err, domain.ErrUnknownCity))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrMalformedSource):
		writeError(w, r, http.StatusUnprocessableEntity, "malformed_source", unwrapMessage(err, domain.ErrMalformedSource))
	case errors.Is(err, domain.ErrEmptyDataset):
		writeError(w, r, http.StatusUnprocessableEntity, "empty_dataset", unwrapMessage(err, domain.ErrEmptyDataset))
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage drops the "pkg.Type.Method: " call-site prefixes from err and
// returns the part from the sentinel onward.
// e.g. "service.StatsService.Summary: validation error: month must be ..." →
// "validation error: month must be ...".
func unwrapMessage(err error, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}
