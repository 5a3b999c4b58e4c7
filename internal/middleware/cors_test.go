package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/middleware"
)

const testOrigin = "http://localhost:5173"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func corsRequest(t *testing.T, method, path, origin string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	h := middleware.NewCORSHandler([]string{testOrigin})(okHandler)
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSHandler_ExportExposesDownloadHeaders(t *testing.T) {
	rec := corsRequest(t, http.MethodGet, "/cities/chicago/export?format=xlsx", testOrigin, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "Content-Disposition")
	assert.Contains(t, exposed, "X-Request-Id")
}

func TestCORSHandler_AnalyzePreflight(t *testing.T) {
	// Browsers send requested header names in lowercase.
	rec := corsRequest(t, http.MethodOptions, "/analyze", testOrigin, map[string]string{
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "content-type",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSHandler_RejectsUnlistedMethods(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := corsRequest(t, http.MethodOptions, "/cities/chicago/reload", testOrigin, map[string]string{
				"Access-Control-Request-Method": method,
			})

			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORSHandler_RejectsUnlistedRequestHeaders(t *testing.T) {
	rec := corsRequest(t, http.MethodOptions, "/cities/chicago/reload", testOrigin, map[string]string{
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "authorization",
	})

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHandler_DisallowedOrigin(t *testing.T) {
	rec := corsRequest(t, http.MethodGet, "/cities/chicago/stats", "http://evil.example.com", nil)

	// The request still reaches the handler; the browser blocks the response.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))
}
