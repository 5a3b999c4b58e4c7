package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/handler"
	"github.com/pkordes/bikeshare-stats/testutil"
)

func sampleReport(city string, f domain.Filter) domain.Report {
	mean := 450.0
	return domain.Report{
		City:    city,
		Filter:  f,
		Matched: 2,
		Temporal: &domain.TemporalStats{
			MostCommonMonth: "January", MostCommonDay: "Monday", MostCommonHour: 8,
		},
		Station: &domain.StationStats{
			MostCommonStart: "Clark St", MostCommonEnd: "State St",
			MostCommonTrip: domain.StationPair{Start: "Clark St", End: "State St"},
		},
		Duration: domain.DurationStats{Trips: 2, TotalSeconds: 900, MeanSeconds: &mean},
		User: domain.UserStats{
			UserTypes: []domain.ValueCount{{Value: "Subscriber", Count: 2}},
			Gender:    domain.NotAvailable[[]domain.ValueCount](),
			BirthYear: domain.NotAvailable[domain.BirthYearStats](),
		},
	}
}

// ---- GET /cities -------------------------------------------------------------

func TestListCities_returnsAllCities(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.CitiesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []handler.CityResponse{
		{Slug: "chicago", Name: "Chicago"},
		{Slug: "new-york-city", Name: "New York City"},
		{Slug: "washington", Name: "Washington"},
	}, body.Cities)
}

// ---- GET /cities/{city}/stats --------------------------------------------------

func TestGetStats_passesNormalisedFilter(t *testing.T) {
	var gotCity string
	var gotFilter domain.Filter
	stats := &mockStatsServicer{
		summary: func(_ context.Context, city string, f domain.Filter) (domain.Report, error) {
			gotCity, gotFilter = city, f
			return sampleReport(city, f), nil
		},
	}
	h := newTestHandler(stats, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/stats?month=January&day=MONDAY", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "chicago", gotCity)
	assert.Equal(t, domain.Filter{Month: "january", Day: "monday"}, gotFilter)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.EqualValues(t, 2, body["matched"])
	user := body["user"].(map[string]any)
	assert.Equal(t, domain.Unavailable, user["gender"])
}

func TestGetStats_defaultsToNoFilter(t *testing.T) {
	var gotFilter domain.Filter
	stats := &mockStatsServicer{
		summary: func(_ context.Context, city string, f domain.Filter) (domain.Report, error) {
			gotFilter = f
			return sampleReport(city, f), nil
		},
	}
	h := newTestHandler(stats, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/washington/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.NoFilter, gotFilter)
}

func TestGetStats_monthOutsideRange_returns422(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/stats?month=july", nil))

	msg := decodeError(t, rec, http.StatusUnprocessableEntity, "validation_error")
	assert.Contains(t, msg, "month must be one of")
}

func TestGetStats_nonAlphaDay_returns422(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/stats?day=mon1", nil))

	msg := decodeError(t, rec, http.StatusUnprocessableEntity, "validation_error")
	assert.Contains(t, msg, "day must contain only letters")
}

func TestGetStats_errorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown city", domain.ErrUnknownCity, http.StatusNotFound, "unknown_city"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"malformed source", domain.ErrMalformedSource, http.StatusUnprocessableEntity, "malformed_source"},
		{"empty dataset", domain.ErrEmptyDataset, http.StatusUnprocessableEntity, "empty_dataset"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &mockStatsServicer{
				summary: func(context.Context, string, domain.Filter) (domain.Report, error) {
					return domain.Report{}, fmt.Errorf("service.StatsService.Summary: %w", tt.err)
				},
			}
			h := newTestHandler(stats, nil)

			rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/gotham/stats", nil))

			msg := decodeError(t, rec, tt.status, tt.code)
			assert.NotContains(t, msg, "service.StatsService")
		})
	}
}

// ---- GET /cities/{city}/raw ----------------------------------------------------

func TestGetRaw_passesCursor(t *testing.T) {
	var gotCursor int
	stats := &mockStatsServicer{
		raw: func(_ context.Context, _ string, cursor int) (domain.Page, error) {
			gotCursor = cursor
			return domain.Page{Records: testutil.Sequential(2), Cursor: cursor, Next: cursor + 5, Total: 7, Done: true}, nil
		},
	}
	h := newTestHandler(stats, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/raw?cursor=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotCursor)
	var body domain.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Records, 2)
	assert.Equal(t, 10, body.Next)
	assert.True(t, body.Done)
}

func TestGetRaw_defaultCursorIsZero(t *testing.T) {
	gotCursor := -1
	stats := &mockStatsServicer{
		raw: func(_ context.Context, _ string, cursor int) (domain.Page, error) {
			gotCursor = cursor
			return domain.Page{}, nil
		},
	}
	h := newTestHandler(stats, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/raw", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, gotCursor)
}

func TestGetRaw_invalidCursor_returns422(t *testing.T) {
	for _, q := range []string{"cursor=-5", "cursor=abc"} {
		t.Run(q, func(t *testing.T) {
			h := newTestHandler(nil, nil)

			rec := do(t, h, httptest.NewRequest(http.MethodGet, "/cities/chicago/raw?"+q, nil))

			decodeError(t, rec, http.StatusUnprocessableEntity, "validation_error")
		})
	}
}

// ---- POST /cities/{city}/reload ------------------------------------------------

func TestReload_returns204(t *testing.T) {
	var gotCity string
	stats := &mockStatsServicer{
		reload: func(_ context.Context, city string) error {
			gotCity = city
			return nil
		},
	}
	h := newTestHandler(stats, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/cities/new-york-city/reload", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "new-york-city", gotCity)
}

// ---- POST /analyze -------------------------------------------------------------

func TestAnalyze_readsBodyAndFilter(t *testing.T) {
	const csvBody = "Start Time,End Time,Trip Duration,Start Station,End Station,User Type\n"
	var gotName, gotBody string
	var gotFilter domain.Filter
	stats := &mockStatsServicer{
		analyze: func(_ context.Context, name string, r io.Reader, f domain.Filter) (domain.Report, error) {
			b, err := io.ReadAll(r)
			if err != nil {
				return domain.Report{}, err
			}
			gotName, gotBody, gotFilter = name, string(b), f
			return sampleReport(name, f), nil
		},
	}
	h := newTestHandler(stats, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze?name=june.csv&month=june", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := do(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "june.csv", gotName)
	assert.Equal(t, csvBody, gotBody)
	assert.Equal(t, domain.Filter{Month: "june", Day: "all"}, gotFilter)
}

func TestAnalyze_bodyOverLimit_returns413(t *testing.T) {
	h := newTestHandler(nil, nil)

	body := strings.NewReader(strings.Repeat("x", testMaxUpload+1))
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/analyze", body))

	decodeError(t, rec, http.StatusRequestEntityTooLarge, "payload_too_large")
}

func TestAnalyze_streamedBodyOverLimit_returns413(t *testing.T) {
	stats := &mockStatsServicer{
		analyze: func(_ context.Context, _ string, r io.Reader, _ domain.Filter) (domain.Report, error) {
			_, err := io.ReadAll(r)
			return domain.Report{}, fmt.Errorf("service.StatsService.Analyze: %w", err)
		},
	}
	h := newTestHandler(stats, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(strings.Repeat("x", testMaxUpload+1)))
	req.ContentLength = -1
	rec := do(t, h, req)

	decodeError(t, rec, http.StatusRequestEntityTooLarge, "payload_too_large")
}
