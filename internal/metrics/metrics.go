// Package metrics defines the Prometheus collectors for dataset loads and queries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups the service's collectors. A nil *Metrics is valid and
// records nothing, so tests and the CLI can skip instrumentation.
type Metrics struct {
	loads       *prometheus.CounterVec
	loadSeconds *prometheus.HistogramVec
	records     *prometheus.GaugeVec
	queries     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "dataset_loads_total",
			Help:      "Trip-log loads by city and outcome.",
		}, []string{"city", "outcome"}),
		loadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bikeshare",
			Name:      "dataset_load_seconds",
			Help:      "Time spent loading and parsing a trip log.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"city"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bikeshare",
			Name:      "dataset_records",
			Help:      "Records in the most recently loaded trip log per city.",
		}, []string{"city"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "queries_total",
			Help:      "Statistics queries served, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.loads, m.loadSeconds, m.records, m.queries)
	return m
}

// ObserveLoad records one load attempt.
func (m *Metrics) ObserveLoad(city string, elapsed time.Duration, records int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.loads.WithLabelValues(city, outcome).Inc()
	m.loadSeconds.WithLabelValues(city).Observe(elapsed.Seconds())
	if err == nil {
		m.records.WithLabelValues(city).Set(float64(records))
	}
}

// CountQuery increments the query counter for kind (summary, raw, export, analyze).
func (m *Metrics) CountQuery(kind string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind).Inc()
}
