// Package metrics records lookup outcomes in a private Prometheus registry
// and writes them in text exposition format, for node_exporter's textfile
// collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results.
const (
	ResultFound     = "found"
	ResultNotFound  = "not_found"
	ResultAmbiguous = "ambiguous"
	ResultError     = "error"
)

// Phases timed by ObservePhase.
const (
	PhaseOpen   = "open"
	PhaseSearch = "search"
)

// LookupMetrics provides methods to record lookup metrics. A nil
// *LookupMetrics records nothing.
type LookupMetrics struct {
	registry *prometheus.Registry

	lookupsTotal  *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	matches       *prometheus.GaugeVec
}

// New creates LookupMetrics backed by a fresh registry.
func New() *LookupMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &LookupMetrics{
		registry: reg,
		lookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpasscli_lookups_total",
				Help: "Total number of credential lookups by backend and result",
			},
			[]string{"backend", "result"},
		),
		phaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kpasscli_phase_duration_seconds",
				Help:    "Duration of lookup phases in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"backend", "phase"},
		),
		matches: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kpasscli_last_search_matches",
				Help: "Number of entries matched by the last search",
			},
			[]string{"backend"},
		),
	}
}

// RecordLookup counts one lookup.
func (m *LookupMetrics) RecordLookup(backend, result string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(backend, result).Inc()
}

// ObservePhase records how long a phase took.
func (m *LookupMetrics) ObservePhase(backend, phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(backend, phase).Observe(d.Seconds())
}

// RecordMatches records the size of a search result.
func (m *LookupMetrics) RecordMatches(backend string, n int) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(backend).Set(float64(n))
}

// Registry returns the registry holding the metrics.
func (m *LookupMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile atomically writes all metrics to path. An empty path or a
// nil receiver is a no-op.
func (m *LookupMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
