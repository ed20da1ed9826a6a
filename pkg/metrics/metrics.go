// Package metrics provides Prometheus metrics instrumentation for the
// memory-maintenance pipeline.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for memkeep.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Maintenance run metrics
	daysProcessed  *prometheus.CounterVec
	factsPromoted  prometheus.Counter
	dayDuration    prometheus.Histogram
	oracleDuration prometheus.Histogram

	// Capture metrics
	entriesAppended *prometheus.CounterVec

	server *http.Server
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Port    int
	Path    string

	DayDurationBuckets    []float64
	OracleDurationBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:               true,
		Port:                  9091,
		Path:                  "/metrics",
		DayDurationBuckets:    []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		OracleDurationBuckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	m := &Manager{
		registry: prometheus.NewRegistry(),
		enabled:  true,
	}

	m.daysProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_days_total",
			Help: "Total number of maintenance day outcomes by result",
		},
		[]string{"result"},
	)

	m.factsPromoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maintenance_facts_promoted_total",
			Help: "Total number of facts promoted into the memory store",
		},
	)

	m.dayDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maintenance_day_duration_seconds",
			Help:    "Duration of one day's maintenance processing in seconds",
			Buckets: cfg.DayDurationBuckets,
		},
	)

	m.oracleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Duration of oracle exchanges in seconds",
			Buckets: cfg.OracleDurationBuckets,
		},
	)

	m.entriesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logstore_entries_appended_total",
			Help: "Total number of log entries appended by channel",
		},
		[]string{"channel"},
	)

	m.registry.MustRegister(
		m.daysProcessed,
		m.factsPromoted,
		m.dayDuration,
		m.oracleDuration,
		m.entriesAppended,
	)

	return m
}

// RecordDay records the outcome of one maintenance day.
// Result is one of "processed", "skipped", "failed".
func (m *Manager) RecordDay(result string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.daysProcessed.WithLabelValues(result).Inc()
	m.dayDuration.Observe(duration.Seconds())
}

// RecordFactsPromoted records n facts promoted into the store.
func (m *Manager) RecordFactsPromoted(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.factsPromoted.Add(float64(n))
}

// RecordOracleRequest records the duration of one oracle exchange.
func (m *Manager) RecordOracleRequest(duration time.Duration) {
	if !m.enabled {
		return
	}
	m.oracleDuration.Observe(duration.Seconds())
}

// RecordEntryAppended records one captured log entry.
func (m *Manager) RecordEntryAppended(channel string) {
	if !m.enabled {
		return
	}
	m.entriesAppended.WithLabelValues(channel).Inc()
}

// Registry exposes the underlying registry for testing.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Serve starts the metrics HTTP endpoint. Blocks until the server exits.
func (m *Manager) Serve(cfg Config) error {
	if !m.enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
	if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the metrics endpoint.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
