// Package telemetry exposes sync and HTTP metrics through Prometheus.
package telemetry

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// Sync outcome label values.
const (
	ResultSuccess      = "success"
	ResultNetworkError = "network_error"
	ResultFormatError  = "format_error"
	ResultOtherError   = "error"
)

var allStatuses = []schema.SyncStatus{schema.StatusLoading, schema.StatusLive, schema.StatusStale, schema.StatusError}

// Metrics holds every collector regpulse exports. Each instance owns its registry,
// so several can coexist in one process (tests, embedded servers).
type Metrics struct {
	registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	syncDuration prometheus.Histogram
	syncSkipped  prometheus.Counter
	events       prometheus.Gauge
	lastUpdated  prometheus.Gauge
	status       *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ contract.SyncObserver = (*Metrics)(nil)

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regpulse_sync_total",
			Help: "Completed snapshot syncs by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "regpulse_sync_duration_seconds",
			Help:    "Time spent fetching a snapshot.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		syncSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regpulse_sync_skipped_total",
			Help: "Sync requests dropped because another sync was in flight.",
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regpulse_events",
			Help: "Number of events in the current snapshot.",
		}),
		lastUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regpulse_last_updated_timestamp_seconds",
			Help: "Unix time of the current snapshot, 0 before the first successful sync.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "regpulse_sync_status",
			Help: "1 for the current sync status, 0 for the others.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regpulse_http_requests_total",
			Help: "HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regpulse_http_request_duration_seconds",
			Help:    "HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncTotal,
		m.syncDuration,
		m.syncSkipped,
		m.events,
		m.lastUpdated,
		m.status,
		m.httpRequests,
		m.httpDuration,
	)
	m.setStatus(schema.StatusLoading)
	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSync records one completed sync attempt.
func (m *Metrics) ObserveSync(state schema.SyncState, took time.Duration, err error) {
	m.syncTotal.WithLabelValues(ResultLabel(err)).Inc()
	m.syncDuration.Observe(took.Seconds())
	m.events.Set(float64(state.Events))
	if state.HasData() {
		m.lastUpdated.Set(float64(state.UpdatedAt.Unix()))
	}
	m.setStatus(state.Status)
}

// ObserveSkip records a sync that was not started.
func (m *Metrics) ObserveSkip() {
	m.syncSkipped.Inc()
}

// ObserveRequest records one served HTTP request. route is the matched pattern,
// never the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveRequest(route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}

func (m *Metrics) setStatus(current schema.SyncStatus) {
	for _, s := range allStatuses {
		v := 0.0
		if s == current {
			v = 1
		}
		m.status.WithLabelValues(string(s)).Set(v)
	}
}

// ResultLabel classifies a sync outcome.
func ResultLabel(err error) string {
	var netErr *feed.NetworkError
	var fmtErr *feed.FormatError
	switch {
	case err == nil:
		return ResultSuccess
	case errors.As(err, &netErr):
		return ResultNetworkError
	case errors.As(err, &fmtErr):
		return ResultFormatError
	default:
		return ResultOtherError
	}
}
