package telemetry

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultSuccess},
		{"network", &feed.NetworkError{URL: "u", StatusCode: 500}, ResultNetworkError},
		{"wrapped format", fmt.Errorf("sync: %w", &feed.FormatError{Reason: "missing events"}), ResultFormatError},
		{"other", errors.New("boom"), ResultOtherError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResultLabel(tt.err))
		})
	}
}

func TestObserveSync(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.status.WithLabelValues("loading")))

	updated := time.Date(2026, 1, 30, 8, 0, 0, 0, time.UTC)
	m.ObserveSync(schema.SyncState{Status: schema.StatusLive, UpdatedAt: updated, Events: 12}, 250*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.events))
	assert.Equal(t, float64(updated.Unix()), testutil.ToFloat64(m.lastUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.status.WithLabelValues("live")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.status.WithLabelValues("loading")))

	m.ObserveSync(schema.SyncState{Status: schema.StatusStale, UpdatedAt: updated, Events: 12}, time.Second, &feed.NetworkError{URL: "u", StatusCode: 503})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncTotal.WithLabelValues(ResultNetworkError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.status.WithLabelValues("stale")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.status.WithLabelValues("live")))

	m.ObserveSkip()
	m.ObserveSkip()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.syncSkipped))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/api/v1/status", http.StatusOK, 10*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `regpulse_http_requests_total{route="/api/v1/status",status="200"} 1`)
	assert.Contains(t, string(body), "regpulse_sync_status")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetricsAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveSkip()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.syncSkipped))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.syncSkipped))
	assert.NotSame(t, a.Registry(), b.Registry())
}
