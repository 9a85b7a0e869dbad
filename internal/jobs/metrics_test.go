package jobmetrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("stock:low_scan").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("stock:low_scan").End(boom), boom)

	body := scrape(t, reg)
	assert.Contains(t, body, `stockdesk_jobs_total{job="stock:low_scan",status="success"} 1`)
	assert.Contains(t, body, `stockdesk_jobs_total{job="stock:low_scan",status="failure"} 1`)
	assert.Contains(t, body, `stockdesk_jobs_failures_total{job="stock:low_scan"} 1`)
	assert.Contains(t, body, `stockdesk_job_duration_seconds_count{job="stock:low_scan"} 2`)
}

func TestSetLowStock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SetLowStock(3)
	assert.Contains(t, scrape(t, reg), "stockdesk_low_stock_products 3")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.SetLowStock(1)
	assert.NoError(t, m.Track("x").End(nil))
}
