package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotCounts(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/leaves", http.StatusOK, 10*time.Millisecond)
	m.ObserveBackendCall("get_all_leaves", "transport", time.Second)
	m.ObserveBackendCall("get_all_leaves", "ok", time.Second)
	m.RecordFallback("get_all_leaves", true)
	m.RecordFallback("get_notices", false)
	m.RecordExport("receipt")

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.Requests)
	assert.EqualValues(t, 1, snap.BackendErrors)
	assert.EqualValues(t, 1, snap.FallbackHits)
	assert.EqualValues(t, 1, snap.FallbackMisses)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `payload_cache_fallbacks_total{result="hit",task="get_all_leaves"} 1`)
	assert.Contains(t, w.Body.String(), `exports_generated_total{kind="receipt"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordUpload("SUCCEEDED")
	assert.Zero(t, m.Snapshot().Requests)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
