package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and keeps a few counters for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	cacheWrites     *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	exports         *prometheus.CounterVec

	fallbackHits   uint64
	fallbackMisses uint64
	backendErrors  uint64
	requestCount   uint64
}

// MetricsSnapshot is the subset of counters reported by the health endpoint.
type MetricsSnapshot struct {
	Requests       uint64    `json:"requests"`
	BackendErrors  uint64    `json:"backend_errors"`
	FallbackHits   uint64    `json:"fallback_hits"`
	FallbackMisses uint64    `json:"fallback_misses"`
	Goroutines     int       `json:"goroutines"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// NewMetricsService registers the gateway collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_call_duration_seconds",
		Help:    "Duration of school server task calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"task", "outcome"})

	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payload_cache_fallbacks_total",
		Help: "Fallback lookups after a failed fetch, by result",
	}, []string{"task", "result"})

	cacheWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payload_cache_writes_total",
		Help: "Payload cache writes, by result",
	}, []string{"result"})

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Finished uploads, by final state",
	}, []string{"state"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_generated_total",
		Help: "Generated export files, by kind",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, fallbacks, cacheWrites, uploads, exports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		fallbacks:       fallbacks,
		cacheWrites:     cacheWrites,
		uploads:         uploads,
		exports:         exports,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveBackendCall implements binex.Observer.
func (m *MetricsService) ObserveBackendCall(task, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(task, outcome).Observe(duration.Seconds())
	if outcome != "ok" {
		atomic.AddUint64(&m.backendErrors, 1)
	}
}

// RecordFallback counts a cache lookup made after a failed fetch.
func (m *MetricsService) RecordFallback(task string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		atomic.AddUint64(&m.fallbackHits, 1)
	} else {
		atomic.AddUint64(&m.fallbackMisses, 1)
	}
	m.fallbacks.WithLabelValues(task, result).Inc()
}

// RecordCacheWrite counts payload cache writes.
func (m *MetricsService) RecordCacheWrite(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.cacheWrites.WithLabelValues(result).Inc()
}

// RecordUpload counts an upload reaching a final state.
func (m *MetricsService) RecordUpload(state string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(state).Inc()
}

// RecordExport counts a generated export file.
func (m *MetricsService) RecordExport(kind string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind).Inc()
}

// Snapshot returns the aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Requests:       atomic.LoadUint64(&m.requestCount),
		BackendErrors:  atomic.LoadUint64(&m.backendErrors),
		FallbackHits:   atomic.LoadUint64(&m.fallbackHits),
		FallbackMisses: atomic.LoadUint64(&m.fallbackMisses),
		Goroutines:     runtime.NumGoroutine(),
		GeneratedAt:    time.Now().UTC(),
	}
}
