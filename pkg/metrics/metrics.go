// Package metrics defines the Prometheus metric collectors for the service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	IndexOpsTotal        *prometheus.CounterVec
	IndexOpDuration      *prometheus.HistogramVec
	SuggestQueriesTotal  *prometheus.CounterVec
	SuggestLatency       *prometheus.HistogramVec
	SuggestResultsCount  prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		IndexOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_operations_total",
				Help: "Total index mutations by operation (add, delete) and status.",
			},
			[]string{"operation", "status"},
		),
		IndexOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "index_operation_duration_seconds",
				Help:    "Index mutation latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
			},
			[]string{"operation"},
		),
		SuggestQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggest_queries_total",
				Help: "Total suggest queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SuggestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suggest_latency_seconds",
				Help:    "Suggest query latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		SuggestResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suggest_results_count",
				Help:    "Number of results returned per suggest query.",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggest_cache_hits_total",
				Help: "Total number of suggest cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggest_cache_misses_total",
				Help: "Total number of suggest cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.IndexOpsTotal,
		m.IndexOpDuration,
		m.SuggestQueriesTotal,
		m.SuggestLatency,
		m.SuggestResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
