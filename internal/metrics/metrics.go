// Package metrics exposes Prometheus collectors for the ingestion service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestPostingsTotal         *prometheus.CounterVec
	ingestRunsTotal             *prometheus.CounterVec
	ingestSourceDurationSeconds *prometheus.HistogramVec
	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDurationSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ingestPostingsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestor_postings_total",
				Help: "Total posting candidates processed, labeled by source and result.",
			},
			[]string{"source", "result"},
		)

		ingestRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestor_runs_total",
				Help: "Total orchestration runs, labeled by status.",
			},
			[]string{"status"},
		)

		ingestSourceDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestor_source_duration_seconds",
				Help:    "Histogram of per-source crawl durations, labeled by source and status.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"source", "status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePosting increments the posting counter for one candidate result.
func ObservePosting(source, result string) {
	if ingestPostingsTotal == nil {
		return
	}
	ingestPostingsTotal.WithLabelValues(source, result).Inc()
}

// ObserveRun increments the run counter for the given status.
func ObserveRun(status string) {
	if ingestRunsTotal == nil {
		return
	}
	ingestRunsTotal.WithLabelValues(status).Inc()
}

// ObserveSource records one source crawl duration.
func ObserveSource(source, status string, duration time.Duration) {
	if ingestSourceDurationSeconds == nil {
		return
	}
	ingestSourceDurationSeconds.WithLabelValues(source, status).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
