// Package metrics exposes Prometheus collectors for the preview server.
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
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	artifactBytesTotal         *prometheus.CounterVec
	snapshotCount              prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
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
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)

		artifactBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_artifact_bytes_total",
				Help: "Total bytes of pipeline artifacts served, labeled by artifact.",
			},
			[]string{"artifact"},
		)

		snapshotCount = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_snapshot_count",
				Help: "Number of snapshots in the snapshot directory.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveArtifact records bytes served for one pipeline artifact.
func ObserveArtifact(artifact string, bytes int) {
	if bytes > 0 {
		artifactBytesTotal.WithLabelValues(artifact).Add(float64(bytes))
	}
}

// SetSnapshotCount records the current snapshot history length.
func SetSnapshotCount(n int) {
	snapshotCount.Set(float64(n))
}
