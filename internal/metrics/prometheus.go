package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// AlignmentCount counts alignments by outcome
	AlignmentCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alignments_total",
			Help: "Total number of alignments",
		},
		[]string{"status"},
	)

	AlignmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alignment_duration_seconds",
			Help:    "Tokenize and align duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	AlignmentSimilarity = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alignment_similarity",
			Help:    "Similarity of completed alignments",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// AlignmentCells observes m·n, the size of the scoring grid
	AlignmentCells = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alignment_cells",
			Help:    "Number of grid cells filled per alignment",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Result cache hits by tier",
		},
		[]string{"tier"},
	)
)

var registerOnce sync.Once

// InitPrometheus registers every collector with the default registry.
// Calling it more than once is a no-op.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			AlignmentCount,
			AlignmentDuration,
			AlignmentSimilarity,
			AlignmentCells,
			CacheHits,
		)
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
