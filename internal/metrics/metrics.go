// Package metrics registers the Prometheus series the service exports.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Feed metrics
	FeedComposeDuration prometheus.HistogramVec
	FeedPostsReturned   prometheus.HistogramVec
	FeedFallbacksTotal  prometheus.CounterVec

	// Store metrics
	StoreFailuresTotal prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),

			FeedComposeDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_compose_duration_seconds",
					Help:    "Feed composition latency in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"source"},
			),
			FeedPostsReturned: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_posts_returned",
					Help:    "Number of posts returned per feed page",
					Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
				},
				[]string{"source"},
			),
			FeedFallbacksTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_fallbacks_total",
					Help: "Feed requests that fell back to the global feed",
				},
				[]string{"reason"},
			),

			StoreFailuresTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "store_failures_total",
					Help: "Record store operations that failed",
				},
				[]string{"operation"},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of application errors",
				},
				[]string{"type", "component"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use.
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
