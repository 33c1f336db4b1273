package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostMutations counts successful post writes by operation.
	PostMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_post_mutations_total",
		Help: "Total number of post create, update and delete operations",
	}, []string{"operation"})

	// LoginAttempts counts admin logins by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_login_attempts_total",
		Help: "Total number of admin login attempts by outcome",
	}, []string{"outcome"})

	// UploadsTotal counts image uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})

	// UploadBytes records accepted upload sizes.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blog_upload_bytes",
		Help:    "Size of accepted image uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	})

	// RedisErrors counts Redis failures by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the request metrics middleware. Its collectors live on
// the default registry, so it is built once per process and later calls
// ignore serviceName.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
