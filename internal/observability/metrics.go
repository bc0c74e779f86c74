package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels shared by the domain counters.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records store latency by operation and collection.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like and unlike attempts by outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_post_like_toggles_total",
		Help: "Total number of like toggles by action and result",
	}, []string{"action", "result"})

	// MediaOperations counts media host uploads and deletions by outcome.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_media_operations_total",
		Help: "Total number of media operations by operation and result",
	}, []string{"op", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLikeToggle counts one like or unlike attempt.
func RecordLikeToggle(action, result string) {
	LikeToggles.WithLabelValues(action, result).Inc()
}

// RecordMediaOperation counts one media upload or destroy.
func RecordMediaOperation(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	MediaOperations.WithLabelValues(op, result).Inc()
}
