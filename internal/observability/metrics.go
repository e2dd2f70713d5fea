package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsCreated counts notification rows written by fan-out, by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notifications_created_total",
		Help: "Total number of notification rows written by fan-out",
	}, []string{"type"})

	// FanOutFailures counts fan-outs that failed after the triggering entity was stored.
	FanOutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_fanout_failures_total",
		Help: "Total number of notification fan-outs that failed",
	}, []string{"type"})

	// UniqueConflicts counts rejected duplicate inserts (likes, follows, accounts).
	UniqueConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_unique_conflicts_total",
		Help: "Total number of inserts rejected by a uniqueness constraint",
	}, []string{"table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
