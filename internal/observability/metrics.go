package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts created posts by source (form, markdown, seed).
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_posts_created_total",
		Help: "Total number of posts created by source",
	}, []string{"source"})

	// SlugCollisions counts slug probes that hit an existing record.
	SlugCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_slug_collisions_total",
		Help: "Total number of slug candidates rejected because they were taken",
	})

	// SlugConflictRetries counts writes retried after a slug uniqueness violation.
	SlugConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_slug_conflict_retries_total",
		Help: "Total number of post writes retried after a slug uniqueness violation",
	})

	// LikeToggles counts like toggles by resulting action (liked, unliked).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_like_toggles_total",
		Help: "Total number of like toggles by action",
	}, []string{"action"})

	// LikeToggleRetries counts toggles re-read after losing a race.
	LikeToggleRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_like_toggle_retries_total",
		Help: "Total number of like toggles retried after a concurrent write",
	})

	// MarkdownImports counts markdown imports by result.
	MarkdownImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_markdown_imports_total",
		Help: "Total number of markdown imports by result",
	}, []string{"result"})

	// PostViews counts view counter increments.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_post_views_total",
		Help: "Total number of post views recorded",
	})
)

// DatabaseMetrics records query latency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
