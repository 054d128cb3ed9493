package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	QueriesTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_queries_total", Help: "Queries issued against inspected databases"})
	QueryErrors      = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_query_errors_total", Help: "Queries that failed"})
	SchemaDetections = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_schema_detections_total", Help: "Schema version detections performed"})
	JobMutations     = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_job_mutations_total", Help: "Job state mutations attempted"})
	BulkSuccesses    = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_bulk_successes_total", Help: "Jobs mutated successfully in bulk operations"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "console_rate_limit_rejects_total", Help: "Mutation requests rejected by rate limiter"})
	ActivePools      = prometheus.NewGauge(prometheus.GaugeOpts{Name: "console_active_pools", Help: "Open connection pools"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			QueriesTotal,
			QueryErrors,
			SchemaDetections,
			JobMutations,
			BulkSuccesses,
			RateLimitRejects,
			ActivePools,
		)
	})
	return promhttp.Handler()
}
