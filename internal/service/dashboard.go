package service

import (
	"context"
	"time"

	"pgboss-console/internal/models"
	"pgboss-console/internal/schema"
	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// FetchQueueStatus reports the live pending/active counts for one queue
// plus an estimated drain time derived from recent completions.
func FetchQueueStatus(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (models.QueueStatus, error) {
	var status models.QueueStatus

	telemetry.QueriesTotal.Inc()
	if err := db.QueryRow(ctx, adapter.QueueStatusSQL(), queue).Scan(
		&status.CreatedJobs,
		&status.ActiveJobs,
		&status.RetryJobs,
	); err != nil {
		return models.QueueStatus{}, wrapDBError(err)
	}

	metrics, err := FetchRecentCompletionMetrics(ctx, db, adapter, queue)
	if err != nil {
		return models.QueueStatus{}, err
	}
	status.EstimatedCompletion = EstimateCompletion(status.PendingJobs(), metrics)
	return status, nil
}

// FetchRecentCompletionMetrics samples completions from the trailing 15
// minutes, the window the completion estimate is based on.
func FetchRecentCompletionMetrics(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (models.RecentCompletionMetrics, error) {
	var m models.RecentCompletionMetrics

	telemetry.QueriesTotal.Inc()
	if err := db.QueryRow(ctx, adapter.RecentCompletionMetricsSQL(), queue).Scan(
		&m.CompletedCount,
		&m.AvgProcessingTime,
	); err != nil {
		return models.RecentCompletionMetrics{}, wrapDBError(err)
	}
	return m, nil
}

// EstimateCompletion projects how long the pending backlog will take at
// the recently observed per-job processing time. No estimate is made
// without a meaningful recent sample.
func EstimateCompletion(pendingJobs int, metrics models.RecentCompletionMetrics) *float64 {
	if metrics.CompletedCount <= 0 || metrics.AvgProcessingTime == nil || *metrics.AvgProcessingTime <= 0 {
		return nil
	}
	estimate := float64(pendingJobs) * *metrics.AvgProcessingTime
	return &estimate
}

// FetchDashboardStats aggregates one queue's historical statistics over
// a trailing window. The unbounded range omits the time predicate
// entirely instead of binding a sentinel date.
func FetchDashboardStats(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string, timeRange models.TimeRange, now time.Time) (models.DashboardStats, error) {
	start := timeRange.StartTime(now)

	params := []any{queue}
	if start != nil {
		params = append(params, *start)
	}

	stats := models.DashboardStats{TimeRange: timeRange}
	telemetry.QueriesTotal.Inc()
	if err := db.QueryRow(ctx, adapter.DashboardStatsSQL(start != nil), params...).Scan(
		&stats.TotalJobs,
		&stats.CompletedJobs,
		&stats.FailedJobs,
		&stats.CancelledJobs,
		&stats.AvgProcessingTime,
		&stats.AvgWaitTime,
		&stats.AvgEndToEndTime,
	); err != nil {
		return models.DashboardStats{}, wrapDBError(err)
	}
	return stats, nil
}

// FetchThroughput returns the gap-filled completion/failure series for
// one queue. Bucketing happens in the database; the normalizer re-checks
// alignment and zero-fills the window.
func FetchThroughput(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string, timeRange models.TimeRange, now time.Time) ([]models.ThroughputPoint, error) {
	bucketSeconds := timeRange.BucketSeconds()

	// The statement always carries the time predicate; the unbounded
	// range binds the epoch, which no pg-boss job predates.
	start := time.Unix(0, 0).UTC()
	if s := timeRange.StartTime(now); s != nil {
		start = *s
	}

	telemetry.QueriesTotal.Inc()
	rows, err := db.Query(ctx, adapter.ThroughputSQL(bucketSeconds), queue, start)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var raw []ThroughputBucket
	for rows.Next() {
		var b ThroughputBucket
		if err := rows.Scan(&b.Timestamp, &b.Completed, &b.Failed); err != nil {
			return nil, wrapDBError(err)
		}
		raw = append(raw, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}

	return NormalizeThroughput(raw, timeRange, now), nil
}
