package service

import (
	"time"

	"pgboss-console/internal/models"
)

// ThroughputBucket is one database row of the throughput query: a
// bucket-start timestamp with completion and failure counts.
type ThroughputBucket struct {
	Timestamp time.Time
	Completed int
	Failed    int
}

// NormalizeThroughput turns raw database buckets into a dense,
// chart-ready series:
//
//   - timestamps are re-aligned to the bucket width, so a drifting
//     database clock or partial bucket cannot misplace a sample
//   - every bucket inside the window is present, zero-filled where the
//     database returned no row
//   - only categories that actually occur in the data are emitted, and
//     within one bucket Completed precedes Failed
//
// Bounded ranges emit exactly window/bucketWidth buckets, grid-aligned
// and ending at the bucket containing now; the unbounded range spans the
// data itself. No data in an unbounded window yields an empty series.
func NormalizeThroughput(raw []ThroughputBucket, timeRange models.TimeRange, now time.Time) []models.ThroughputPoint {
	bucketSeconds := int64(timeRange.BucketSeconds())

	completed := make(map[int64]int)
	failed := make(map[int64]int)
	var minBucket, maxBucket int64
	first := true
	for _, b := range raw {
		bucket := alignBucket(b.Timestamp.Unix(), bucketSeconds)
		completed[bucket] += b.Completed
		failed[bucket] += b.Failed
		if first || bucket < minBucket {
			minBucket = bucket
		}
		if first || bucket > maxBucket {
			maxBucket = bucket
		}
		first = false
	}

	hasCompleted := false
	for _, n := range completed {
		if n > 0 {
			hasCompleted = true
			break
		}
	}
	hasFailed := false
	for _, n := range failed {
		if n > 0 {
			hasFailed = true
			break
		}
	}

	startBucket, endBucket := minBucket, maxBucket
	if d := timeRange.Duration(); d > 0 {
		buckets := int64(d.Seconds()) / bucketSeconds
		endBucket = alignBucket(now.Unix(), bucketSeconds)
		startBucket = endBucket - (buckets-1)*bucketSeconds
	} else if first {
		// Unbounded range with no data: nothing to span.
		return []models.ThroughputPoint{}
	}

	points := make([]models.ThroughputPoint, 0)
	for bucket := startBucket; bucket <= endBucket; bucket += bucketSeconds {
		ts := time.Unix(bucket, 0).UTC()
		if hasCompleted {
			points = append(points, models.ThroughputPoint{
				Timestamp: ts,
				Category:  models.CategoryCompleted,
				Count:     completed[bucket],
			})
		}
		if hasFailed {
			points = append(points, models.ThroughputPoint{
				Timestamp: ts,
				Category:  models.CategoryFailed,
				Count:     failed[bucket],
			})
		}
	}
	return points
}

func alignBucket(epoch, bucketSeconds int64) int64 {
	bucket := epoch / bucketSeconds
	if epoch < 0 && epoch%bucketSeconds != 0 {
		bucket--
	}
	return bucket * bucketSeconds
}
