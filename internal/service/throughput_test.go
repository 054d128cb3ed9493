package service

import (
	"testing"
	"time"

	"pgboss-console/internal/models"
)

func TestNormalizeThroughputZeroFillsWindow(t *testing.T) {
	now := time.Unix(1_700_000_400, 0).UTC()
	raw := []ThroughputBucket{
		{Timestamp: now.Add(-10 * time.Minute), Completed: 7, Failed: 0},
		{Timestamp: now.Add(-5 * time.Minute), Completed: 3, Failed: 0},
	}

	points := NormalizeThroughput(raw, models.RangeOneHour, now)

	// One hour of 300s buckets is exactly 12; only Completed occurred,
	// so only Completed is emitted.
	if len(points) != 12 {
		t.Fatalf("got %d points, want 12", len(points))
	}
	total := 0
	for _, p := range points {
		if p.Category != models.CategoryCompleted {
			t.Fatalf("unexpected category %q", p.Category)
		}
		total += p.Count
	}
	if total != 10 {
		t.Fatalf("counts should be preserved, got %d want 10", total)
	}

	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			t.Fatal("points must be in ascending bucket order")
		}
		if step := points[i].Timestamp.Sub(points[i-1].Timestamp); step != 5*time.Minute {
			t.Fatalf("bucket step = %v, want 5m", step)
		}
	}
}

func TestNormalizeThroughputBothCategories(t *testing.T) {
	now := time.Unix(1_700_003_600, 0).UTC()
	raw := []ThroughputBucket{
		{Timestamp: now.Add(-30 * time.Minute), Completed: 4, Failed: 1},
	}

	points := NormalizeThroughput(raw, models.RangeOneHour, now)
	if len(points) != 24 {
		t.Fatalf("got %d points, want 12 buckets x 2 categories", len(points))
	}
	// Within a bucket Completed precedes Failed.
	for i := 0; i < len(points); i += 2 {
		if points[i].Category != models.CategoryCompleted || points[i+1].Category != models.CategoryFailed {
			t.Fatalf("category order wrong at %d: %q then %q", i, points[i].Category, points[i+1].Category)
		}
		if !points[i].Timestamp.Equal(points[i+1].Timestamp) {
			t.Fatal("paired categories must share the bucket timestamp")
		}
	}
}

func TestNormalizeThroughputRealignsDriftedTimestamps(t *testing.T) {
	now := time.Unix(1_700_000_400, 0).UTC()
	bucket := now.Add(-10 * time.Minute)
	raw := []ThroughputBucket{
		{Timestamp: bucket, Completed: 2},
		{Timestamp: bucket.Add(17 * time.Second), Completed: 3},
	}

	points := NormalizeThroughput(raw, models.RangeOneHour, now)
	for _, p := range points {
		if p.Timestamp.Equal(bucket) && p.Count != 5 {
			t.Fatalf("drifted sample should merge into its bucket, got %d", p.Count)
		}
		if sec := p.Timestamp.Unix(); sec%300 != 0 {
			t.Fatalf("timestamp %v not aligned to bucket grid", p.Timestamp)
		}
	}
}

func TestNormalizeThroughputUnboundedSpansData(t *testing.T) {
	now := time.Now()
	day := 24 * time.Hour
	first := time.Unix(1_600_000_000, 0).UTC().Truncate(day)
	raw := []ThroughputBucket{
		{Timestamp: first, Completed: 1},
		{Timestamp: first.Add(3 * day), Completed: 2},
	}

	points := NormalizeThroughput(raw, models.RangeAll, now)
	// 4 daily buckets from first to first+3d, one category.
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	if !points[0].Timestamp.Equal(first) {
		t.Fatalf("series should start at the first observed bucket, got %v", points[0].Timestamp)
	}
	if points[0].Count != 1 || points[3].Count != 2 {
		t.Fatalf("edge buckets should keep their counts: %d, %d", points[0].Count, points[3].Count)
	}
	if points[1].Count != 0 || points[2].Count != 0 {
		t.Fatal("interior buckets should be zero-filled")
	}
}

func TestNormalizeThroughputUnboundedEmpty(t *testing.T) {
	points := NormalizeThroughput(nil, models.RangeAll, time.Now())
	if len(points) != 0 {
		t.Fatalf("no data in an unbounded window should yield an empty series, got %d", len(points))
	}
}

func TestNormalizeThroughputBoundedEmptyStillZeroFills(t *testing.T) {
	now := time.Unix(1_700_000_400, 0).UTC()
	points := NormalizeThroughput(nil, models.RangeOneHour, now)
	// No category was observed, so nothing is emitted even though the
	// window itself is known.
	if len(points) != 0 {
		t.Fatalf("got %d points, want 0", len(points))
	}
}
