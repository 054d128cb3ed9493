package models

import "time"

// TimeRange is the trailing window a dashboard view is filtered to.
type TimeRange string

const (
	RangeOneHour        TimeRange = "1h"
	RangeThreeHours     TimeRange = "3h"
	RangeTwentyFourHour TimeRange = "24h"
	RangeSevenDays      TimeRange = "7d"
	RangeThirtyDays     TimeRange = "30d"
	RangeAll            TimeRange = "all"
)

// Valid reports whether r is a known range.
func (r TimeRange) Valid() bool {
	switch r {
	case RangeOneHour, RangeThreeHours, RangeTwentyFourHour, RangeSevenDays, RangeThirtyDays, RangeAll:
		return true
	}
	return false
}

// Duration is the window length, 0 for the unbounded range.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case RangeOneHour:
		return time.Hour
	case RangeThreeHours:
		return 3 * time.Hour
	case RangeTwentyFourHour:
		return 24 * time.Hour
	case RangeSevenDays:
		return 7 * 24 * time.Hour
	case RangeThirtyDays:
		return 30 * 24 * time.Hour
	}
	return 0
}

// StartTime returns the window start relative to now, or nil for the
// unbounded range. Unbounded windows omit the time filter entirely
// rather than binding a sentinel date.
func (r TimeRange) StartTime(now time.Time) *time.Time {
	d := r.Duration()
	if d == 0 {
		return nil
	}
	start := now.Add(-d)
	return &start
}

// BucketSeconds is the throughput bucket width for this window. It is a
// function of the window alone and is not independently configurable.
func (r TimeRange) BucketSeconds() int {
	switch r {
	case RangeOneHour:
		return 300
	case RangeThreeHours:
		return 900
	case RangeTwentyFourHour:
		return 3600
	default:
		return 86400
	}
}
