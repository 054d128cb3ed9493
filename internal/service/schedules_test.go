package service

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	next := nextRun("0 12 * * *", nil, now)
	if next == nil {
		t.Fatal("expected a next run")
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next run = %v, want %v", next, want)
	}
}

func TestNextRunHonorsTimezone(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	tz := "America/New_York"

	next := nextRun("0 12 * * *", &tz, now)
	if next == nil {
		t.Fatal("expected a next run")
	}
	// Noon eastern is 16:00 UTC during DST.
	if got := next.UTC(); got.Hour() != 16 {
		t.Fatalf("next run = %v, want noon eastern", got)
	}
}

func TestNextRunInvalidInputs(t *testing.T) {
	now := time.Now()

	if next := nextRun("not a cron", nil, now); next != nil {
		t.Fatalf("invalid expression should yield no next run, got %v", next)
	}

	// Unknown timezone falls back to UTC rather than failing.
	tz := "Mars/Olympus_Mons"
	if next := nextRun("*/5 * * * *", &tz, now); next == nil {
		t.Fatal("unknown timezone should fall back to UTC")
	}
}
