package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"pgboss-console/internal/models"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		total, pageSize, page, want int
	}{
		{0, 50, 0, 0},
		{0, 50, 3, 0},
		{10, 50, 0, 0},
		{120, 50, 0, 0},
		{120, 50, 1, 1},
		{120, 50, 2, 2},
		{120, 50, 5, 2},
		{100, 50, 2, 1},
		{51, 50, 9, 1},
		{120, 50, -1, 0},
	}
	for _, c := range cases {
		if got := ClampPage(c.total, c.pageSize, c.page); got != c.want {
			t.Errorf("ClampPage(%d, %d, %d) = %d, want %d", c.total, c.pageSize, c.page, got, c.want)
		}
	}
}

func TestJobQueryFilterParams(t *testing.T) {
	state := models.StateFailed

	q := JobQuery{Queue: "emails"}
	if got := q.filterParams(); len(got) != 1 || got[0] != "emails" {
		t.Fatalf("bare query params = %v", got)
	}

	q.State = &state
	if got := q.filterParams(); len(got) != 2 || got[1] != "failed" {
		t.Fatalf("state param = %v", got)
	}

	q.SearchField = models.SearchByID
	q.SearchText = "abc"
	got := q.filterParams()
	if len(got) != 3 || got[2] != "%abc%" {
		t.Fatalf("search param should be wrapped in wildcards: %v", got)
	}

	// Search field without text contributes nothing.
	q.State = nil
	q.SearchText = ""
	if got := q.filterParams(); len(got) != 1 {
		t.Fatalf("empty search text must not bind a param: %v", got)
	}
}

func TestBulkMutatePartialSuccess(t *testing.T) {
	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
	}

	attempted := 0
	failEvery3rd := func(id uuid.UUID) error {
		attempted++
		if attempted%3 == 0 {
			return errors.New("update rejected")
		}
		return nil
	}

	succeeded := bulkMutate(context.Background(), ids, "retry", failEvery3rd)
	if attempted != len(ids) {
		t.Fatalf("attempted %d ids, want all %d; a failure must not stop the rest", attempted, len(ids))
	}
	if succeeded != 7 {
		t.Fatalf("succeeded = %d, want 7", succeeded)
	}
}

func TestBulkMutateAllFail(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	succeeded := bulkMutate(context.Background(), ids, "delete", func(uuid.UUID) error {
		return errors.New("gone")
	})
	if succeeded != 0 {
		t.Fatalf("succeeded = %d, want 0", succeeded)
	}
}

func TestEstimateCompletion(t *testing.T) {
	avg := 12.0
	metrics := models.RecentCompletionMetrics{CompletedCount: 20, AvgProcessingTime: &avg}

	est := EstimateCompletion(50, metrics)
	if est == nil || *est != 600 {
		t.Fatalf("estimate = %v, want 600", est)
	}

	if est := EstimateCompletion(50, models.RecentCompletionMetrics{}); est != nil {
		t.Fatalf("no recent completions should yield no estimate, got %v", est)
	}

	zero := 0.0
	if est := EstimateCompletion(50, models.RecentCompletionMetrics{CompletedCount: 5, AvgProcessingTime: &zero}); est != nil {
		t.Fatalf("zero processing time should yield no estimate, got %v", est)
	}

	if est := EstimateCompletion(0, metrics); est == nil || *est != 0 {
		t.Fatalf("empty backlog with live workers estimates zero, got %v", est)
	}
}
