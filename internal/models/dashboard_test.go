package models

import "testing"

func TestFailureRate(t *testing.T) {
	cases := []struct {
		completed, failed int
		want              float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{0, 10, 100},
		{95, 5, 5},
		{50, 50, 50},
	}
	for _, c := range cases {
		s := DashboardStats{CompletedJobs: c.completed, FailedJobs: c.failed}
		if got := s.FailureRate(); got != c.want {
			t.Errorf("FailureRate(completed=%d, failed=%d) = %v, want %v", c.completed, c.failed, got, c.want)
		}
	}
}

func TestQueueStatusPendingJobs(t *testing.T) {
	s := QueueStatus{CreatedJobs: 3, ActiveJobs: 9, RetryJobs: 4}
	if got := s.PendingJobs(); got != 7 {
		t.Fatalf("PendingJobs = %d, want created+retry = 7", got)
	}
}
