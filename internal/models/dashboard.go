package models

import "time"

// QueueStatus is the live (not time-windowed) view of a queue.
type QueueStatus struct {
	CreatedJobs         int      `json:"created_jobs"`
	ActiveJobs          int      `json:"active_jobs"`
	RetryJobs           int      `json:"retry_jobs"`
	EstimatedCompletion *float64 `json:"estimated_completion_seconds,omitempty"`
}

// PendingJobs counts jobs waiting to run.
func (s QueueStatus) PendingJobs() int {
	return s.CreatedJobs + s.RetryJobs
}

// RecentCompletionMetrics samples jobs completed within the trailing
// window used for completion estimates.
type RecentCompletionMetrics struct {
	CompletedCount    int      `json:"completed_count"`
	AvgProcessingTime *float64 `json:"avg_processing_time_seconds,omitempty"`
}

// DashboardStats are historical, time-window-filtered queue statistics.
type DashboardStats struct {
	TotalJobs     int       `json:"total_jobs"`
	CompletedJobs int       `json:"completed_jobs"`
	FailedJobs    int       `json:"failed_jobs"`
	CancelledJobs int       `json:"cancelled_jobs"`
	TimeRange     TimeRange `json:"time_range"`

	AvgProcessingTime *float64 `json:"avg_processing_time_seconds,omitempty"`
	AvgWaitTime       *float64 `json:"avg_wait_time_seconds,omitempty"`
	AvgEndToEndTime   *float64 `json:"avg_end_to_end_time_seconds,omitempty"`
}

// FailureRate is failed/(failed+completed) as a percentage, 0 when no
// jobs reached a terminal processed state.
func (s DashboardStats) FailureRate() float64 {
	processed := s.CompletedJobs + s.FailedJobs
	if processed == 0 {
		return 0
	}
	return float64(s.FailedJobs) / float64(processed) * 100
}

// Throughput series categories.
const (
	CategoryCompleted = "Completed"
	CategoryFailed    = "Failed"
)

// ThroughputPoint is one (bucket, category) sample of the throughput
// series. Timestamp is the start of the bucket.
type ThroughputPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Count     int       `json:"count"`
}
