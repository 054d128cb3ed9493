package models

// Queue is one pg-boss queue, identified by name, with aggregate state
// counts and the optional queue-level configuration.
type Queue struct {
	Name   string       `json:"name"`
	Stats  QueueStats   `json:"stats"`
	Config *QueueConfig `json:"config,omitempty"` // nil when the schema has no queue table
}

// QueueStats holds per-state job counts for one queue.
type QueueStats struct {
	Created   int `json:"created"`
	Retry     int `json:"retry"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Total is the sum across all states.
func (s QueueStats) Total() int {
	return s.Created + s.Retry + s.Active + s.Completed + s.Failed + s.Cancelled
}

// QueueConfig mirrors the pg-boss queue table. Retention is always
// normalized to seconds, regardless of which unit the schema stores.
type QueueConfig struct {
	RetentionSeconds *int    `json:"retention_seconds,omitempty"`
	DeletionSeconds  *int    `json:"deletion_seconds,omitempty"` // newest generation only
	ExpireSeconds    *int    `json:"expire_seconds,omitempty"`
	RetryLimit       *int    `json:"retry_limit,omitempty"`
	Policy           *string `json:"policy,omitempty"`
}
