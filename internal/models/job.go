package models

import (
	"time"

	"github.com/google/uuid"
)

// JobState enumerates the pg-boss job lifecycle states.
type JobState string

const (
	StateCreated   JobState = "created"
	StateRetry     JobState = "retry"
	StateActive    JobState = "active"
	StateCompleted JobState = "completed"
	StateCancelled JobState = "cancelled"
	StateFailed    JobState = "failed"
)

// JobStates lists every state in display order.
var JobStates = []JobState{StateCreated, StateRetry, StateActive, StateCompleted, StateCancelled, StateFailed}

// Valid reports whether s is one of the six known states.
func (s JobState) Valid() bool {
	switch s {
	case StateCreated, StateRetry, StateActive, StateCompleted, StateCancelled, StateFailed:
		return true
	}
	return false
}

// Job is a single pg-boss job row. Data and Output are opaque JSON text;
// the console never interprets them beyond pass-through.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	State       JobState   `json:"state"`
	Priority    int        `json:"priority"`
	Data        string     `json:"data"`
	CreatedOn   time.Time  `json:"created_on"`
	StartedOn   *time.Time `json:"started_on,omitempty"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
	RetryCount  int        `json:"retry_count"`
	RetryLimit  int        `json:"retry_limit"`
	Output      *string    `json:"output,omitempty"`

	// Job-level settings that can override queue defaults.
	SingletonKey  *string    `json:"singleton_key,omitempty"`
	SingletonOn   *time.Time `json:"singleton_on,omitempty"`
	ExpireSeconds *int       `json:"expire_seconds,omitempty"`
	KeepUntil     *time.Time `json:"keep_until,omitempty"`
	StartAfter    *time.Time `json:"start_after,omitempty"`
	RetryDelay    *int       `json:"retry_delay,omitempty"`
	RetryBackoff  *bool      `json:"retry_backoff,omitempty"`
}

// JobSortField selects the column a job listing is ordered by.
type JobSortField string

const (
	SortByCreatedOn   JobSortField = "created_on"
	SortByStartedOn   JobSortField = "started_on"
	SortByCompletedOn JobSortField = "completed_on"
	SortByPriority    JobSortField = "priority"
	SortByState       JobSortField = "state"
)

// Valid reports whether f names a sortable field.
func (f JobSortField) Valid() bool {
	switch f {
	case SortByCreatedOn, SortByStartedOn, SortByCompletedOn, SortByPriority, SortByState:
		return true
	}
	return false
}

// SortOrder is the listing direction.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Valid reports whether o is ASC or DESC.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// JobSearchField selects which column a text search matches against.
type JobSearchField string

const (
	SearchByID     JobSearchField = "id"
	SearchByInput  JobSearchField = "input"
	SearchByOutput JobSearchField = "output"
)

// Valid reports whether f names a searchable field.
func (f JobSearchField) Valid() bool {
	switch f {
	case SearchByID, SearchByInput, SearchByOutput:
		return true
	}
	return false
}
