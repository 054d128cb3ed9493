package schema

import "pgboss-console/internal/models"

// JobColumns maps logical job fields to the physical column names of one
// naming generation.
type JobColumns struct {
	ID           string
	Name         string
	State        string
	Priority     string
	Data         string
	CreatedOn    string
	StartedOn    string
	CompletedOn  string
	RetryCount   string
	RetryLimit   string
	Output       string
	SingletonKey string
	SingletonOn  string
	ExpireIn     string
	KeepUntil    string
	StartAfter   string
	RetryDelay   string
	RetryBackoff string
}

// SortColumn resolves a logical sort field to this generation's column.
func (c JobColumns) SortColumn(f models.JobSortField) string {
	switch f {
	case models.SortByStartedOn:
		return c.StartedOn
	case models.SortByCompletedOn:
		return c.CompletedOn
	case models.SortByPriority:
		return c.Priority
	case models.SortByState:
		return c.State
	default:
		return c.CreatedOn
	}
}

// jobColumnsCamelCase covers schema versions 20-23 (pg-boss v7-v9).
var jobColumnsCamelCase = JobColumns{
	ID:           "id",
	Name:         "name",
	State:        "state",
	Priority:     "priority",
	Data:         "data",
	CreatedOn:    "createdon",
	StartedOn:    "startedon",
	CompletedOn:  "completedon",
	RetryCount:   "retrycount",
	RetryLimit:   "retrylimit",
	Output:       "output",
	SingletonKey: "singletonkey",
	SingletonOn:  "singletonon",
	ExpireIn:     "expirein",
	KeepUntil:    "keepuntil",
	StartAfter:   "startafter",
	RetryDelay:   "retrydelay",
	RetryBackoff: "retrybackoff",
}

// jobColumnsSnakeCase covers schema versions 24-25 (pg-boss v10).
var jobColumnsSnakeCase = JobColumns{
	ID:           "id",
	Name:         "name",
	State:        "state",
	Priority:     "priority",
	Data:         "data",
	CreatedOn:    "created_on",
	StartedOn:    "started_on",
	CompletedOn:  "completed_on",
	RetryCount:   "retry_count",
	RetryLimit:   "retry_limit",
	Output:       "output",
	SingletonKey: "singleton_key",
	SingletonOn:  "singleton_on",
	ExpireIn:     "expire_in",
	KeepUntil:    "keep_until",
	StartAfter:   "start_after",
	RetryDelay:   "retry_delay",
	RetryBackoff: "retry_backoff",
}

// jobColumnsV11Plus covers schema versions 26-27 (pg-boss v11+), which
// replaced the expire_in interval with an integer expire_seconds.
var jobColumnsV11Plus = func() JobColumns {
	c := jobColumnsSnakeCase
	c.ExpireIn = "expire_seconds"
	return c
}()

// ScheduleColumns maps logical schedule fields to physical columns. Key
// is empty for generations without the composite key column.
type ScheduleColumns struct {
	Name      string
	Key       string
	Cron      string
	Timezone  string
	Data      string
	Options   string
	CreatedOn string
	UpdatedOn string
}

// scheduleColumnsV10 covers schema versions 24-25. The schedule table
// did not exist before v10 and is always snake_case.
var scheduleColumnsV10 = ScheduleColumns{
	Name:      "name",
	Cron:      "cron",
	Timezone:  "timezone",
	Data:      "data",
	Options:   "options",
	CreatedOn: "created_on",
	UpdatedOn: "updated_on",
}

// scheduleColumnsV11Plus adds the composite key column, allowing several
// schedules to share one name.
var scheduleColumnsV11Plus = func() ScheduleColumns {
	c := scheduleColumnsV10
	c.Key = "key"
	return c
}()
