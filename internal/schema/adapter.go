package schema

import (
	"fmt"
	"strings"

	"pgboss-console/internal/models"
)

// Adapter builds every SQL statement the query services need, in the
// dialect of one schema generation. All construction is pure; adapters
// never touch the database.
//
// Parameter positions are the contract: $1 is always the queue name for
// queue-scoped statements, the index increments only for filters that
// are actually present, and CountJobsSQL and FetchJobsSQL agree on the
// position of every shared parameter. The select list returned by
// JobSelectColumns is decoded positionally by the job service, so its
// order must never change independently of the decode.
type Adapter interface {
	Group() AdapterGroup
	Schema() string
	JobColumns() JobColumns
	ScheduleColumns() *ScheduleColumns

	// Capability flags for the optional tables and unit quirks.
	HasQueueTable() bool
	HasScheduleTable() bool
	ScheduleHasKey() bool
	RetentionInMinutes() bool

	FetchQueuesSQL() string
	FetchQueueConfigSQL() (string, bool)

	CountJobsSQL(hasStateFilter bool, searchField models.JobSearchField, searchText string) string
	FetchJobsSQL(hasStateFilter bool, searchField models.JobSearchField, searchText string, sortColumn, sortDirection string) string
	JobSelectColumns() string

	UpdateJobStateSQL() string
	DeleteJobSQL() string
	RetryAllFailedSQL() string
	CancelAllPendingSQL() string
	PurgeCompletedSQL() string
	PurgeFailedSQL() string

	FetchSchedulesSQL() (string, bool)

	QueueStatusSQL() string
	DashboardStatsSQL(hasTimeFilter bool) string
	ThroughputSQL(bucketSeconds int) string
	RecentCompletionMetricsSQL() string
}

// baseAdapter supplies the SQL shared by every generation. Concrete
// adapters override only where their schema diverges: queue config
// columns, schedule key column and the expiry column type.
type baseAdapter struct {
	schema    string
	group     AdapterGroup
	jobCols   JobColumns
	schedCols *ScheduleColumns
	jobSelect string
}

func (b *baseAdapter) Group() AdapterGroup               { return b.group }
func (b *baseAdapter) Schema() string                    { return b.schema }
func (b *baseAdapter) JobColumns() JobColumns            { return b.jobCols }
func (b *baseAdapter) ScheduleColumns() *ScheduleColumns { return b.schedCols }
func (b *baseAdapter) HasScheduleTable() bool            { return b.schedCols != nil }
func (b *baseAdapter) ScheduleHasKey() bool              { return b.schedCols != nil && b.schedCols.Key != "" }

func (b *baseAdapter) jobTable() string { return b.schema + ".job" }

func (b *baseAdapter) FetchQueuesSQL() string {
	return fmt.Sprintf(`SELECT name,
    COUNT(*) FILTER (WHERE state = 'created') as created,
    COUNT(*) FILTER (WHERE state = 'retry') as retry,
    COUNT(*) FILTER (WHERE state = 'active') as active,
    COUNT(*) FILTER (WHERE state = 'completed') as completed,
    COUNT(*) FILTER (WHERE state = 'failed') as failed,
    COUNT(*) FILTER (WHERE state = 'cancelled') as cancelled
FROM %s
GROUP BY name
ORDER BY name`, b.jobTable())
}

func (b *baseAdapter) searchColumn(field models.JobSearchField) string {
	switch field {
	case models.SearchByInput:
		return b.jobCols.Data + "::text"
	case models.SearchByOutput:
		return b.jobCols.Output + "::text"
	default:
		return b.jobCols.ID + "::text"
	}
}

// jobWhereClause builds the shared WHERE clause for job count and fetch
// statements. It returns the clause and the next free parameter index so
// fetch can append limit/offset. The index advances only for filters
// that are present.
func (b *baseAdapter) jobWhereClause(hasStateFilter bool, searchField models.JobSearchField, searchText string) (string, int) {
	conditions := []string{"name = $1"}
	paramIndex := 2

	if hasStateFilter {
		conditions = append(conditions, fmt.Sprintf("state = $%d", paramIndex))
		paramIndex++
	}
	if searchField != "" && searchText != "" {
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", b.searchColumn(searchField), paramIndex))
		paramIndex++
	}

	return strings.Join(conditions, " AND "), paramIndex
}

func (b *baseAdapter) CountJobsSQL(hasStateFilter bool, searchField models.JobSearchField, searchText string) string {
	where, _ := b.jobWhereClause(hasStateFilter, searchField, searchText)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", b.jobTable(), where)
}

func (b *baseAdapter) FetchJobsSQL(hasStateFilter bool, searchField models.JobSearchField, searchText string, sortColumn, sortDirection string) string {
	where, next := b.jobWhereClause(hasStateFilter, searchField, searchText)
	return fmt.Sprintf(`SELECT %s
FROM %s
WHERE %s
ORDER BY %s %s NULLS LAST
LIMIT $%d OFFSET $%d`, b.jobSelect, b.jobTable(), where, sortColumn, sortDirection, next, next+1)
}

func (b *baseAdapter) JobSelectColumns() string { return b.jobSelect }

func (b *baseAdapter) UpdateJobStateSQL() string {
	return fmt.Sprintf("UPDATE %s SET state = $1 WHERE id = $2", b.jobTable())
}

func (b *baseAdapter) DeleteJobSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", b.jobTable())
}

func (b *baseAdapter) RetryAllFailedSQL() string {
	return fmt.Sprintf("UPDATE %s SET state = 'retry' WHERE name = $1 AND state = 'failed'", b.jobTable())
}

func (b *baseAdapter) CancelAllPendingSQL() string {
	return fmt.Sprintf("UPDATE %s SET state = 'cancelled' WHERE name = $1 AND state IN ('created', 'retry')", b.jobTable())
}

func (b *baseAdapter) PurgeCompletedSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE name = $1 AND state = 'completed'", b.jobTable())
}

func (b *baseAdapter) PurgeFailedSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE name = $1 AND state = 'failed'", b.jobTable())
}

func (b *baseAdapter) QueueStatusSQL() string {
	return fmt.Sprintf(`SELECT
    COUNT(*) FILTER (WHERE state = 'created') as created_jobs,
    COUNT(*) FILTER (WHERE state = 'active') as active_jobs,
    COUNT(*) FILTER (WHERE state = 'retry') as retry_jobs
FROM %s
WHERE name = $1`, b.jobTable())
}

func (b *baseAdapter) DashboardStatsSQL(hasTimeFilter bool) string {
	cols := b.jobCols
	timeFilter := ""
	if hasTimeFilter {
		timeFilter = fmt.Sprintf(" AND %s >= $2", cols.CreatedOn)
	}

	return fmt.Sprintf(`SELECT
    COUNT(*) FILTER (WHERE true%[1]s) as total_jobs,
    COUNT(*) FILTER (WHERE state = 'completed'%[1]s) as completed_jobs,
    COUNT(*) FILTER (WHERE state = 'failed'%[1]s) as failed_jobs,
    COUNT(*) FILTER (WHERE state = 'cancelled'%[1]s) as cancelled_jobs,
    AVG(EXTRACT(EPOCH FROM (%[3]s - %[4]s)))
        FILTER (WHERE %[3]s IS NOT NULL AND %[4]s IS NOT NULL%[1]s) as avg_processing_time,
    AVG(EXTRACT(EPOCH FROM (%[4]s - %[5]s)))
        FILTER (WHERE %[4]s IS NOT NULL%[1]s) as avg_wait_time,
    AVG(EXTRACT(EPOCH FROM (%[3]s - %[5]s)))
        FILTER (WHERE %[3]s IS NOT NULL%[1]s) as avg_end_to_end_time
FROM %[2]s
WHERE name = $1`, timeFilter, b.jobTable(), cols.CompletedOn, cols.StartedOn, cols.CreatedOn)
}

// ThroughputSQL buckets completions in the database so only one row per
// (bucket, state) crosses the wire. The caller re-buckets defensively
// and gap-fills; see the dashboard service.
func (b *baseAdapter) ThroughputSQL(bucketSeconds int) string {
	cols := b.jobCols
	return fmt.Sprintf(`WITH buckets AS (
    SELECT
        to_timestamp(floor(EXTRACT(EPOCH FROM %[1]s) / %[2]d) * %[2]d) as bucket,
        state
    FROM %[3]s
    WHERE name = $1
      AND %[1]s >= $2
      AND state IN ('completed', 'failed')
)
SELECT
    bucket as timestamp,
    COUNT(*) FILTER (WHERE state = 'completed') as completed,
    COUNT(*) FILTER (WHERE state = 'failed') as failed
FROM buckets
GROUP BY bucket
ORDER BY bucket`, cols.CompletedOn, bucketSeconds, b.jobTable())
}

func (b *baseAdapter) RecentCompletionMetricsSQL() string {
	cols := b.jobCols
	return fmt.Sprintf(`SELECT
    COUNT(*) as completed_count,
    AVG(EXTRACT(EPOCH FROM (%[1]s - %[2]s))) as avg_processing_time
FROM %[3]s
WHERE name = $1
    AND state = 'completed'
    AND %[1]s >= NOW() - INTERVAL '15 minutes'
    AND %[2]s IS NOT NULL
    AND %[1]s IS NOT NULL`, cols.CompletedOn, cols.StartedOn, b.jobTable())
}

// intervalJobSelect is the select list for generations that store expiry
// as an interval; the epoch extraction keeps decode uniform across
// generations (expiry always arrives as integer seconds).
func intervalJobSelect(cols JobColumns) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s::text, %s, %s, %s, %s, %s, %s::text, %s, %s, EXTRACT(EPOCH FROM %s)::int, %s, %s, %s, %s",
		cols.ID, cols.Name, cols.State, cols.Priority, cols.Data,
		cols.CreatedOn, cols.StartedOn, cols.CompletedOn,
		cols.RetryCount, cols.RetryLimit, cols.Output,
		cols.SingletonKey, cols.SingletonOn,
		cols.ExpireIn, cols.KeepUntil,
		cols.StartAfter, cols.RetryDelay, cols.RetryBackoff)
}

// integerJobSelect is the v11+ variant where expiry is already stored as
// integer seconds.
func integerJobSelect(cols JobColumns) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s::text, %s, %s, %s, %s, %s, %s::text, %s, %s, %s, %s, %s, %s, %s",
		cols.ID, cols.Name, cols.State, cols.Priority, cols.Data,
		cols.CreatedOn, cols.StartedOn, cols.CompletedOn,
		cols.RetryCount, cols.RetryLimit, cols.Output,
		cols.SingletonKey, cols.SingletonOn,
		cols.ExpireIn, cols.KeepUntil,
		cols.StartAfter, cols.RetryDelay, cols.RetryBackoff)
}
