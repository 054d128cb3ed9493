package service

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pgboss-console/internal/models"
	"pgboss-console/internal/schema"
	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// JobQuery describes one job listing request.
type JobQuery struct {
	Queue       string
	State       *models.JobState
	SearchText  string
	SearchField models.JobSearchField
	SortBy      models.JobSortField
	Order       models.SortOrder
	Limit       int
	Offset      int
}

func (q JobQuery) hasSearch() bool {
	return q.SearchField != "" && q.SearchText != ""
}

// filterParams builds the positional parameters shared by the count and
// fetch statements. The order must match the WHERE clause the adapter
// builds: queue name, then state, then search pattern, each present only
// when its filter is.
func (q JobQuery) filterParams() []any {
	params := []any{q.Queue}
	if q.State != nil {
		params = append(params, string(*q.State))
	}
	if q.hasSearch() {
		params = append(params, "%"+q.SearchText+"%")
	}
	return params
}

// FetchJobs returns one page of jobs plus the total count for the same
// filter combination.
func FetchJobs(ctx context.Context, db store.Querier, adapter schema.Adapter, q JobQuery) ([]models.Job, int, error) {
	hasState := q.State != nil
	searchField := q.SearchField
	if !q.hasSearch() {
		searchField = ""
	}

	sortColumn := adapter.JobColumns().SortColumn(q.SortBy)
	order := q.Order
	if !order.Valid() {
		order = models.SortDesc
	}

	countSQL := adapter.CountJobsSQL(hasState, searchField, q.SearchText)
	fetchSQL := adapter.FetchJobsSQL(hasState, searchField, q.SearchText, sortColumn, string(order))

	telemetry.QueriesTotal.Inc()
	var total int
	if err := db.QueryRow(ctx, countSQL, q.filterParams()...).Scan(&total); err != nil {
		return nil, 0, wrapDBError(err)
	}

	params := append(q.filterParams(), q.Limit, q.Offset)
	telemetry.QueriesTotal.Inc()
	rows, err := db.Query(ctx, fetchSQL, params...)
	if err != nil {
		return nil, 0, wrapDBError(err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, ok, err := scanJob(rows)
		if err != nil {
			return nil, 0, wrapDBError(err)
		}
		if !ok {
			continue
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err)
	}
	return jobs, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob decodes one row of the adapter's job select list. The scan
// order is the select-list order; the two move together (see the Adapter
// contract).
func scanJob(row rowScanner) (models.Job, bool, error) {
	var (
		job   models.Job
		idRaw string
		state string
		data  *string
	)
	if err := row.Scan(
		&idRaw,
		&job.Name,
		&state,
		&job.Priority,
		&data,
		&job.CreatedOn,
		&job.StartedOn,
		&job.CompletedOn,
		&job.RetryCount,
		&job.RetryLimit,
		&job.Output,
		&job.SingletonKey,
		&job.SingletonOn,
		&job.ExpireSeconds,
		&job.KeepUntil,
		&job.StartAfter,
		&job.RetryDelay,
		&job.RetryBackoff,
	); err != nil {
		return models.Job{}, false, err
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		// Rows with malformed ids are skipped, not fatal.
		return models.Job{}, false, nil
	}
	job.ID = id

	job.State = models.JobState(state)
	if !job.State.Valid() {
		job.State = models.StateCreated
	}
	if data != nil {
		job.Data = *data
	} else {
		job.Data = "{}"
	}
	return job, true, nil
}

// RetryJob moves one job back to the retry state.
func RetryJob(ctx context.Context, db store.Querier, adapter schema.Adapter, jobID uuid.UUID) error {
	return updateJobState(ctx, db, adapter, jobID, models.StateRetry)
}

// CancelJob cancels one job.
func CancelJob(ctx context.Context, db store.Querier, adapter schema.Adapter, jobID uuid.UUID) error {
	return updateJobState(ctx, db, adapter, jobID, models.StateCancelled)
}

func updateJobState(ctx context.Context, db store.Querier, adapter schema.Adapter, jobID uuid.UUID, state models.JobState) error {
	telemetry.JobMutations.Inc()
	if _, err := db.Exec(ctx, adapter.UpdateJobStateSQL(), string(state), jobID.String()); err != nil {
		return wrapDBError(err)
	}
	return nil
}

// DeleteJob removes one job permanently.
func DeleteJob(ctx context.Context, db store.Querier, adapter schema.Adapter, jobID uuid.UUID) error {
	telemetry.JobMutations.Inc()
	if _, err := db.Exec(ctx, adapter.DeleteJobSQL(), jobID.String()); err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Bulk operations attempt every id and report how many succeeded.
// Partial success is a valid outcome; a failed id never stops the rest.

func RetryJobs(ctx context.Context, db store.Querier, adapter schema.Adapter, ids []uuid.UUID) int {
	return bulkMutate(ctx, ids, "retry", func(id uuid.UUID) error {
		return RetryJob(ctx, db, adapter, id)
	})
}

func CancelJobs(ctx context.Context, db store.Querier, adapter schema.Adapter, ids []uuid.UUID) int {
	return bulkMutate(ctx, ids, "cancel", func(id uuid.UUID) error {
		return CancelJob(ctx, db, adapter, id)
	})
}

func DeleteJobs(ctx context.Context, db store.Querier, adapter schema.Adapter, ids []uuid.UUID) int {
	return bulkMutate(ctx, ids, "delete", func(id uuid.UUID) error {
		return DeleteJob(ctx, db, adapter, id)
	})
}

func bulkMutate(ctx context.Context, ids []uuid.UUID, action string, mutate func(uuid.UUID) error) int {
	succeeded := 0
	for _, id := range ids {
		if err := mutate(id); err != nil {
			log.WithFields(log.Fields{"job_id": id, "action": action}).WithError(err).Warn("bulk job mutation failed")
			continue
		}
		succeeded++
	}
	telemetry.BulkSuccesses.Add(float64(succeeded))
	return succeeded
}

// Queue-wide operations return the number of affected rows.

func RetryAllFailed(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (int, error) {
	return execQueueWide(ctx, db, adapter.RetryAllFailedSQL(), queue)
}

func CancelAllPending(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (int, error) {
	return execQueueWide(ctx, db, adapter.CancelAllPendingSQL(), queue)
}

func PurgeCompleted(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (int, error) {
	return execQueueWide(ctx, db, adapter.PurgeCompletedSQL(), queue)
}

func PurgeFailed(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (int, error) {
	return execQueueWide(ctx, db, adapter.PurgeFailedSQL(), queue)
}

func execQueueWide(ctx context.Context, db store.Querier, sql, queue string) (int, error) {
	telemetry.JobMutations.Inc()
	tag, err := db.Exec(ctx, sql, queue)
	if err != nil {
		return 0, wrapDBError(err)
	}
	return int(tag.RowsAffected()), nil
}

// ClampPage snaps an out-of-range page index back to the last valid
// 0-indexed page, so a listing whose total shrank underneath the caller
// can refetch instead of showing an empty page.
func ClampPage(totalJobs, pageSize, page int) int {
	if page < 0 {
		return 0
	}
	totalPages := 1
	if totalJobs > 0 && pageSize > 0 {
		totalPages = (totalJobs + pageSize - 1) / pageSize
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}
