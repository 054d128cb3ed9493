package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"pgboss-console/internal/models"
	"pgboss-console/internal/schema"
	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// FetchSchedules lists the cron schedules of one pg-boss installation.
// Generations without a schedule table report an empty list rather than
// an error. NextRun is computed client-side from the cron expression in
// the schedule's own timezone; schedules whose expression or timezone do
// not parse simply carry no next run.
func FetchSchedules(ctx context.Context, db store.Querier, adapter schema.Adapter, now time.Time) ([]models.Schedule, error) {
	sql, ok := adapter.FetchSchedulesSQL()
	if !ok {
		return []models.Schedule{}, nil
	}

	telemetry.QueriesTotal.Inc()
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	hasKey := adapter.ScheduleHasKey()
	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		var s models.Schedule
		if hasKey {
			err = rows.Scan(&s.Name, &s.Key, &s.Cron, &s.Timezone, &s.Data, &s.Options, &s.CreatedOn, &s.UpdatedOn)
		} else {
			err = rows.Scan(&s.Name, &s.Cron, &s.Timezone, &s.Data, &s.Options, &s.CreatedOn, &s.UpdatedOn)
		}
		if err != nil {
			return nil, wrapDBError(err)
		}
		s.NextRun = nextRun(s.Cron, s.Timezone, now)
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return schedules, nil
}

// nextRun evaluates a standard five-field cron expression against the
// schedule's timezone (UTC when unset or unknown).
func nextRun(expr string, timezone *string, now time.Time) *time.Time {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		log.WithField("cron", expr).WithError(err).Debug("unparseable cron expression")
		return nil
	}

	loc := time.UTC
	if timezone != nil && *timezone != "" {
		parsed, err := time.LoadLocation(*timezone)
		if err != nil {
			log.WithField("timezone", *timezone).WithError(err).Debug("unknown schedule timezone")
		} else {
			loc = parsed
		}
	}

	next := sched.Next(now.In(loc))
	if next.IsZero() {
		return nil
	}
	return &next
}
