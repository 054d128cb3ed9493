package service

import (
	"context"

	"pgboss-console/internal/models"
	"pgboss-console/internal/schema"
	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// FetchQueues lists every queue with per-state counts, joined with the
// queue configuration on generations that have a queue table. Retention
// is normalized to seconds; the v10 generation stores minutes.
func FetchQueues(ctx context.Context, db store.Querier, adapter schema.Adapter) ([]models.Queue, error) {
	configs, err := fetchQueueConfigs(ctx, db, adapter)
	if err != nil {
		return nil, err
	}

	telemetry.QueriesTotal.Inc()
	rows, err := db.Query(ctx, adapter.FetchQueuesSQL())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var queues []models.Queue
	for rows.Next() {
		var q models.Queue
		if err := rows.Scan(
			&q.Name,
			&q.Stats.Created,
			&q.Stats.Retry,
			&q.Stats.Active,
			&q.Stats.Completed,
			&q.Stats.Failed,
			&q.Stats.Cancelled,
		); err != nil {
			return nil, wrapDBError(err)
		}
		if cfg, ok := configs[q.Name]; ok {
			q.Config = cfg
		}
		queues = append(queues, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return queues, nil
}

func fetchQueueConfigs(ctx context.Context, db store.Querier, adapter schema.Adapter) (map[string]*models.QueueConfig, error) {
	sql, ok := adapter.FetchQueueConfigSQL()
	if !ok {
		return nil, nil
	}

	telemetry.QueriesTotal.Inc()
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	retentionInMinutes := adapter.RetentionInMinutes()
	configs := make(map[string]*models.QueueConfig)
	for rows.Next() {
		var name string
		cfg := &models.QueueConfig{}

		if retentionInMinutes {
			// v10 layout: retention_minutes, expire_seconds, retry_limit, policy
			var retentionMinutes *int
			if err := rows.Scan(&name, &retentionMinutes, &cfg.ExpireSeconds, &cfg.RetryLimit, &cfg.Policy); err != nil {
				return nil, wrapDBError(err)
			}
			if retentionMinutes != nil {
				seconds := *retentionMinutes * 60
				cfg.RetentionSeconds = &seconds
			}
		} else {
			// v11+ layout: retention_seconds, deletion_seconds, expire_seconds, retry_limit, policy
			if err := rows.Scan(&name, &cfg.RetentionSeconds, &cfg.DeletionSeconds, &cfg.ExpireSeconds, &cfg.RetryLimit, &cfg.Policy); err != nil {
				return nil, wrapDBError(err)
			}
		}
		configs[name] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return configs, nil
}
