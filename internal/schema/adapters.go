package schema

import "fmt"

// NewAdapter constructs the adapter for an adapter group. Unknown groups
// get the newest adapter so that future schema versions keep working
// until proven otherwise.
func NewAdapter(group AdapterGroup, schemaName string) Adapter {
	switch group {
	case GroupCamelCase:
		return newCamelCaseAdapter(schemaName)
	case GroupSnakeCaseV10:
		return newSnakeCaseV10Adapter(schemaName)
	default:
		return newSnakeCaseV11Adapter(schemaName)
	}
}

// camelCaseAdapter serves schema versions 20-23 (pg-boss v7.4-v9.x):
// camelCase columns, no queue or schedule tables.
type camelCaseAdapter struct {
	baseAdapter
}

func newCamelCaseAdapter(schemaName string) *camelCaseAdapter {
	return &camelCaseAdapter{baseAdapter{
		schema:    schemaName,
		group:     GroupCamelCase,
		jobCols:   jobColumnsCamelCase,
		jobSelect: intervalJobSelect(jobColumnsCamelCase),
	}}
}

func (a *camelCaseAdapter) HasQueueTable() bool                 { return false }
func (a *camelCaseAdapter) RetentionInMinutes() bool            { return false }
func (a *camelCaseAdapter) FetchQueueConfigSQL() (string, bool) { return "", false }
func (a *camelCaseAdapter) FetchSchedulesSQL() (string, bool)   { return "", false }

// snakeCaseV10Adapter serves schema versions 24-25 (pg-boss v10.x):
// snake_case columns, queue and schedule tables, interval expiry and
// retention recorded in minutes.
type snakeCaseV10Adapter struct {
	baseAdapter
}

func newSnakeCaseV10Adapter(schemaName string) *snakeCaseV10Adapter {
	cols := scheduleColumnsV10
	return &snakeCaseV10Adapter{baseAdapter{
		schema:    schemaName,
		group:     GroupSnakeCaseV10,
		jobCols:   jobColumnsSnakeCase,
		schedCols: &cols,
		jobSelect: intervalJobSelect(jobColumnsSnakeCase),
	}}
}

func (a *snakeCaseV10Adapter) HasQueueTable() bool      { return true }
func (a *snakeCaseV10Adapter) RetentionInMinutes() bool { return true }

func (a *snakeCaseV10Adapter) FetchQueueConfigSQL() (string, bool) {
	return fmt.Sprintf("SELECT name, retention_minutes, expire_seconds, retry_limit, policy FROM %s.queue", a.schema), true
}

func (a *snakeCaseV10Adapter) FetchSchedulesSQL() (string, bool) {
	cols := a.schedCols
	return fmt.Sprintf(`SELECT %s, %s, %s, %s::text, %s::text, %s, %s
FROM %s.schedule
ORDER BY %s`,
		cols.Name, cols.Cron, cols.Timezone, cols.Data, cols.Options,
		cols.CreatedOn, cols.UpdatedOn, a.schema, cols.Name), true
}

// snakeCaseV11Adapter serves schema versions 26-27 (pg-boss v11.1+):
// integer expire_seconds, queue-level deletion window and a schedule key
// column.
type snakeCaseV11Adapter struct {
	baseAdapter
}

func newSnakeCaseV11Adapter(schemaName string) *snakeCaseV11Adapter {
	cols := scheduleColumnsV11Plus
	return &snakeCaseV11Adapter{baseAdapter{
		schema:    schemaName,
		group:     GroupSnakeCaseV11,
		jobCols:   jobColumnsV11Plus,
		schedCols: &cols,
		jobSelect: integerJobSelect(jobColumnsV11Plus),
	}}
}

func (a *snakeCaseV11Adapter) HasQueueTable() bool      { return true }
func (a *snakeCaseV11Adapter) RetentionInMinutes() bool { return false }

func (a *snakeCaseV11Adapter) FetchQueueConfigSQL() (string, bool) {
	return fmt.Sprintf("SELECT name, retention_seconds, deletion_seconds, expire_seconds, retry_limit, policy FROM %s.queue", a.schema), true
}

func (a *snakeCaseV11Adapter) FetchSchedulesSQL() (string, bool) {
	cols := a.schedCols
	return fmt.Sprintf(`SELECT %s, %s, %s, %s, %s::text, %s::text, %s, %s
FROM %s.schedule
ORDER BY %s, %s`,
		cols.Name, cols.Key, cols.Cron, cols.Timezone, cols.Data, cols.Options,
		cols.CreatedOn, cols.UpdatedOn, a.schema, cols.Name, cols.Key), true
}
