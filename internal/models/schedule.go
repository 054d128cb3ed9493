package models

import "time"

// Schedule is one cron schedule row. Key is only populated on schema
// generations that support multiple schedules per name.
type Schedule struct {
	Name      string     `json:"name"`
	Key       *string    `json:"key,omitempty"`
	Cron      string     `json:"cron"`
	Timezone  *string    `json:"timezone,omitempty"`
	Data      *string    `json:"data,omitempty"`
	Options   *string    `json:"options,omitempty"`
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
	NextRun   *time.Time `json:"next_run,omitempty"` // computed, nil for unparseable expressions
}
