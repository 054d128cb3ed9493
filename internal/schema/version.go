package schema

import (
	"fmt"
	"regexp"
)

// Version is the pg-boss schema version number recorded in the version
// table. The supported range at time of writing is 20 through 27.
type Version int

const (
	MinSupportedVersion Version = 20
	MaxSupportedVersion Version = 27
)

// AdapterGroup buckets schema versions whose table layouts are
// compatible enough to share one adapter.
type AdapterGroup string

const (
	GroupCamelCase       AdapterGroup = "camelCase"       // 20-23: camelCase columns, no queue or schedule tables
	GroupSnakeCaseV10    AdapterGroup = "snakeCaseV10"    // 24-25: snake_case, queue/schedule tables, interval expiry
	GroupSnakeCaseV11    AdapterGroup = "snakeCaseV11Plus" // 26-27: snake_case, integer expiry, schedule key column
	GroupUnknown         AdapterGroup = "unknown"
)

// Group maps a version number to its adapter group. Versions outside the
// supported range map to GroupUnknown; the registry treats unknown as a
// forward-compatible fallback to the newest adapter.
func (v Version) Group() AdapterGroup {
	switch {
	case v >= 20 && v <= 23:
		return GroupCamelCase
	case v >= 24 && v <= 25:
		return GroupSnakeCaseV10
	case v >= 26 && v <= 27:
		return GroupSnakeCaseV11
	default:
		return GroupUnknown
	}
}

// Supported reports whether v falls in the supported range.
func (v Version) Supported() bool {
	return v >= MinSupportedVersion && v <= MaxSupportedVersion
}

func (v Version) String() string {
	return fmt.Sprintf("schema v%d", int(v))
}

// Schema names are interpolated unquoted into SQL, so only identifiers
// that PostgreSQL treats as safe without quoting are accepted.
var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// IsValidSchemaName reports whether name is a safe unquoted PostgreSQL
// identifier: a lowercase letter or underscore followed by lowercase
// letters, digits, underscores or dollar signs.
func IsValidSchemaName(name string) bool {
	return schemaNamePattern.MatchString(name)
}
