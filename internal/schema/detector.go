package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pgboss-console/internal/store"
)

// Detection failures carry a remediation hint in their message; callers
// surface them to the user verbatim. The detector never retries.
var (
	// ErrVersionTableNotFound: the schema or its version table does not
	// exist, meaning pg-boss was never initialized in this database.
	ErrVersionTableNotFound = errors.New("pg-boss schema not found: verify that pg-boss has been initialized by running a job queue in your application")

	// ErrNoVersionFound: the version table exists but holds no rows.
	ErrNoVersionFound = errors.New("could not detect pg-boss schema version: the version table exists but contains no version record")
)

// InvalidSchemaNameError rejects schema names that are not safe unquoted
// identifiers before any SQL interpolation happens.
type InvalidSchemaNameError struct {
	Name string
}

func (e *InvalidSchemaNameError) Error() string {
	return fmt.Sprintf("invalid schema name %q: schema names must start with a lowercase letter or underscore and contain only lowercase letters, digits, underscores or dollar signs", e.Name)
}

// UnsupportedVersionError reports a version outside the supported range
// with directional guidance.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	if Version(e.Version) < MinSupportedVersion {
		return fmt.Sprintf("unsupported pg-boss schema version %d: this installation is older than schema v%d; upgrade pg-boss to v7 or later", e.Version, MinSupportedVersion)
	}
	return fmt.Sprintf("unsupported pg-boss schema version %d: this installation is newer than schema v%d; the console may need an update", e.Version, MaxSupportedVersion)
}

// ConnectionError wraps transport and auth failures seen during
// detection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("failed to connect: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// DetectVersion reads the highest version recorded in the schema's
// version table. The schema name is validated before interpolation since
// identifiers cannot be parameterized.
func DetectVersion(ctx context.Context, db store.Querier, schemaName string) (Version, error) {
	if !IsValidSchemaName(schemaName) {
		return 0, &InvalidSchemaNameError{Name: schemaName}
	}

	sql := fmt.Sprintf("SELECT version FROM %s.version ORDER BY version DESC LIMIT 1", schemaName)

	var version int
	err := db.QueryRow(ctx, sql).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoVersionFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Undefined relation means the version table (or the whole
			// schema) is missing; every other SQL error is reported as a
			// connection-level failure.
			if pgErr.Code == pgerrcode.UndefinedTable {
				return 0, ErrVersionTableNotFound
			}
		}
		return 0, &ConnectionError{Err: err}
	}

	v := Version(version)
	if !v.Supported() {
		return 0, &UnsupportedVersionError{Version: version}
	}
	return v, nil
}
