package service

import (
	"errors"
	"fmt"

	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// By the time a query service runs, version detection has already
// succeeded, so failures split only two ways: the server rejected the
// statement, or we could not reach the server at all.
var (
	ErrQueryFailed      = errors.New("query failed")
	ErrConnectionFailed = errors.New("connection failed")
)

func wrapDBError(err error) error {
	telemetry.QueryErrors.Inc()
	if store.IsSQLError(err) {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}
