package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowDB serves a single canned row (or error) for QueryRow.
type rowDB struct {
	version int
	err     error
}

func (d rowDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d rowDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (d rowDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return cannedRow{version: d.version, err: d.err}
}

type cannedRow struct {
	version int
	err     error
}

func (r cannedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = r.version
	}
	return nil
}

func TestDetectVersion(t *testing.T) {
	ctx := context.Background()

	v, err := DetectVersion(ctx, rowDB{version: 24}, "pgboss")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if v != 24 {
		t.Fatalf("version = %d, want 24", v)
	}
}

func TestDetectVersionRejectsInvalidSchemaName(t *testing.T) {
	_, err := DetectVersion(context.Background(), rowDB{version: 24}, `bad"name`)
	var invalid *InvalidSchemaNameError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidSchemaNameError", err)
	}
}

func TestDetectVersionMissingTable(t *testing.T) {
	db := rowDB{err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}}
	_, err := DetectVersion(context.Background(), db, "pgboss")
	if !errors.Is(err, ErrVersionTableNotFound) {
		t.Fatalf("err = %v, want ErrVersionTableNotFound", err)
	}
}

func TestDetectVersionEmptyTable(t *testing.T) {
	_, err := DetectVersion(context.Background(), rowDB{err: pgx.ErrNoRows}, "pgboss")
	if !errors.Is(err, ErrNoVersionFound) {
		t.Fatalf("err = %v, want ErrNoVersionFound", err)
	}
}

func TestDetectVersionConnectionFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	_, err := DetectVersion(context.Background(), rowDB{err: cause}, "pgboss")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want ConnectionError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("ConnectionError should wrap the cause")
	}
}

func TestDetectVersionUnsupported(t *testing.T) {
	for _, c := range []struct {
		version int
		hint    string
	}{
		{12, "older"},
		{31, "newer"},
	} {
		_, err := DetectVersion(context.Background(), rowDB{version: c.version}, "pgboss")
		var unsupported *UnsupportedVersionError
		if !errors.As(err, &unsupported) {
			t.Fatalf("version %d: err = %v, want UnsupportedVersionError", c.version, err)
		}
		if !strings.Contains(err.Error(), c.hint) {
			t.Errorf("version %d: message %q should mention %q", c.version, err.Error(), c.hint)
		}
	}
}
