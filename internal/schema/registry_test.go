package schema

import (
	"context"
	"errors"
	"testing"

	"pgboss-console/internal/store"
)

func stubDetect(version Version, err error) (*int, func(ctx context.Context, db store.Querier, schemaName string) (Version, error)) {
	calls := 0
	return &calls, func(ctx context.Context, db store.Querier, schemaName string) (Version, error) {
		calls++
		return version, err
	}
}

func TestRegistryMemoizesDetection(t *testing.T) {
	r := NewRegistry()
	calls, detect := stubDetect(24, nil)
	r.detect = detect

	a1, err := r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	a2, err := r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("detection ran %d times, want 1", *calls)
	}
	if a1 != a2 {
		t.Fatal("cached adapter should be reused")
	}
	if a1.Group() != GroupSnakeCaseV10 {
		t.Fatalf("got group %q want %q", a1.Group(), GroupSnakeCaseV10)
	}

	if v, ok := r.DetectedVersion("conn-1", "pgboss"); !ok || v != 24 {
		t.Fatalf("detected version = %v, %v; want 24, true", v, ok)
	}
}

func TestRegistryKeysByConnectionAndSchema(t *testing.T) {
	r := NewRegistry()
	calls, detect := stubDetect(26, nil)
	r.detect = detect

	_, _ = r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	_, _ = r.Adapter(context.Background(), nil, "conn-1", "other")
	_, _ = r.Adapter(context.Background(), nil, "conn-2", "pgboss")
	if *calls != 3 {
		t.Fatalf("detection ran %d times, want 3 distinct keys", *calls)
	}
}

func TestRegistryDetectionErrorNotCached(t *testing.T) {
	r := NewRegistry()
	calls, detect := stubDetect(0, errors.New("boom"))
	r.detect = detect

	if _, err := r.Adapter(context.Background(), nil, "conn-1", "pgboss"); err == nil {
		t.Fatal("expected detection error")
	}
	if _, err := r.Adapter(context.Background(), nil, "conn-1", "pgboss"); err == nil {
		t.Fatal("expected detection error")
	}
	if *calls != 2 {
		t.Fatalf("failed detection should retry, ran %d times", *calls)
	}
	if _, ok := r.DetectedVersion("conn-1", "pgboss"); ok {
		t.Fatal("failed detection must not record a version")
	}
}

func TestRegistryInvalidate(t *testing.T) {
	r := NewRegistry()
	calls, detect := stubDetect(27, nil)
	r.detect = detect

	_, _ = r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	r.Invalidate("conn-1", "pgboss")
	_, _ = r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	if *calls != 2 {
		t.Fatalf("invalidate should force redetection, ran %d times", *calls)
	}
}

func TestRegistryInvalidateConnection(t *testing.T) {
	r := NewRegistry()
	_, detect := stubDetect(27, nil)
	r.detect = detect

	_, _ = r.Adapter(context.Background(), nil, "conn-1", "pgboss")
	_, _ = r.Adapter(context.Background(), nil, "conn-1", "other")
	_, _ = r.Adapter(context.Background(), nil, "conn-2", "pgboss")

	r.InvalidateConnection("conn-1")

	if _, ok := r.DetectedVersion("conn-1", "pgboss"); ok {
		t.Fatal("conn-1/pgboss should be dropped")
	}
	if _, ok := r.DetectedVersion("conn-1", "other"); ok {
		t.Fatal("conn-1/other should be dropped")
	}
	if _, ok := r.DetectedVersion("conn-2", "pgboss"); !ok {
		t.Fatal("conn-2 must survive invalidation of conn-1")
	}
}
