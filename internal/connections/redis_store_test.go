package connections

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewProfileStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func testProfile() Profile {
	return Profile{
		ID:       uuid.New(),
		Name:     "local",
		Host:     "localhost",
		Port:     5432,
		Database: "app",
		User:     "postgres",
		Password: "secret",
		SSLMode:  "disable",
		Schema:   "pgboss",
	}
}

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := testProfile()

	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != p {
		t.Fatalf("got %+v want %+v", got, p)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("list = %+v", list)
	}
}

func TestProfileStoreNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), uuid.New()); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := testProfile()

	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, p.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err after delete = %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted profile still listed: %+v", list)
	}
}

func TestProfileStoreUpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := testProfile()

	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Host = "db.internal"
	p.Schema = "boss_v2"
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Host != "db.internal" || got.Schema != "boss_v2" {
		t.Fatalf("update not applied: %+v", got)
	}
	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Fatalf("resave must not duplicate the index entry: %d", len(list))
	}
}
