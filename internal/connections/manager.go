package connections

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

// Manager owns one connection pool per saved profile. Pools are created
// lazily and reused across requests; changing a profile invalidates its
// pool so the next request reconnects with the new parameters.
type Manager struct {
	mu             sync.Mutex
	pools          map[uuid.UUID]*pgxpool.Pool
	connectTimeout time.Duration
}

// NewManager builds an empty manager.
func NewManager(connectTimeout time.Duration) *Manager {
	return &Manager{
		pools:          make(map[uuid.UUID]*pgxpool.Pool),
		connectTimeout: connectTimeout,
	}
}

// Pool returns the pool for a profile, creating it on first use.
func (m *Manager) Pool(ctx context.Context, p Profile) (*pgxpool.Pool, error) {
	m.mu.Lock()
	if pool, ok := m.pools[p.ID]; ok {
		m.mu.Unlock()
		return pool, nil
	}
	m.mu.Unlock()

	pool, err := store.NewPool(ctx, p.DSN(), m.connectTimeout)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have raced us here; keep the first pool.
	if existing, ok := m.pools[p.ID]; ok {
		pool.Close()
		return existing, nil
	}
	m.pools[p.ID] = pool
	telemetry.ActivePools.Inc()
	return pool, nil
}

// Invalidate closes and forgets the pool for one profile.
func (m *Manager) Invalidate(id uuid.UUID) {
	m.mu.Lock()
	pool, ok := m.pools[id]
	delete(m.pools, id)
	m.mu.Unlock()
	if ok {
		pool.Close()
		telemetry.ActivePools.Dec()
	}
}

// Close shuts down every pool.
func (m *Manager) Close() {
	m.mu.Lock()
	pools := m.pools
	m.pools = make(map[uuid.UUID]*pgxpool.Pool)
	m.mu.Unlock()
	for _, pool := range pools {
		pool.Close()
		telemetry.ActivePools.Dec()
	}
}

// Probe opens a fresh single connection and runs a trivial query to
// verify the profile works end to end. It does not touch the pool cache,
// so a failed probe never poisons serving state. Cancellation comes from
// ctx and is safe to trigger repeatedly or after completion.
func (m *Manager) Probe(ctx context.Context, p Profile) error {
	if m.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.connectTimeout)
		defer cancel()
	}

	conn, err := pgx.Connect(ctx, p.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	var one int
	if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("probe query: %w", err)
	}
	return nil
}
