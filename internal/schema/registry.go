package schema

import (
	"context"
	"sync"

	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

type cacheKey struct {
	connectionID string
	schemaName   string
}

// Registry memoizes detected versions and constructed adapters per
// (connection, schema) pair. Detection runs at most once per key until
// the entry is invalidated; adapter construction is pure.
//
// Construct one per process and pass it down; tests build isolated
// instances.
type Registry struct {
	mu       sync.Mutex
	detect   func(ctx context.Context, db store.Querier, schemaName string) (Version, error)
	adapters map[cacheKey]Adapter
	versions map[cacheKey]Version
}

// NewRegistry returns an empty registry backed by DetectVersion.
func NewRegistry() *Registry {
	return &Registry{
		detect:   DetectVersion,
		adapters: make(map[cacheKey]Adapter),
		versions: make(map[cacheKey]Version),
	}
}

// Adapter resolves the adapter for a connection and schema, detecting
// the installed version on first use. Unknown adapter groups fall back
// to the newest adapter rather than erroring.
func (r *Registry) Adapter(ctx context.Context, db store.Querier, connectionID, schemaName string) (Adapter, error) {
	key := cacheKey{connectionID: connectionID, schemaName: schemaName}

	r.mu.Lock()
	if adapter, ok := r.adapters[key]; ok {
		r.mu.Unlock()
		return adapter, nil
	}
	r.mu.Unlock()

	// Detection runs outside the lock so a slow database does not stall
	// lookups for other connections.
	telemetry.SchemaDetections.Inc()
	version, err := r.detect(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	adapter := NewAdapter(version.Group(), schemaName)

	r.mu.Lock()
	r.versions[key] = version
	r.adapters[key] = adapter
	r.mu.Unlock()

	return adapter, nil
}

// DetectedVersion returns the cached version for display purposes.
func (r *Registry) DetectedVersion(connectionID, schemaName string) (Version, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[cacheKey{connectionID: connectionID, schemaName: schemaName}]
	return v, ok
}

// Invalidate drops the cache entry for one (connection, schema) pair.
func (r *Registry) Invalidate(connectionID, schemaName string) {
	key := cacheKey{connectionID: connectionID, schemaName: schemaName}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, key)
	delete(r.versions, key)
}

// InvalidateConnection drops every schema entry for one connection, used
// when connection parameters change.
func (r *Registry) InvalidateConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.adapters {
		if key.connectionID == connectionID {
			delete(r.adapters, key)
		}
	}
	for key := range r.versions {
		if key.connectionID == connectionID {
			delete(r.versions, key)
		}
	}
}

// Reset clears the whole cache.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[cacheKey]Adapter)
	r.versions = make(map[cacheKey]Version)
}
