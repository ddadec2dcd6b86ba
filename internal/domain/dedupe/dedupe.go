// Package dedupe tracks which workout ids a store has ever accepted.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Registry records ids so a store can keep them unique across its lifetime,
// including across Clear.
type Registry interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Seen reports whether id was recorded, without recording it.
	Seen(ctx context.Context, id string) bool

	// Unrecord forgets id. Stores use it to roll back an append whose
	// persistence failed.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryRegistry is an unbounded map guarded by a RWMutex. Evicting ids
// would let a reused id slip past the uniqueness check, so there is no limit.
type inMemoryRegistry struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry(opts ...Option) Registry {
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &inMemoryRegistry{
		seen: make(map[string]struct{}, cfg.capacity),
	}
}

func (r *inMemoryRegistry) SeenAndRecord(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	r.size.Add(1)
	return false
}

func (r *inMemoryRegistry) Seen(_ context.Context, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.seen[id]
	return ok
}

func (r *inMemoryRegistry) Unrecord(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		delete(r.seen, id)
		r.size.Add(-1)
	}
}

// Size returns the number of recorded ids.
func (r *inMemoryRegistry) Size() int64 {
	return r.size.Load()
}
