package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/metrics"
)

// Persistence is the single named slot holding the serialized collection.
type Persistence struct {
	kv  kv.Store
	key string
}

// NewPersistence binds a slot name to a key-value store.
func NewPersistence(store kv.Store, key string) *Persistence {
	if key == "" {
		key = DefaultKey
	}
	return &Persistence{kv: store, key: key}
}

// Key returns the slot name.
func (p *Persistence) Key() string { return p.key }

// Save serializes the records and overwrites the slot.
func (p *Persistence) Save(ctx context.Context, records []*workout.Record) error {
	start := time.Now()

	snaps := make([]workout.Snapshot, len(records))
	for i, r := range records {
		snaps[i] = r.Snapshot()
	}
	blob, err := json.Marshal(snaps)
	if err != nil {
		metrics.RecordPersistenceError("encode")
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	if err := p.kv.Set(ctx, p.key, blob); err != nil {
		metrics.RecordPersistenceError("write")
		return fmt.Errorf("%w: write %q: %w", ErrPersist, p.key, err)
	}

	metrics.RecordPersistenceWrite(len(blob), float64(time.Since(start).Microseconds())/1000)
	return nil
}

// Read returns the raw blob, or kv.ErrNotFound when the slot was never written.
func (p *Persistence) Read(ctx context.Context) ([]byte, error) {
	blob, err := p.kv.Get(ctx, p.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			metrics.RecordPersistenceError("read")
		}
		return nil, err
	}
	return blob, nil
}

// Remove deletes the slot.
func (p *Persistence) Remove(ctx context.Context) error {
	if err := p.kv.Remove(ctx, p.key); err != nil {
		metrics.RecordPersistenceError("remove")
		return fmt.Errorf("%w: remove %q: %w", ErrPersist, p.key, err)
	}
	return nil
}

// decode parses a blob into snapshots. A JSON null decodes to no snapshots.
func decode(blob []byte) ([]workout.Snapshot, error) {
	var snaps []workout.Snapshot
	if err := json.Unmarshal(blob, &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}
