package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/internal/domain/dedupe"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

// WorkoutStore is the in-memory ordered collection, written through to a
// Persistence slot after every append.
//
// Ids are unique among every record ever appended, Clear included, so the
// id registry outlives the collection itself.
type WorkoutStore struct {
	mu      sync.RWMutex
	records []*workout.Record
	byID    map[string]int

	persistence *Persistence
	ids         dedupe.Registry
	strict      bool
	recordOpts  []workout.Option
	logger      logger.Logger
}

var _ Store = (*WorkoutStore)(nil)

// NewWorkoutStore creates an empty store persisting into backend.
func NewWorkoutStore(backend kv.Store, opts ...Option) *WorkoutStore {
	s := &WorkoutStore{
		byID:        make(map[string]int),
		persistence: NewPersistence(backend, DefaultKey),
		ids:         dedupe.NewInMemoryRegistry(),
		logger:      logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds r and persists the full collection. If persisting fails the
// append is rolled back and the error returned.
func (s *WorkoutStore) Append(ctx context.Context, r *workout.Record) error {
	if r == nil {
		return ErrNilRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids.SeenAndRecord(ctx, r.ID()) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID())
	}

	s.records = append(s.records, r)
	s.byID[r.ID()] = len(s.records) - 1

	if err := s.persistence.Save(ctx, s.records); err != nil {
		s.records[len(s.records)-1] = nil
		s.records = s.records[:len(s.records)-1]
		delete(s.byID, r.ID())
		s.ids.Unrecord(ctx, r.ID())
		s.logger.Error(ctx, "append rolled back", logger.String("id", r.ID()), logger.Error(err))
		return err
	}

	metrics.UpdateStoredWorkouts(len(s.records))
	s.logger.Debug(ctx, "workout appended",
		logger.String("id", r.ID()),
		logger.String("kind", string(r.Kind())),
		logger.Int("count", len(s.records)))
	return nil
}

func (s *WorkoutStore) FindByID(_ context.Context, id string) (*workout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[i], nil
}

func (s *WorkoutStore) All(_ context.Context) []*workout.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*workout.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *WorkoutStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Restore replaces the collection with the decoded blob. Every entry goes
// through workout.FromSnapshot; any bad entry or a repeated id rejects the
// whole blob. Rejected blobs leave the store empty and, unless strict, are
// not reported.
func (s *WorkoutStore) Restore(ctx context.Context, blob []byte) error {
	start := time.Now()

	records, err := s.rebuild(blob)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.reset()
		metrics.RecordRestoreFallback(restoreReason(err))
		metrics.UpdateStoredWorkouts(0)
		s.logger.Warn(ctx, "discarding persisted workouts", logger.Error(err), logger.Bool("strict", s.strict))
		if s.strict {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return nil
	}

	s.reset()
	for i, r := range records {
		s.records = append(s.records, r)
		s.byID[r.ID()] = i
		s.ids.SeenAndRecord(ctx, r.ID())
	}

	metrics.UpdateStoredWorkouts(len(s.records))
	metrics.RecordRestore(len(s.records), float64(time.Since(start).Microseconds())/1000)
	s.logger.Info(ctx, "workouts restored", logger.Int("count", len(s.records)))
	return nil
}

func (s *WorkoutStore) rebuild(blob []byte) ([]*workout.Record, error) {
	snaps, err := decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	records := make([]*workout.Record, 0, len(snaps))
	seen := make(map[string]struct{}, len(snaps))
	for i, snap := range snaps {
		r, err := workout.FromSnapshot(snap, s.recordOpts...)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[r.ID()]; dup {
			return nil, fmt.Errorf("entry %d: %w: %s", i, ErrDuplicateID, r.ID())
		}
		seen[r.ID()] = struct{}{}
		records = append(records, r)
	}
	return records, nil
}

// Load restores from the persisted slot. A slot that was never written gives
// an empty store. A failed read gives an empty store too, and is only
// reported in strict mode.
func (s *WorkoutStore) Load(ctx context.Context) error {
	blob, err := s.persistence.Read(ctx)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.mu.Lock()
		s.reset()
		s.mu.Unlock()
		metrics.UpdateStoredWorkouts(0)
		s.logger.Debug(ctx, "no persisted workouts", logger.String("key", s.persistence.Key()))
		return nil
	case err != nil:
		s.mu.Lock()
		s.reset()
		s.mu.Unlock()
		metrics.RecordRestoreFallback("read")
		metrics.UpdateStoredWorkouts(0)
		s.logger.Warn(ctx, "could not read persisted workouts", logger.Error(err))
		if s.strict {
			return fmt.Errorf("load %q: %w", s.persistence.Key(), err)
		}
		return nil
	}
	return s.Restore(ctx, blob)
}

// Clear empties the collection and removes the slot. Ids stay registered.
func (s *WorkoutStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	metrics.UpdateStoredWorkouts(0)
	if err := s.persistence.Remove(ctx); err != nil {
		s.logger.Error(ctx, "could not remove persisted workouts", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "workouts cleared")
	return nil
}

// reset must be called with s.mu held.
func (s *WorkoutStore) reset() {
	s.records = nil
	s.byID = make(map[string]int)
}

func restoreReason(err error) string {
	switch {
	case errors.Is(err, workout.ErrValidation):
		return "invalid_entry"
	case errors.Is(err, workout.ErrUnknownKind):
		return "unknown_type"
	case errors.Is(err, workout.ErrMalformedSnapshot):
		return "malformed_entry"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	default:
		return "decode"
	}
}
