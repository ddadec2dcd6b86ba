package repository

import (
	"github.com/okian/mapty/internal/domain/dedupe"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

// DefaultKey is the name of the persisted slot.
const DefaultKey = "workouts"

// Option applies a configuration option to the WorkoutStore.
type Option func(*WorkoutStore)

// WithKey sets the persisted slot name.
func WithKey(key string) Option {
	return func(s *WorkoutStore) {
		if key != "" {
			s.persistence.key = key
		}
	}
}

// WithStrict makes Restore and Load report corrupt or unreadable data instead
// of silently starting empty.
func WithStrict(strict bool) Option {
	return func(s *WorkoutStore) {
		s.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *WorkoutStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecordOptions passes options to workout.FromSnapshot during Restore,
// e.g. the validation policy.
func WithRecordOptions(opts ...workout.Option) Option {
	return func(s *WorkoutStore) {
		s.recordOpts = append(s.recordOpts, opts...)
	}
}

// WithRegistry replaces the id registry.
func WithRegistry(r dedupe.Registry) Option {
	return func(s *WorkoutStore) {
		if r != nil {
			s.ids = r
		}
	}
}
