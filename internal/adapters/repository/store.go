// Package repository holds the ordered, id-keyed workout collection and its
// write-through persistence.
package repository

import (
	"context"

	"github.com/okian/mapty/internal/domain/workout"
)

// Store provides read/write access to the workouts of one session.
type Store interface {
	// Append adds r at the end and persists the whole collection.
	// Returns ErrDuplicateID if r's id was ever appended before.
	Append(ctx context.Context, r *workout.Record) error

	// FindByID returns ErrNotFound if no record has that id.
	FindByID(ctx context.Context, id string) (*workout.Record, error)

	// All returns the records in insertion order. The slice is a copy.
	All(ctx context.Context) []*workout.Record

	Len(ctx context.Context) int

	// Restore replaces the contents with a previously persisted blob.
	Restore(ctx context.Context, blob []byte) error

	// Load restores from the persisted slot.
	Load(ctx context.Context) error

	// Clear empties the collection and removes the persisted slot.
	Clear(ctx context.Context) error
}
