package repository

import "errors"

// Sentinel kinds for workout store errors.
var (
	ErrNotFound    = errors.New("workout not found")
	ErrDuplicateID = errors.New("duplicate workout id")
	ErrNilRecord   = errors.New("nil workout record")
	ErrCorrupt     = errors.New("persisted workouts are corrupt")
	ErrPersist     = errors.New("persist workouts")
)
