// Package kv provides the durable key-value slot the workout store persists
// into, with in-memory, Badger and Redis backends.
package kv

import "context"

// Store is a string-keyed blob store. Get returns ErrNotFound for a missing key;
// Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
