package kv

import "errors"

// Sentinel kinds for key-value errors.
var (
	ErrNotFound       = errors.New("key not found")
	ErrClosed         = errors.New("store closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
