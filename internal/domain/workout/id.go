package workout

import "github.com/google/uuid"

// IDGenerator produces opaque record ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 ids, falling back to random v4.
type UUIDGenerator struct{}

// NewID returns a new id.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
