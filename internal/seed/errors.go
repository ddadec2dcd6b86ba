package seed

import "errors"

// Sentinel kinds for seed errors.
var (
	ErrUnhealthy   = errors.New("service is not healthy")
	ErrMapNotReady = errors.New("map is not ready; report a position first")
	ErrStatus      = errors.New("unexpected status")
	ErrMismatch    = errors.New("workout count mismatch")
	ErrNoEntries   = errors.New("no entries to save")
)
