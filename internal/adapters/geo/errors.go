package geo

import "errors"

// Sentinel kinds for geolocation errors.
var (
	ErrUnavailable = errors.New("geolocation unavailable")
	ErrTimeout     = errors.New("geolocation timed out")
)
