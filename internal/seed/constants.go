package seed

import "time"

// Generation ranges.
const (
	runDistanceMin   = 2.0
	runDistanceMax   = 21.1
	runPaceMin       = 4.0 // min/km
	runPaceMax       = 7.5
	runCadenceMin    = 150
	runCadenceMax    = 190
	rideDistanceMin  = 10.0
	rideDistanceMax  = 120.0
	rideSpeedMin     = 15.0 // km/h
	rideSpeedMax     = 35.0
	rideElevationMin = -200
	rideElevationMax = 1500

	kmPerDegreeLat = 111.32
	percent        = 100
)

// Defaults.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultCount    = 50
	DefaultRadiusKm = 10.0
	DefaultTimeout  = 10 * time.Second
)
