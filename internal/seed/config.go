// Package seed fills a running mapty server with random workouts through its
// HTTP API, the same way a page does: a map click followed by a form submit.
package seed

import (
	"time"

	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// Config holds configuration for a seed run.
type Config struct {
	BaseURL    string         // Base URL of the service
	Count      int            // Number of workouts to generate
	Center     workout.Coords // Workouts are scattered around this point
	RadiusKm   float64        // Maximum distance from Center
	InvalidPct int            // Share of deliberately invalid forms, 0..100
	Seed       uint64         // Generator seed; zero picks one from the clock
	Timeout    time.Duration  // HTTP request timeout
	OutputFile string         // Optional JSON dump of the generated entries
	Verbose    bool           // Log every submission
}

// Form is the POST /workouts body.
type Form struct {
	Type          string `json:"type"`
	Distance      string `json:"distance"`
	Duration      string `json:"duration"`
	Cadence       string `json:"cadence,omitempty"`
	ElevationGain string `json:"elevationGain,omitempty"`
}

// Entry is one generated workout: where to click and what to submit.
type Entry struct {
	At    workout.Coords `json:"at"`
	Form  Form           `json:"form"`
	Valid bool           `json:"valid"`
}

// Click is the POST /map/click body.
type Click struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ServerStats mirrors GET /stats.
type ServerStats struct {
	Workouts     int  `json:"workouts"`
	Running      int  `json:"running"`
	Cycling      int  `json:"cycling"`
	MapReady     bool `json:"mapReady"`
	PendingClick bool `json:"pendingClick"`
	Started      bool `json:"started"`
}

// Workout mirrors one element of GET /workouts.
type Workout = types.Workout

// Stats holds run statistics.
type Stats struct {
	Generated int
	Created   int
	Rejected  int
	Failed    int
	Before    int
	After     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
