package workout

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is the plain persisted shape of a record. Derived fields are
// written for readers of the blob but ignored by FromSnapshot.
type Snapshot struct {
	Coords           Coords    `json:"coords"`
	Distance         float64   `json:"distance"`
	Duration         float64   `json:"duration"`
	CreatedAt        time.Time `json:"createdAt"`
	ID               string    `json:"id"`
	InteractionCount int       `json:"interactionCount"`
	Type             Kind      `json:"type"`
	Description      string    `json:"description,omitempty"`

	Cadence       *float64 `json:"cadence,omitempty"`
	Pace          *float64 `json:"pace,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`
}

// Snapshot returns the persisted shape of r.
func (r *Record) Snapshot() Snapshot {
	s := Snapshot{
		Coords:           r.coords,
		Distance:         r.distance,
		Duration:         r.duration,
		CreatedAt:        r.createdAt,
		ID:               r.id,
		InteractionCount: r.clicks,
		Type:             r.kind,
		Description:      r.description,
	}
	switch r.kind {
	case KindRunning:
		cadence, pace := r.cadence, r.pace
		s.Cadence, s.Pace = &cadence, &pace
	case KindCycling:
		elevation, speed := r.elevationGain, r.speed
		s.ElevationGain, s.Speed = &elevation, &speed
	}
	return s
}

// FromSnapshot rebuilds a record through the same validation and derivation
// as live creation, keeping the persisted id, timestamp and interaction count.
// Persisted pace, speed and description are recomputed, not trusted.
func FromSnapshot(s Snapshot, opts ...Option) (*Record, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedSnapshot)
	}
	if s.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing createdAt for %s", ErrMalformedSnapshot, s.ID)
	}
	if s.InteractionCount < 0 {
		return nil, fmt.Errorf("%w: negative interactionCount for %s", ErrMalformedSnapshot, s.ID)
	}

	var extra *float64
	switch s.Type {
	case KindRunning:
		extra = s.Cadence
	case KindCycling:
		extra = s.ElevationGain
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(s.Type))
	}
	if extra == nil {
		nan := math.NaN()
		extra = &nan
	}

	rebuild := make([]Option, 0, len(opts)+2)
	rebuild = append(rebuild, opts...)
	rebuild = append(rebuild,
		WithIDGenerator(fixedID(s.ID)),
		WithClock(func() time.Time { return s.CreatedAt }),
	)
	r, err := New(s.Type, s.Coords, s.Distance, s.Duration, *extra, rebuild...)
	if err != nil {
		return nil, err
	}
	r.clicks = s.InteractionCount
	return r, nil
}

type fixedID string

func (f fixedID) NewID() string { return string(f) }
