// Package workout contains the workout record model: the running and cycling
// variants, their input validation and their derived metrics.
//
// Records are only built through NewRunning, NewCycling or FromSnapshot, all
// of which validate first and never return a partially built value. After
// construction a record is immutable except for its interaction counter.
package workout

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the workout variants.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind maps a type discriminator field to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Title returns the kind with its first letter upper-cased.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Icon returns the emoji used in popups and list rows.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Coords is a (latitude, longitude) pair.
type Coords [2]float64

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

// Valid reports whether both components are finite.
func (c Coords) Valid() bool { return AllFinite(c[0], c[1]) }

var months = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Record is one completed workout. Variant specific fields are zero for the
// other variant; Kind tells which ones are meaningful.
type Record struct {
	id          string
	createdAt   time.Time
	coords      Coords
	distance    float64 // km
	duration    float64 // min
	description string
	clicks      int
	kind        Kind

	// running
	cadence float64 // steps/min
	pace    float64 // min/km

	// cycling
	elevationGain float64 // m
	speed         float64 // km/h
}

func (r *Record) ID() string             { return r.id }
func (r *Record) CreatedAt() time.Time   { return r.createdAt }
func (r *Record) Coords() Coords         { return r.coords }
func (r *Record) Distance() float64      { return r.distance }
func (r *Record) Duration() float64      { return r.duration }
func (r *Record) Description() string    { return r.description }
func (r *Record) Kind() Kind             { return r.kind }
func (r *Record) Cadence() float64       { return r.cadence }
func (r *Record) Pace() float64          { return r.pace }
func (r *Record) ElevationGain() float64 { return r.elevationGain }
func (r *Record) Speed() float64         { return r.speed }

// Clicks returns the interaction counter.
func (r *Record) Clicks() int { return r.clicks }

// Click increments the interaction counter. No controller flow calls it yet;
// it stays part of the record's public surface.
func (r *Record) Click() { r.clicks++ }

// PopupContent is the marker label: icon followed by the description.
func (r *Record) PopupContent() string {
	return r.kind.Icon() + " " + r.description
}

// NewRunning validates the inputs and builds a running record with its pace.
func NewRunning(coords Coords, distance, duration, cadence float64, opts ...Option) (*Record, error) {
	s := newSettings(opts)
	if err := validateCoords(KindRunning, coords); err != nil {
		return nil, err
	}
	if err := ValidateRunning(distance, duration, cadence); err != nil {
		return nil, err
	}
	r := &Record{
		id:        s.ids.NewID(),
		createdAt: s.now(),
		coords:    coords,
		distance:  distance,
		duration:  duration,
		kind:      KindRunning,
		cadence:   cadence,
	}
	r.derive()
	return r, nil
}

// NewCycling validates the inputs and builds a cycling record with its speed.
func NewCycling(coords Coords, distance, duration, elevationGain float64, opts ...Option) (*Record, error) {
	s := newSettings(opts)
	if err := validateCoords(KindCycling, coords); err != nil {
		return nil, err
	}
	if err := ValidateCycling(distance, duration, elevationGain, s.policy); err != nil {
		return nil, err
	}
	r := &Record{
		id:            s.ids.NewID(),
		createdAt:     s.now(),
		coords:        coords,
		distance:      distance,
		duration:      duration,
		kind:          KindCycling,
		elevationGain: elevationGain,
	}
	r.derive()
	return r, nil
}

// New dispatches on kind. extra is cadence for running and elevation gain for cycling.
func New(kind Kind, coords Coords, distance, duration, extra float64, opts ...Option) (*Record, error) {
	switch kind {
	case KindRunning:
		return NewRunning(coords, distance, duration, extra, opts...)
	case KindCycling:
		return NewCycling(coords, distance, duration, extra, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}

// derive computes the variant metric and the description. It runs once, from
// the constructors.
func (r *Record) derive() {
	switch r.kind {
	case KindRunning:
		r.pace = r.duration / r.distance
	case KindCycling:
		r.speed = r.distance / (r.duration / 60)
	}
	r.description = fmt.Sprintf("%s on %s %d",
		r.kind.Title(), months[r.createdAt.Month()-1], r.createdAt.Day())
}
