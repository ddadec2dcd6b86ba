// Package types contains the presentation shapes shared by the HTTP API and
// the page stream.
package types

import (
	"strconv"
	"time"

	"github.com/okian/mapty/internal/domain/workout"
)

// Detail is one icon/value/unit cell of a list row.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Workout is the list-row and API representation of a record.
type Workout struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Popup            string     `json:"popup"`
	Coords           [2]float64 `json:"coords"`
	Distance         float64    `json:"distance"`
	Duration         float64    `json:"duration"`
	CreatedAt        time.Time  `json:"createdAt"`
	InteractionCount int        `json:"interactionCount"`

	Cadence       *float64 `json:"cadence,omitempty"`
	Pace          *float64 `json:"pace,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`

	Details []Detail `json:"details"`
}

// FromRecord builds the view of r.
func FromRecord(r *workout.Record) Workout {
	w := Workout{
		ID:               r.ID(),
		Type:             string(r.Kind()),
		Title:            r.Description(),
		Description:      r.Description(),
		Popup:            r.PopupContent(),
		Coords:           r.Coords(),
		Distance:         r.Distance(),
		Duration:         r.Duration(),
		CreatedAt:        r.CreatedAt(),
		InteractionCount: r.Clicks(),
		Details: []Detail{
			{Icon: r.Kind().Icon(), Value: plain(r.Distance()), Unit: "km"},
			{Icon: "⏱", Value: plain(r.Duration()), Unit: "min"},
		},
	}

	switch r.Kind() {
	case workout.KindRunning:
		cadence, pace := r.Cadence(), r.Pace()
		w.Cadence, w.Pace = &cadence, &pace
		w.Details = append(w.Details,
			Detail{Icon: "⚡️", Value: fixed1(pace), Unit: "min/km"},
			Detail{Icon: "🦶🏼", Value: plain(cadence), Unit: "spm"},
		)
	case workout.KindCycling:
		elevation, speed := r.ElevationGain(), r.Speed()
		w.ElevationGain, w.Speed = &elevation, &speed
		w.Details = append(w.Details,
			Detail{Icon: "⚡️", Value: fixed1(speed), Unit: "km/h"},
			Detail{Icon: "⛰", Value: plain(elevation), Unit: "m"},
		)
	}
	return w
}

// FromRecords maps a slice in order.
func FromRecords(rs []*workout.Record) []Workout {
	out := make([]Workout, len(rs))
	for i, r := range rs {
		out[i] = FromRecord(r)
	}
	return out
}

func plain(v float64) string  { return strconv.FormatFloat(v, 'f', -1, 64) }
func fixed1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
