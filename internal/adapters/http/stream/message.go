// Package stream pushes render instructions to connected pages over
// WebSocket. A page is a thin client that draws whatever it receives.
package stream

import (
	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// Message types sent to pages.
const (
	TypeView      = "view"
	TypeMarker    = "marker"
	TypeItem      = "item"
	TypeClear     = "clear"
	TypePan       = "pan"
	TypeFormShow  = "form_show"
	TypeFormHide  = "form_hide"
	TypeFormReady = "form_ready"
	TypeAlert     = "alert"
	TypeReload    = "reload"
)

// Message is one render instruction.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ViewData centers the map.
type ViewData struct {
	Center workout.Coords `json:"center"`
	Zoom   int            `json:"zoom"`
}

// MarkerData places a marker with an always-open popup.
type MarkerData struct {
	Coords workout.Coords `json:"coords"`
	Popup  string         `json:"popup"`
	Kind   workout.Kind   `json:"kind"`
}

// AlertData carries the alert text.
type AlertData struct {
	Message string `json:"message"`
}

// ItemData is a list row.
type ItemData = types.Workout
