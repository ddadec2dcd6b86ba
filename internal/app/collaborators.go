package service

import (
	"context"

	"github.com/okian/mapty/internal/domain/workout"
)

// MapView draws the map. Map clicks come back through Service.MapClick.
type MapView interface {
	CreateView(ctx context.Context, center workout.Coords, zoom int)
	AddMarker(ctx context.Context, at workout.Coords, popup string, kind workout.Kind)
	PanTo(ctx context.Context, at workout.Coords, zoom int)
}

// ListView renders one list row per workout, newest first.
type ListView interface {
	RenderItem(ctx context.Context, r *workout.Record)
	// Clear removes every rendered row and marker.
	Clear(ctx context.Context)
}

// Form is the workout entry form. Hide clears the inputs and schedules the
// form to become usable again after a short delay; it must not block.
type Form interface {
	Show(ctx context.Context)
	Hide(ctx context.Context)
}

// Notifier shows a blocking alert on the page.
type Notifier interface {
	Alert(ctx context.Context, msg string)
}

// Reloader reloads the page.
type Reloader interface {
	Reload(ctx context.Context)
}

// Views groups the page collaborators.
type Views struct {
	Map      MapView
	List     ListView
	Form     Form
	Notifier Notifier
	Reloader Reloader
}

func (v Views) complete() bool {
	return v.Map != nil && v.List != nil && v.Form != nil && v.Notifier != nil && v.Reloader != nil
}

// FormInput carries the raw form values as typed by the user.
type FormInput struct {
	Type          string
	Distance      string
	Duration      string
	Cadence       string
	ElevationGain string
}
