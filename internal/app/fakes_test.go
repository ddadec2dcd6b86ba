package service_test

import (
	"context"
	"sync"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/workout"
)

type call struct {
	op     string
	coords workout.Coords
	text   string
	zoom   int
}

// recorder implements every page collaborator and remembers the calls.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) CreateView(_ context.Context, c workout.Coords, zoom int) {
	r.add(call{op: "view", coords: c, zoom: zoom})
}

func (r *recorder) AddMarker(_ context.Context, c workout.Coords, popup string, _ workout.Kind) {
	r.add(call{op: "marker", coords: c, text: popup})
}

func (r *recorder) PanTo(_ context.Context, c workout.Coords, zoom int) {
	r.add(call{op: "pan", coords: c, zoom: zoom})
}

func (r *recorder) RenderItem(_ context.Context, w *workout.Record) {
	r.add(call{op: "item", coords: w.Coords(), text: w.ID()})
}

func (r *recorder) Clear(context.Context) { r.add(call{op: "clear"}) }

func (r *recorder) Show(context.Context) { r.add(call{op: "form_show"}) }
func (r *recorder) Hide(context.Context) { r.add(call{op: "form_hide"}) }

func (r *recorder) Alert(_ context.Context, msg string) { r.add(call{op: "alert", text: msg}) }

func (r *recorder) Reload(context.Context) { r.add(call{op: "reload"}) }

func (r *recorder) views() service.Views {
	return service.Views{Map: r, List: r, Form: r, Notifier: r, Reloader: r}
}

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.op
	}
	return out
}

func (r *recorder) only(op string) []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
