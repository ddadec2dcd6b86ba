package stream

import (
	"context"
	"sync/atomic"
	"time"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// DefaultFormResetDelay is how long the form stays hidden before it is made
// usable again.
const DefaultFormResetDelay = time.Second

// DefaultSendTimeout bounds each message a single-page surface waits to hand
// to its connection.
const DefaultSendTimeout = writeWait

// Surface turns session render calls into stream messages. It implements
// every page collaborator of the session.
type Surface struct {
	emit        func(context.Context, Message)
	resetDelay  time.Duration
	sendTimeout time.Duration
}

var (
	_ service.MapView  = (*Surface)(nil)
	_ service.ListView = (*Surface)(nil)
	_ service.Form     = (*Surface)(nil)
	_ service.Notifier = (*Surface)(nil)
	_ service.Reloader = (*Surface)(nil)
)

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithFormResetDelay sets the delay between form_hide and form_ready.
func WithFormResetDelay(d time.Duration) SurfaceOption {
	return func(s *Surface) {
		if d >= 0 {
			s.resetDelay = d
		}
	}
}

// WithSendTimeout sets how long a single-page surface waits for room in the
// page's buffer before giving up on a message.
func WithSendTimeout(d time.Duration) SurfaceOption {
	return func(s *Surface) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// NewSurface renders to every page connected to h. Pages that fall behind
// miss messages.
func NewSurface(h *Hub, opts ...SurfaceOption) *Surface {
	s := newSurface(opts)
	s.emit = func(_ context.Context, m Message) { h.Broadcast(m) }
	return s
}

// NewClientSurface renders to a single page. Every message is delivered in
// order unless the page disconnects or stops reading for the send timeout;
// after the first failed send the rest are skipped.
func NewClientSurface(h *Hub, c *Client, opts ...SurfaceOption) *Surface {
	s := newSurface(opts)
	var failed atomic.Bool
	s.emit = func(ctx context.Context, m Message) {
		if failed.Load() {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
		if err := h.SendTo(ctx, c, m); err != nil {
			failed.Store(true)
		}
	}
	return s
}

func newSurface(opts []SurfaceOption) *Surface {
	s := &Surface{resetDelay: DefaultFormResetDelay, sendTimeout: DefaultSendTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Views exposes the surface as the session's collaborator set.
func (s *Surface) Views() service.Views {
	return service.Views{Map: s, List: s, Form: s, Notifier: s, Reloader: s}
}

func (s *Surface) CreateView(ctx context.Context, center workout.Coords, zoom int) {
	s.emit(ctx, Message{Type: TypeView, Data: ViewData{Center: center, Zoom: zoom}})
}

func (s *Surface) AddMarker(ctx context.Context, at workout.Coords, popup string, kind workout.Kind) {
	s.emit(ctx, Message{Type: TypeMarker, Data: MarkerData{Coords: at, Popup: popup, Kind: kind}})
}

func (s *Surface) PanTo(ctx context.Context, at workout.Coords, zoom int) {
	s.emit(ctx, Message{Type: TypePan, Data: ViewData{Center: at, Zoom: zoom}})
}

func (s *Surface) RenderItem(ctx context.Context, r *workout.Record) {
	s.emit(ctx, Message{Type: TypeItem, Data: types.FromRecord(r)})
}

// Clear drops every rendered row and the map so a replay starts from nothing.
func (s *Surface) Clear(ctx context.Context) {
	s.emit(ctx, Message{Type: TypeClear})
}

func (s *Surface) Show(ctx context.Context) {
	s.emit(ctx, Message{Type: TypeFormShow})
}

// Hide clears and hides the form now and re-enables it after the reset delay.
func (s *Surface) Hide(ctx context.Context) {
	s.emit(ctx, Message{Type: TypeFormHide})
	later := context.WithoutCancel(ctx)
	time.AfterFunc(s.resetDelay, func() {
		s.emit(later, Message{Type: TypeFormReady})
	})
}

func (s *Surface) Alert(ctx context.Context, msg string) {
	s.emit(ctx, Message{Type: TypeAlert, Data: AlertData{Message: msg}})
}

func (s *Surface) Reload(ctx context.Context) {
	s.emit(ctx, Message{Type: TypeReload})
}
