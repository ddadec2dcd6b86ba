// Package service implements the workout session: startup restore, the
// map-click and submit flow, select-to-focus and reset.
//
// Every command runs as a task on a single sequential worker, so session
// state is only ever touched by one goroutine at a time even though commands
// arrive from concurrent HTTP handlers and geolocation callbacks.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/okian/mapty/internal/adapters/geo"
	eventqueue "github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/internal/adapters/mq/worker"
	"github.com/okian/mapty/internal/adapters/repository"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

// Stats is a read-only summary of the session.
type Stats struct {
	Workouts     int  `json:"workouts"`
	Running      int  `json:"running"`
	Cycling      int  `json:"cycling"`
	MapReady     bool `json:"mapReady"`
	PendingClick bool `json:"pendingClick"`
	QueueLength  int  `json:"queueLength"`
	Started      bool `json:"started"`
}

// Service is the session controller and the only component that talks to
// the page, geolocation and storage collaborators.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	provider geo.Provider
	views    Views

	queue  *eventqueue.InMemoryQueue
	worker *worker.Sequential

	zoom       int
	queueSize  int
	recordOpts []workout.Option

	// Session state. Written only from worker tasks; read under mu.
	mapReady   bool
	locating   bool
	center     workout.Coords
	pending    *workout.Coords
	generation uint64
	location   *geo.Position

	started bool
	runCtx  context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a session over its collaborators.
func New(store repository.Store, provider geo.Provider, views Views, opts ...Option) (*Service, error) {
	if store == nil || provider == nil || !views.complete() {
		return nil, ErrMissingCollaborator
	}
	s := &Service{
		store:     store,
		provider:  provider,
		views:     views,
		zoom:      DefaultZoom,
		queueSize: defaultQueueSize,
		location:  geo.NewPosition(),
		logger:    logger.Get().Named("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start launches the session worker and runs the startup flow: restore the
// stored workouts into the list, then ask for the current position. The
// position is answered asynchronously; AwaitLocation observes the outcome.
// ctx bounds the lifetime of the session.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.worker = worker.NewSequential(s.queue, worker.WithName("session-worker"), worker.WithLogger(s.logger))
	s.started = true
	s.mu.Unlock()

	go s.worker.Run(s.runCtx)

	s.logger.Info(ctx, "starting session", logger.Int("zoom", s.zoom))
	return s.do(ctx, "start", s.bootstrap)
}

// Stop shuts the worker down. Queued commands that have not started fail.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	q, w, cancel := s.queue, s.worker, s.cancel
	s.mu.Unlock()

	_ = q.Close()
	err := w.Shutdown(ctx)
	cancel()
	s.logger.Info(ctx, "session stopped")
	return err
}

// do runs fn on the session worker and waits for it.
func (s *Service) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	return eventqueue.Submit(ctx, q, name, fn)
}

// bootstrap loads the store, renders the list and requests the position.
func (s *Service) bootstrap(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		s.logger.Error(ctx, "restore failed", logger.Error(err))
		return fmt.Errorf("restore workouts: %w", err)
	}
	records := s.store.All(ctx)
	for _, r := range records {
		s.views.List.RenderItem(ctx, r)
	}
	metrics.UpdateStoredWorkouts(len(records))

	s.mu.Lock()
	s.mapReady = false
	s.pending = nil
	s.mu.Unlock()

	s.logger.Info(ctx, "session restored", logger.Int("workouts", len(records)))
	s.requestPosition()
	return nil
}

// requestPosition asks the provider for the current position under a new
// generation. Answers to earlier requests are ignored from here on.
func (s *Service) requestPosition() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.locating = true
	s.location = geo.NewPosition()
	loc := s.location
	runCtx := s.runCtx
	s.mu.Unlock()

	s.provider.CurrentPosition(runCtx,
		func(c workout.Coords) {
			s.deliver(runCtx, "geolocation_success", func(ctx context.Context) error {
				return s.onPosition(ctx, gen, loc, c)
			})
		},
		func(err error) {
			s.deliver(runCtx, "geolocation_failure", func(ctx context.Context) error {
				return s.onPositionError(ctx, gen, loc, err)
			})
		},
	)
}

// Locate asks for the position again when the map is missing and no request
// is outstanding, for example after the user denied access and the page
// later reported a position.
func (s *Service) Locate(ctx context.Context) error {
	return s.do(ctx, "locate", func(ctx context.Context) error {
		s.mu.RLock()
		idle := !s.mapReady && !s.locating
		s.mu.RUnlock()
		if !idle {
			return nil
		}
		s.logger.Debug(ctx, "requesting position again")
		s.requestPosition()
		return nil
	})
}

// deliver runs a callback result on the worker. It is called from provider
// goroutines, so it may block.
func (s *Service) deliver(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if err := s.do(ctx, name, fn); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn(ctx, "dropped session event", logger.String("event", name), logger.Error(err))
	}
}

func (s *Service) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gen == s.generation
}

func (s *Service) onPosition(ctx context.Context, gen uint64, loc *geo.Position, c workout.Coords) error {
	if !s.current(gen) {
		loc.Fail(fmt.Errorf("%w: session was reset", geo.ErrUnavailable))
		return nil
	}

	s.mu.Lock()
	s.mapReady = true
	s.locating = false
	s.center = c
	s.mu.Unlock()

	s.views.Map.CreateView(ctx, c, s.zoom)
	for _, r := range s.store.All(ctx) {
		s.views.Map.AddMarker(ctx, r.Coords(), r.PopupContent(), r.Kind())
	}
	metrics.RecordGeolocation("success")
	s.logger.Info(ctx, "map ready",
		logger.Float64("lat", c.Lat()),
		logger.Float64("lng", c.Lng()))
	loc.Resolve(c)
	return nil
}

func (s *Service) onPositionError(ctx context.Context, gen uint64, loc *geo.Position, cause error) error {
	if !s.current(gen) {
		loc.Fail(cause)
		return nil
	}
	s.mu.Lock()
	s.locating = false
	s.mu.Unlock()

	s.views.Notifier.Alert(ctx, AlertPositionUnavailable)
	metrics.RecordGeolocation("failure")
	s.logger.Warn(ctx, "position unavailable, continuing without a map", logger.Error(cause))
	loc.Fail(cause)
	return nil
}

// AwaitLocation blocks until the current geolocation request is answered and
// returns its outcome.
func (s *Service) AwaitLocation(ctx context.Context) (workout.Coords, error) {
	s.mu.RLock()
	loc := s.location
	s.mu.RUnlock()
	return loc.Wait(ctx)
}

// MapClick records the clicked position and shows the form.
func (s *Service) MapClick(ctx context.Context, at workout.Coords) error {
	return s.do(ctx, "map_click", func(ctx context.Context) error {
		if !s.isMapReady() {
			return ErrMapNotReady
		}
		if !at.Valid() {
			return &workout.ValidationError{Field: "coords", Value: math.NaN()}
		}
		s.mu.Lock()
		click := at
		s.pending = &click
		s.mu.Unlock()

		s.views.Form.Show(ctx)
		return nil
	})
}

// Submit turns the form input into a workout at the pending click position,
// stores it, and renders it. Invalid input raises the alert and leaves the
// store, the persisted slot and the pending click untouched.
func (s *Service) Submit(ctx context.Context, in FormInput) (*workout.Record, error) {
	var created *workout.Record
	err := s.do(ctx, "submit", func(ctx context.Context) error {
		s.mu.RLock()
		ready, pending := s.mapReady, s.pending
		s.mu.RUnlock()
		if !ready {
			return ErrMapNotReady
		}
		if pending == nil {
			return ErrNoPendingClick
		}

		r, err := s.build(*pending, in)
		if err != nil {
			var verr *workout.ValidationError
			if errors.As(err, &verr) {
				metrics.RecordValidationFailure(string(verr.Kind), verr.Field)
			}
			s.views.Notifier.Alert(ctx, AlertInvalidInputs)
			s.logger.Debug(ctx, "rejected workout input", logger.Error(err))
			return err
		}

		if err := s.store.Append(ctx, r); err != nil {
			return fmt.Errorf("store workout: %w", err)
		}

		s.views.Map.AddMarker(ctx, r.Coords(), r.PopupContent(), r.Kind())
		s.views.List.RenderItem(ctx, r)
		s.views.Form.Hide(ctx)

		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()

		metrics.RecordWorkoutCreated(string(r.Kind()))
		s.logger.Info(ctx, "workout created",
			logger.String("id", r.ID()),
			logger.String("kind", string(r.Kind())))
		created = r
		return nil
	})
	return created, err
}

func (s *Service) build(at workout.Coords, in FormInput) (*workout.Record, error) {
	kind, err := workout.ParseKind(in.Type)
	if err != nil {
		return nil, errors.Join(&workout.ValidationError{Kind: workout.Kind(in.Type), Field: "type", Value: math.NaN()}, err)
	}
	distance := workout.ParseNumber(in.Distance)
	duration := workout.ParseNumber(in.Duration)
	extra := workout.ParseNumber(in.Cadence)
	if kind == workout.KindCycling {
		extra = workout.ParseNumber(in.ElevationGain)
	}
	return workout.New(kind, at, distance, duration, extra, s.recordOpts...)
}

// Select centers the map on the workout with the given id.
func (s *Service) Select(ctx context.Context, id string) (*workout.Record, error) {
	var found *workout.Record
	err := s.do(ctx, "select", func(ctx context.Context) error {
		if !s.isMapReady() {
			return ErrMapNotReady
		}
		r, err := s.store.FindByID(ctx, id)
		if err != nil {
			metrics.RecordWorkoutSelected(false)
			return err
		}
		s.views.Map.PanTo(ctx, r.Coords(), s.zoom)
		metrics.RecordWorkoutSelected(true)
		found = r
		return nil
	})
	return found, err
}

// Reset deletes every workout and the persisted slot, reloads the page and
// starts a fresh session.
func (s *Service) Reset(ctx context.Context) error {
	return s.do(ctx, "reset", func(ctx context.Context) error {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear workouts: %w", err)
		}
		metrics.RecordSessionReset()
		s.views.Reloader.Reload(ctx)
		s.logger.Info(ctx, "session reset")
		return s.bootstrap(ctx)
	})
}

// Replay re-renders the current state into v, for pages that connect after
// the session started.
func (s *Service) Replay(ctx context.Context, v Views) error {
	if !v.complete() {
		return ErrMissingCollaborator
	}
	return s.do(ctx, "replay", func(ctx context.Context) error {
		s.mu.RLock()
		ready, center, pending := s.mapReady, s.center, s.pending
		s.mu.RUnlock()

		v.List.Clear(ctx)
		records := s.store.All(ctx)
		for _, r := range records {
			v.List.RenderItem(ctx, r)
		}
		if !ready {
			return nil
		}
		v.Map.CreateView(ctx, center, s.zoom)
		for _, r := range records {
			v.Map.AddMarker(ctx, r.Coords(), r.PopupContent(), r.Kind())
		}
		if pending != nil {
			v.Form.Show(ctx)
		}
		return nil
	})
}

// Workouts returns the stored workouts in insertion order.
func (s *Service) Workouts(ctx context.Context) []*workout.Record {
	return s.store.All(ctx)
}

// Stats returns a snapshot of the session state.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	st := Stats{
		MapReady:     s.mapReady,
		PendingClick: s.pending != nil,
		Started:      s.started,
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len(ctx)
	}
	s.mu.RUnlock()

	for _, r := range s.store.All(ctx) {
		st.Workouts++
		switch r.Kind() {
		case workout.KindRunning:
			st.Running++
		case workout.KindCycling:
			st.Cycling++
		}
	}
	return st
}

func (s *Service) isMapReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapReady
}
