// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/internal/adapters/repository"
	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session implementation.
type Dependencies interface {
	MapClick(ctx context.Context, at workout.Coords) error
	Submit(ctx context.Context, in service.FormInput) (*workout.Record, error)
	Select(ctx context.Context, id string) (*workout.Record, error)
	Reset(ctx context.Context) error
	Locate(ctx context.Context) error
	Workouts(ctx context.Context) []*workout.Record

	StatsProvider
}

// LocationReporter accepts positions reported by the page.
type LocationReporter interface {
	Report(ctx context.Context, at workout.Coords) error
	ReportError(ctx context.Context, reason string)
}

// Workout mirrors the read shape returned by workout queries.
type Workout = types.Workout

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	workoutsHandler    *WorkoutsHandler
	sessionHandler     *SessionHandler
	geolocationHandler *GeolocationHandler
	reporter           LocationReporter
	stream             http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLocationReporter enables the geolocation report routes.
func WithLocationReporter(r LocationReporter) Option {
	return func(s *Server) { s.reporter = r }
}

// WithStream mounts the page event stream at /ws.
func WithStream(h http.Handler) Option {
	return func(s *Server) { s.stream = h }
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		workoutsHandler:    NewWorkoutsHandler(deps),
		sessionHandler:     NewSessionHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.geolocationHandler = NewGeolocationHandler(s.reporter, deps)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID, middleware.Recoverer)

		r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
		r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

		r.Get("/workouts", MetricsMiddleware(s.workoutsHandler.HandleList, "workouts"))
		r.Post("/workouts", MetricsMiddleware(s.workoutsHandler.HandleCreate, "workouts"))
		r.Post("/workouts/{id}/select", MetricsMiddleware(s.workoutsHandler.HandleSelect, "select"))

		r.Post("/map/click", MetricsMiddleware(s.sessionHandler.HandleMapClick, "map_click"))
		r.Post("/reset", MetricsMiddleware(s.sessionHandler.HandleReset, "reset"))

		r.Post("/geolocation", MetricsMiddleware(s.geolocationHandler.HandleReport, "geolocation"))
		r.Post("/geolocation/error", MetricsMiddleware(s.geolocationHandler.HandleReportError, "geolocation"))
	})

	if s.stream != nil {
		r.Get("/ws", MetricsMiddleware(s.stream.ServeHTTP, "ws"))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates session errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrValidation), errors.Is(err, workout.ErrUnknownKind):
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrMapNotReady), errors.Is(err, service.ErrNoPendingClick):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
