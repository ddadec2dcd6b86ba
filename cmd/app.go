package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/mapty/internal/adapters/geo"
	"github.com/okian/mapty/internal/adapters/http/api"
	"github.com/okian/mapty/internal/adapters/http/site"
	"github.com/okian/mapty/internal/adapters/http/stream"
	"github.com/okian/mapty/internal/adapters/http/swagger"
	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/internal/adapters/repository"
	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/config"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

// application holds the wired components of one server process.
type application struct {
	backend kv.Store
	svc     *service.Service
	hub     *stream.Hub
	handler http.Handler
}

// newApplication wires storage, the page surface, geolocation, the session
// and the HTTP routes. The session is not started.
func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	backend, err := kv.Open(ctx, cfg.Storage(), log.Named("kv"))
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}

	policy := workout.WithPolicy(workout.Policy{StrictElevation: cfg.StrictMode})
	store := repository.NewWorkoutStore(backend,
		repository.WithKey(cfg.StorageKey),
		repository.WithStrict(cfg.StrictMode),
		repository.WithRecordOptions(policy),
		repository.WithLogger(log.Named("store")),
	)

	hub := stream.NewHub()
	surfaceOpts := []stream.SurfaceOption{stream.WithFormResetDelay(cfg.FormResetDelay())}
	surface := stream.NewSurface(hub, surfaceOpts...)

	var (
		provider geo.Provider
		reporter *geo.ClientProvider
	)
	switch cfg.Geolocation {
	case config.GeolocationStatic:
		provider = geo.StaticProvider{Coords: workout.Coords{cfg.HomeLat, cfg.HomeLng}}
	default:
		reporter = geo.NewClientProvider(
			geo.WithTimeout(cfg.GeolocationTimeout()),
			geo.WithLogger(log.Named("geo")),
		)
		provider = reporter
	}

	svc, err := service.New(store, provider, surface.Views(),
		service.WithZoom(cfg.MapZoom),
		service.WithQueueSize(cfg.QueueSize),
		service.WithRecordOptions(policy),
		service.WithLogger(log.Named("session")),
	)
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}

	apiOpts := []api.Option{
		api.WithStream(stream.NewHandler(hub,
			stream.WithReplayer(svc),
			stream.WithSurfaceOptions(surfaceOpts...),
			stream.WithLogger(log.Named("stream")),
		)),
	}
	if reporter != nil {
		apiOpts = append(apiOpts, api.WithLocationReporter(reporter))
	}

	router := chi.NewRouter()
	site.Register(ctx, router)
	swagger.Register(ctx, router)
	api.NewServer(svc, apiOpts...).Register(ctx, router)

	return &application{
		backend: backend,
		svc:     svc,
		hub:     hub,
		handler: router,
	}, nil
}

// Close stops the session and releases the storage backend.
func (a *application) Close(ctx context.Context) error {
	return errors.Join(a.svc.Stop(ctx), a.backend.Close())
}
