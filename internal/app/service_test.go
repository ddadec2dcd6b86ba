package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mapty/internal/adapters/geo"
	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/internal/adapters/repository"
	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

var (
	home  = workout.Coords{50.1, 14.4}
	click = workout.Coords{50.11, 14.42}
)

type session struct {
	svc     *service.Service
	page    *recorder
	backend *kv.Memory
	store   *repository.WorkoutStore
}

func startSession(ctx context.Context, provider geo.Provider, backend *kv.Memory, opts ...service.Option) session {
	store := repository.NewWorkoutStore(backend)
	page := &recorder{}
	svc, err := service.New(store, provider, page.views(), opts...)
	So(err, ShouldBeNil)
	So(svc.Start(ctx), ShouldBeNil)
	Reset(func() { _ = svc.Stop(context.Background()) })
	return session{svc: svc, page: page, backend: backend, store: store}
}

func waitForMap(ctx context.Context, s session) {
	_, err := s.svc.AwaitLocation(ctx)
	So(err, ShouldBeNil)
}

func TestNew(t *testing.T) {
	Convey("Given missing collaborators", t, func() {
		page := &recorder{}
		views := page.views()
		views.Notifier = nil

		Convey("Then construction fails", func() {
			_, err := service.New(repository.NewWorkoutStore(kv.NewMemory()), geo.StaticProvider{Coords: home}, views)
			So(errors.Is(err, service.ErrMissingCollaborator), ShouldBeTrue)
			_, err = service.New(nil, geo.StaticProvider{Coords: home}, page.views())
			So(errors.Is(err, service.ErrMissingCollaborator), ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		page := &recorder{}
		svc, err := service.New(repository.NewWorkoutStore(kv.NewMemory()), geo.StaticProvider{Coords: home}, page.views())
		So(err, ShouldBeNil)

		Convey("Then commands are refused", func() {
			So(errors.Is(svc.MapClick(context.Background(), click), service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stop(context.Background()), ShouldBeNil)
		})
	})
}

func TestStartup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given stored workouts and an available position", t, func() {
		backend := kv.NewMemory()
		seed := repository.NewWorkoutStore(backend)
		a, err := workout.NewRunning(workout.Coords{1, 1}, 5, 25, 170)
		So(err, ShouldBeNil)
		b, err := workout.NewCycling(workout.Coords{2, 2}, 20, 60, 0)
		So(err, ShouldBeNil)
		So(seed.Append(ctx, a), ShouldBeNil)
		So(seed.Append(ctx, b), ShouldBeNil)

		s := startSession(ctx, geo.StaticProvider{Coords: home}, backend, service.WithZoom(15))
		waitForMap(ctx, s)

		Convey("Then the list is rendered first, in stored order", func() {
			items := s.page.only("item")
			So(len(items), ShouldEqual, 2)
			So(items[0].text, ShouldEqual, a.ID())
			So(items[1].text, ShouldEqual, b.ID())
			So(s.page.ops()[:2], ShouldResemble, []string{"item", "item"})
		})

		Convey("And the map is centered on the position with markers for every workout", func() {
			views := s.page.only("view")
			So(len(views), ShouldEqual, 1)
			So(views[0].coords, ShouldResemble, home)
			So(views[0].zoom, ShouldEqual, 15)
			markers := s.page.only("marker")
			So(len(markers), ShouldEqual, 2)
			So(markers[0].text, ShouldEqual, a.PopupContent())
			So(markers[1].coords, ShouldResemble, workout.Coords{2, 2})
		})

		Convey("And the stats reflect the session", func() {
			st := s.svc.Stats(ctx)
			So(st.Workouts, ShouldEqual, 2)
			So(st.Running, ShouldEqual, 1)
			So(st.Cycling, ShouldEqual, 1)
			So(st.MapReady, ShouldBeTrue)
			So(st.Started, ShouldBeTrue)
		})
	})

	Convey("Given a corrupt persisted slot", t, func() {
		backend := kv.NewMemory()
		So(backend.Set(ctx, repository.DefaultKey, []byte("not json")), ShouldBeNil)
		s := startSession(ctx, geo.StaticProvider{Coords: home}, backend)
		waitForMap(ctx, s)

		Convey("Then the session starts empty without an error", func() {
			So(s.svc.Workouts(ctx), ShouldBeEmpty)
			So(s.page.only("item"), ShouldBeEmpty)
		})
	})

	Convey("Given the position is unavailable", t, func() {
		s := startSession(ctx, geo.StaticProvider{Err: geo.ErrUnavailable}, kv.NewMemory())
		_, err := s.svc.AwaitLocation(ctx)

		Convey("Then the user is alerted and no map is created", func() {
			So(errors.Is(err, geo.ErrUnavailable), ShouldBeTrue)
			alerts := s.page.only("alert")
			So(len(alerts), ShouldEqual, 1)
			So(alerts[0].text, ShouldEqual, "Could not get your position")
			So(s.page.only("view"), ShouldBeEmpty)
		})

		Convey("And map dependent commands are refused", func() {
			So(errors.Is(s.svc.MapClick(ctx, click), service.ErrMapNotReady), ShouldBeTrue)
			_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5", Duration: "20", Cadence: "170"})
			So(errors.Is(err, service.ErrMapNotReady), ShouldBeTrue)
			_, err = s.svc.Select(ctx, "any")
			So(errors.Is(err, service.ErrMapNotReady), ShouldBeTrue)
		})
	})

	Convey("Given a position reported by the page", t, func() {
		provider := geo.NewClientProvider()
		s := startSession(ctx, provider, kv.NewMemory())

		Convey("When the page reports it", func() {
			So(provider.Report(ctx, workout.Coords{48.2, 16.4}), ShouldBeNil)
			c, err := s.svc.AwaitLocation(ctx)

			Convey("Then the map is created there", func() {
				So(err, ShouldBeNil)
				So(c, ShouldResemble, workout.Coords{48.2, 16.4})
				So(s.page.only("view")[0].zoom, ShouldEqual, service.DefaultZoom)
			})
		})
	})
}

func TestLocate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given the page denied the first position request", t, func() {
		provider := geo.NewClientProvider()
		s := startSession(ctx, provider, kv.NewMemory())
		provider.ReportError(ctx, "denied")
		_, err := s.svc.AwaitLocation(ctx)
		So(errors.Is(err, geo.ErrUnavailable), ShouldBeTrue)
		So(errors.Is(s.svc.MapClick(ctx, click), service.ErrMapNotReady), ShouldBeTrue)

		Convey("When a reloaded page reports a position and the session locates again", func() {
			So(provider.Report(ctx, workout.Coords{48.2, 16.4}), ShouldBeNil)
			So(s.svc.Locate(ctx), ShouldBeNil)
			c, err := s.svc.AwaitLocation(ctx)

			Convey("Then the map is created there and clicks are accepted", func() {
				So(err, ShouldBeNil)
				So(c, ShouldResemble, workout.Coords{48.2, 16.4})
				So(s.svc.Stats(ctx).MapReady, ShouldBeTrue)
				So(len(s.page.only("view")), ShouldEqual, 1)
				So(s.svc.MapClick(ctx, click), ShouldBeNil)
			})
		})
	})

	Convey("Given a request that is still outstanding", t, func() {
		provider := geo.NewClientProvider()
		s := startSession(ctx, provider, kv.NewMemory())

		Convey("When the session is asked to locate again", func() {
			So(s.svc.Locate(ctx), ShouldBeNil)
			So(s.svc.Locate(ctx), ShouldBeNil)
			So(provider.Report(ctx, workout.Coords{1, 2}), ShouldBeNil)
			_, err := s.svc.AwaitLocation(ctx)

			Convey("Then the original request is answered once", func() {
				So(err, ShouldBeNil)
				So(len(s.page.only("view")), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a session whose map is ready", t, func() {
		s := startSession(ctx, geo.StaticProvider{Coords: home}, kv.NewMemory())
		waitForMap(ctx, s)
		s.page.reset()

		Convey("Then locating again changes nothing", func() {
			So(s.svc.Locate(ctx), ShouldBeNil)
			time.Sleep(20 * time.Millisecond)
			So(s.page.ops(), ShouldBeEmpty)
		})
	})
}

func TestSubmit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given a ready map", t, func() {
		s := startSession(ctx, geo.StaticProvider{Coords: home}, kv.NewMemory())
		waitForMap(ctx, s)
		s.page.reset()

		Convey("When submitting without clicking the map first", func() {
			_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5", Duration: "20", Cadence: "170"})

			Convey("Then there is no pending click", func() {
				So(errors.Is(err, service.ErrNoPendingClick), ShouldBeTrue)
			})
		})

		Convey("When the map is clicked", func() {
			So(s.svc.MapClick(ctx, click), ShouldBeNil)

			Convey("Then the form is shown", func() {
				So(s.page.ops(), ShouldResemble, []string{"form_show"})
				So(s.svc.Stats(ctx).PendingClick, ShouldBeTrue)
			})

			Convey("And a valid running workout is created at the click", func() {
				r, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5.2", Duration: "24", Cadence: "178"})
				So(err, ShouldBeNil)
				So(r.Coords(), ShouldResemble, click)
				So(r.Pace(), ShouldAlmostEqual, 4.6154, 0.0001)

				So(s.page.ops(), ShouldResemble, []string{"form_show", "marker", "item", "form_hide"})
				So(s.page.only("marker")[0].text, ShouldEqual, r.PopupContent())
				So(s.store.Len(ctx), ShouldEqual, 1)
				So(s.svc.Stats(ctx).PendingClick, ShouldBeFalse)

				blob, err := s.backend.Get(ctx, repository.DefaultKey)
				So(err, ShouldBeNil)
				So(string(blob), ShouldContainSubstring, r.ID())
			})

			Convey("And a cycling workout with zero elevation is accepted", func() {
				r, err := s.svc.Submit(ctx, service.FormInput{Type: "cycling", Distance: "29", Duration: "94", ElevationGain: "0"})
				So(err, ShouldBeNil)
				So(r.Speed(), ShouldAlmostEqual, 18.5106, 0.0001)
			})

			Convey("And a negative distance is rejected without side effects", func() {
				_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "-3", Duration: "24", Cadence: "178"})

				So(errors.Is(err, workout.ErrValidation), ShouldBeTrue)
				alerts := s.page.only("alert")
				So(len(alerts), ShouldEqual, 1)
				So(alerts[0].text, ShouldEqual, "Inputs have to be positive numbers!")
				So(s.store.Len(ctx), ShouldEqual, 0)
				_, err = s.backend.Get(ctx, repository.DefaultKey)
				So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
				So(s.page.only("marker"), ShouldBeEmpty)

				Convey("And the pending click survives for a corrected submit", func() {
					r, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "3", Duration: "24", Cadence: "178"})
					So(err, ShouldBeNil)
					So(r.Coords(), ShouldResemble, click)
				})
			})

			Convey("And non-numeric input is rejected", func() {
				_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "abc", Duration: "24", Cadence: "178"})
				var verr *workout.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, "distance")
			})

			Convey("And an unknown type is a validation error", func() {
				_, err := s.svc.Submit(ctx, service.FormInput{Type: "rowing", Distance: "3", Duration: "24", Cadence: "178"})
				So(errors.Is(err, workout.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, workout.ErrUnknownKind), ShouldBeTrue)
				So(len(s.page.only("alert")), ShouldEqual, 1)
			})
		})
	})
}

func TestSelect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given a session with one workout", t, func() {
		s := startSession(ctx, geo.StaticProvider{Coords: home}, kv.NewMemory(), service.WithZoom(14))
		waitForMap(ctx, s)
		So(s.svc.MapClick(ctx, click), ShouldBeNil)
		r, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "170"})
		So(err, ShouldBeNil)

		Convey("When it is selected", func() {
			got, err := s.svc.Select(ctx, r.ID())

			Convey("Then the map pans to it and the counter is untouched", func() {
				So(err, ShouldBeNil)
				So(got.ID(), ShouldEqual, r.ID())
				pans := s.page.only("pan")
				So(len(pans), ShouldEqual, 1)
				So(pans[0].coords, ShouldResemble, click)
				So(pans[0].zoom, ShouldEqual, 14)
				So(got.Clicks(), ShouldEqual, 0)
			})
		})

		Convey("When an unknown id is selected", func() {
			_, err := s.svc.Select(ctx, "missing")

			Convey("Then not found is reported", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(s.page.only("pan"), ShouldBeEmpty)
			})
		})
	})
}

func TestReset(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given a session with workouts", t, func() {
		backend := kv.NewMemory()
		s := startSession(ctx, geo.StaticProvider{Coords: home}, backend)
		waitForMap(ctx, s)
		for i := 0; i < 3; i++ {
			So(s.svc.MapClick(ctx, click), ShouldBeNil)
			_, err := s.svc.Submit(ctx, service.FormInput{Type: "cycling", Distance: "10", Duration: "30", ElevationGain: "50"})
			So(err, ShouldBeNil)
		}
		s.page.reset()

		Convey("When the session is reset", func() {
			So(s.svc.Reset(ctx), ShouldBeNil)
			waitForMap(ctx, s)

			Convey("Then storage is empty and the page reloads into a fresh session", func() {
				So(s.svc.Workouts(ctx), ShouldBeEmpty)
				_, err := backend.Get(ctx, repository.DefaultKey)
				So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
				So(s.page.ops()[0], ShouldEqual, "reload")
				So(s.page.only("item"), ShouldBeEmpty)
				So(len(s.page.only("view")), ShouldEqual, 1)
			})

			Convey("And a new store over the same backend starts empty", func() {
				fresh := repository.NewWorkoutStore(backend)
				So(fresh.Load(ctx), ShouldBeNil)
				So(fresh.Len(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestReplay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given a session with a workout and a pending click", t, func() {
		s := startSession(ctx, geo.StaticProvider{Coords: home}, kv.NewMemory())
		waitForMap(ctx, s)
		So(s.svc.MapClick(ctx, click), ShouldBeNil)
		_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "170"})
		So(err, ShouldBeNil)
		So(s.svc.MapClick(ctx, click), ShouldBeNil)

		Convey("When a late page asks for a replay", func() {
			late := &recorder{}
			So(s.svc.Replay(ctx, late.views()), ShouldBeNil)

			Convey("Then it is cleared and receives the list, the view, the markers and the open form", func() {
				So(late.ops(), ShouldResemble, []string{"clear", "item", "view", "marker", "form_show"})
			})
		})

		Convey("When the replay target is incomplete", func() {
			err := s.svc.Replay(ctx, service.Views{})
			So(errors.Is(err, service.ErrMissingCollaborator), ShouldBeTrue)
		})
	})
}

func TestConcurrentCommands(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Convey("Given many clients clicking and submitting at once", t, func() {
		s := startSession(ctx, geo.StaticProvider{Coords: home}, kv.NewMemory(), service.WithQueueSize(512))
		waitForMap(ctx, s)

		errs := make(chan error, 40)
		for i := 0; i < 20; i++ {
			go func() {
				if err := s.svc.MapClick(ctx, click); err != nil {
					errs <- err
					return
				}
				_, err := s.svc.Submit(ctx, service.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "170"})
				errs <- err
			}()
		}
		created, noClick := 0, 0
		for i := 0; i < 20; i++ {
			switch err := <-errs; {
			case err == nil:
				created++
			case errors.Is(err, service.ErrNoPendingClick):
				noClick++
			}
		}

		Convey("Then every command either created a workout or found the click consumed", func() {
			So(created+noClick, ShouldEqual, 20)
			So(created, ShouldBeGreaterThan, 0)
			So(s.store.Len(ctx), ShouldEqual, created)
		})
	})
}
