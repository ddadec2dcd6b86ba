package workout_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/mapty/internal/domain/workout"
	. "github.com/smartystreets/goconvey/convey"
)

var prague = workout.Coords{50.1, 14.4}

func fixedClock(t time.Time) workout.Option {
	return workout.WithClock(func() time.Time { return t })
}

func TestNewRunning(t *testing.T) {
	Convey("Given valid running inputs", t, func() {
		createdAt := time.Date(2024, time.April, 14, 9, 30, 0, 0, time.UTC)

		Convey("When creating Running([50.1,14.4], 5.2, 24, 178)", func() {
			r, err := workout.NewRunning(prague, 5.2, 24, 178, fixedClock(createdAt))

			Convey("Then pace is duration/distance", func() {
				So(err, ShouldBeNil)
				So(r.Pace(), ShouldEqual, 24/5.2)
				So(r.Pace(), ShouldAlmostEqual, 4.6154, 0.0001)
			})

			Convey("And the base fields are populated", func() {
				So(r.ID(), ShouldNotBeEmpty)
				So(r.CreatedAt(), ShouldEqual, createdAt)
				So(r.Coords(), ShouldResemble, prague)
				So(r.Distance(), ShouldEqual, 5.2)
				So(r.Duration(), ShouldEqual, 24)
				So(r.Cadence(), ShouldEqual, 178)
				So(r.Kind(), ShouldEqual, workout.KindRunning)
				So(r.Clicks(), ShouldEqual, 0)
				So(r.Speed(), ShouldEqual, 0)
			})

			Convey("And the description names the type, month and day", func() {
				So(r.Description(), ShouldEqual, "Running on April 14")
				So(r.PopupContent(), ShouldEqual, "🏃‍♂️ Running on April 14")
			})
		})
	})

	Convey("Given invalid running inputs", t, func() {
		cases := []struct {
			name                        string
			distance, duration, cadence float64
			field                       string
		}{
			{"negative distance", -3, 24, 178, "distance"},
			{"zero duration", 5, 0, 178, "duration"},
			{"NaN cadence", 5, 24, math.NaN(), "cadence"},
			{"infinite distance", math.Inf(1), 24, 178, "distance"},
			{"negative cadence", 5, 24, -1, "cadence"},
		}
		for _, tc := range cases {
			Convey("When "+tc.name, func() {
				r, err := workout.NewRunning(prague, tc.distance, tc.duration, tc.cadence)

				Convey("Then a ValidationError names the field and no record is built", func() {
					So(r, ShouldBeNil)
					So(errors.Is(err, workout.ErrValidation), ShouldBeTrue)
					var verr *workout.ValidationError
					So(errors.As(err, &verr), ShouldBeTrue)
					So(verr.Field, ShouldEqual, tc.field)
					So(verr.Kind, ShouldEqual, workout.KindRunning)
				})
			})
		}

		Convey("When coordinates are not finite", func() {
			r, err := workout.NewRunning(workout.Coords{math.NaN(), 14.4}, 5, 24, 178)

			Convey("Then construction is rejected", func() {
				So(r, ShouldBeNil)
				var verr *workout.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, "coords")
			})
		})
	})
}

func TestNewCycling(t *testing.T) {
	Convey("Given valid cycling inputs", t, func() {
		createdAt := time.Date(2024, time.December, 3, 18, 0, 0, 0, time.UTC)

		Convey("When creating Cycling([50.1,14.4], 29, 94, 458)", func() {
			c, err := workout.NewCycling(prague, 29, 94, 458, fixedClock(createdAt))

			Convey("Then speed is distance/(duration/60)", func() {
				So(err, ShouldBeNil)
				So(c.Speed(), ShouldEqual, 29/(94.0/60))
				So(c.Speed(), ShouldAlmostEqual, 18.5106, 0.0001)
				So(c.ElevationGain(), ShouldEqual, 458)
				So(c.Description(), ShouldEqual, "Cycling on December 3")
				So(c.PopupContent(), ShouldEqual, "🚴‍♀️ Cycling on December 3")
			})
		})

		Convey("When elevation is zero or negative", func() {
			flat, err1 := workout.NewCycling(prague, 10, 30, 0)
			downhill, err2 := workout.NewCycling(prague, 10, 30, -120)

			Convey("Then the lenient policy accepts both", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(flat.ElevationGain(), ShouldEqual, 0)
				So(downhill.ElevationGain(), ShouldEqual, -120)
			})
		})

		Convey("When elevation is negative under the strict policy", func() {
			c, err := workout.NewCycling(prague, 10, 30, -120, workout.WithPolicy(workout.Policy{StrictElevation: true}))

			Convey("Then it is rejected", func() {
				So(c, ShouldBeNil)
				var verr *workout.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, "elevationGain")
			})
		})

		Convey("When elevation is NaN", func() {
			c, err := workout.NewCycling(prague, 10, 30, math.NaN())

			Convey("Then finiteness is still enforced", func() {
				So(c, ShouldBeNil)
				So(errors.Is(err, workout.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestNewDispatch(t *testing.T) {
	Convey("Given the kind dispatcher", t, func() {
		Convey("When the kind is unknown", func() {
			r, err := workout.New(workout.Kind("swimming"), prague, 1, 1, 1)

			Convey("Then ErrUnknownKind is returned", func() {
				So(r, ShouldBeNil)
				So(errors.Is(err, workout.ErrUnknownKind), ShouldBeTrue)
			})
		})

		Convey("When parsing discriminators", func() {
			k, err := workout.ParseKind(" Running ")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, workout.KindRunning)
			_, err = workout.ParseKind("rowing")
			So(errors.Is(err, workout.ErrUnknownKind), ShouldBeTrue)
			So(workout.KindCycling.Title(), ShouldEqual, "Cycling")
		})
	})
}

func TestRecordIDs(t *testing.T) {
	Convey("Given rapid successive creations", t, func() {
		seen := make(map[string]struct{})
		for i := 0; i < 50; i++ {
			r, err := workout.NewRunning(prague, 5, 25, 170)
			So(err, ShouldBeNil)
			seen[r.ID()] = struct{}{}
		}

		Convey("Then every id is distinct", func() {
			So(len(seen), ShouldEqual, 50)
		})
	})
}

func TestClick(t *testing.T) {
	Convey("Given a record", t, func() {
		r, err := workout.NewRunning(prague, 5, 25, 170)
		So(err, ShouldBeNil)

		Convey("When Click is called twice", func() {
			r.Click()
			r.Click()

			Convey("Then only the counter changes", func() {
				So(r.Clicks(), ShouldEqual, 2)
				So(r.Pace(), ShouldEqual, 5.0)
			})
		})
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Given a persisted running snapshot", t, func() {
		createdAt := time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)
		orig, err := workout.NewRunning(prague, 5.2, 24, 178, fixedClock(createdAt))
		So(err, ShouldBeNil)
		orig.Click()
		snap := orig.Snapshot()

		Convey("When the derived fields were tampered with", func() {
			bogus := 99.0
			snap.Pace = &bogus
			snap.Description = "edited"

			restored, err := workout.FromSnapshot(snap)

			Convey("Then restore recomputes them through the constructor", func() {
				So(err, ShouldBeNil)
				So(restored.ID(), ShouldEqual, orig.ID())
				So(restored.CreatedAt(), ShouldEqual, createdAt)
				So(restored.Clicks(), ShouldEqual, 1)
				So(restored.Pace(), ShouldEqual, orig.Pace())
				So(restored.Description(), ShouldEqual, "Running on March 1")
			})
		})

		Convey("When the variant field is missing", func() {
			snap.Cadence = nil
			restored, err := workout.FromSnapshot(snap)

			Convey("Then restore fails validation", func() {
				So(restored, ShouldBeNil)
				So(errors.Is(err, workout.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the id is missing", func() {
			snap.ID = ""
			_, err := workout.FromSnapshot(snap)
			So(errors.Is(err, workout.ErrMalformedSnapshot), ShouldBeTrue)
		})

		Convey("When the type is unknown", func() {
			snap.Type = "hiking"
			_, err := workout.FromSnapshot(snap)
			So(errors.Is(err, workout.ErrUnknownKind), ShouldBeTrue)
		})
	})

	Convey("Given a cycling record", t, func() {
		c, err := workout.NewCycling(prague, 29, 94, 0)
		So(err, ShouldBeNil)

		Convey("Then a zero elevation survives the snapshot", func() {
			snap := c.Snapshot()
			So(snap.ElevationGain, ShouldNotBeNil)
			So(*snap.ElevationGain, ShouldEqual, 0)
			So(snap.Cadence, ShouldBeNil)

			restored, err := workout.FromSnapshot(snap)
			So(err, ShouldBeNil)
			So(restored.Speed(), ShouldEqual, c.Speed())
		})
	})
}
