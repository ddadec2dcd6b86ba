package kv_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func exerciseStore(ctx context.Context, s kv.Store) {
	Convey("When reading a key that was never written", func() {
		_, err := s.Get(ctx, "workouts")

		Convey("Then ErrNotFound is returned", func() {
			So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When a value is written", func() {
		So(s.Set(ctx, "workouts", []byte(`[1]`)), ShouldBeNil)

		Convey("Then it reads back", func() {
			v, err := s.Get(ctx, "workouts")
			So(err, ShouldBeNil)
			So(string(v), ShouldEqual, `[1]`)
		})

		Convey("And a second write replaces it", func() {
			So(s.Set(ctx, "workouts", []byte(`[1,2]`)), ShouldBeNil)
			v, err := s.Get(ctx, "workouts")
			So(err, ShouldBeNil)
			So(string(v), ShouldEqual, `[1,2]`)
		})

		Convey("And removing it makes it missing again", func() {
			So(s.Remove(ctx, "workouts"), ShouldBeNil)
			_, err := s.Get(ctx, "workouts")
			So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When removing a missing key", func() {
		Convey("Then it is not an error", func() {
			So(s.Remove(ctx, "nothing-here"), ShouldBeNil)
		})
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory store", t, func() {
		s := kv.NewMemory()
		exerciseStore(ctx, s)

		Convey("When the caller mutates a returned slice", func() {
			So(s.Set(ctx, "k", []byte("abc")), ShouldBeNil)
			v, _ := s.Get(ctx, "k")
			v[0] = 'z'

			Convey("Then the stored value is unaffected", func() {
				again, _ := s.Get(ctx, "k")
				So(string(again), ShouldEqual, "abc")
			})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then every operation fails with ErrClosed", func() {
				_, err := s.Get(ctx, "k")
				So(errors.Is(err, kv.ErrClosed), ShouldBeTrue)
				So(errors.Is(s.Set(ctx, "k", nil), kv.ErrClosed), ShouldBeTrue)
				So(errors.Is(s.Remove(ctx, "k"), kv.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestBadger(t *testing.T) {
	ctx := context.Background()

	Convey("Given a badger store in a temp dir", t, func() {
		dir := t.TempDir()
		s, err := kv.OpenBadger(dir, logger.Get())
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		exerciseStore(ctx, s)
	})

	Convey("Given a value written before a restart", t, func() {
		dir := t.TempDir()
		first, err := kv.OpenBadger(dir, nil)
		So(err, ShouldBeNil)
		So(first.Set(ctx, "workouts", []byte(`["persisted"]`)), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("When the database is reopened", func() {
			second, err := kv.OpenBadger(dir, nil)
			So(err, ShouldBeNil)
			defer second.Close()

			Convey("Then the value survives", func() {
				v, err := second.Get(ctx, "workouts")
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, `["persisted"]`)
			})
		})
	})

	Convey("Given an in-memory badger database", t, func() {
		s, err := kv.OpenBadger("", nil)
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		exerciseStore(ctx, s)
	})
}

func TestRedis(t *testing.T) {
	ctx := context.Background()

	Convey("Given a redis store backed by miniredis", t, func() {
		srv := miniredis.RunT(t)
		s := kv.NewRedis(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "mapty:")
		Reset(func() { _ = s.Close() })

		exerciseStore(ctx, s)

		Convey("When a value is written through the prefixed store", func() {
			So(s.Set(ctx, "workouts", []byte("x")), ShouldBeNil)

			Convey("Then the key carries the prefix", func() {
				So(srv.Exists("mapty:workouts"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unreachable redis server", t, func() {
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		Convey("When dialing", func() {
			_, err := kv.DialRedis(ctx, addr, "", 0, "")

			Convey("Then the ping error is reported", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	Convey("Given the backend factory", t, func() {
		Convey("When the memory backend is selected", func() {
			s, err := kv.Open(ctx, kv.Config{Backend: "memory"}, nil)
			So(err, ShouldBeNil)
			_, ok := s.(*kv.Memory)
			So(ok, ShouldBeTrue)
		})

		Convey("When the badger backend is selected", func() {
			s, err := kv.Open(ctx, kv.Config{Backend: "Badger", BadgerDir: t.TempDir()}, logger.Get())
			So(err, ShouldBeNil)
			defer s.Close()
			_, ok := s.(*kv.Badger)
			So(ok, ShouldBeTrue)
		})

		Convey("When the redis backend is selected", func() {
			srv := miniredis.RunT(t)
			s, err := kv.Open(ctx, kv.Config{Backend: "redis", RedisAddr: srv.Addr()}, nil)
			So(err, ShouldBeNil)
			defer s.Close()
			_, ok := s.(*kv.Redis)
			So(ok, ShouldBeTrue)
		})

		Convey("When the backend is unknown", func() {
			_, err := kv.Open(ctx, kv.Config{Backend: "etcd"}, nil)
			So(errors.Is(err, kv.ErrUnknownBackend), ShouldBeTrue)
		})
	})
}
