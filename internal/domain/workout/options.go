package workout

import "time"

// Option applies a configuration option to record construction.
type Option func(*settings)

type settings struct {
	now    func() time.Time
	ids    IDGenerator
	policy Policy
}

func newSettings(opts []Option) settings {
	s := settings{
		now: time.Now,
		ids: UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithPolicy sets the validation policy.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}
