package dedupe

// Option applies a configuration option to the in-memory registry.
type Option func(*settings)

type settings struct {
	capacity int
}

// WithInitialCapacity pre-sizes the id map. Values <= 0 are ignored.
func WithInitialCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}
