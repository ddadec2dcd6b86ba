package service

import (
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

// Default session configuration constants.
const (
	DefaultZoom      = 13
	defaultQueueSize = 256
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithZoom sets the zoom used for the initial view and when panning.
func WithZoom(zoom int) Option {
	return func(s *Service) {
		if zoom > 0 {
			s.zoom = zoom
		}
	}
}

// WithQueueSize sets how many commands may wait for the session worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRecordOptions passes options to record construction, such as the
// validation policy, clock or id generator.
func WithRecordOptions(opts ...workout.Option) Option {
	return func(s *Service) {
		s.recordOpts = append(s.recordOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
