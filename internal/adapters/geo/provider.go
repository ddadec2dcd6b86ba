package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

// Provider answers a single current-position request by invoking exactly one
// of the callbacks, asynchronously.
type Provider interface {
	CurrentPosition(ctx context.Context, onSuccess func(workout.Coords), onFailure func(error))
}

// StaticProvider always answers with fixed coordinates, or with Err when set.
type StaticProvider struct {
	Coords workout.Coords
	Err    error
}

func (p StaticProvider) CurrentPosition(_ context.Context, onSuccess func(workout.Coords), onFailure func(error)) {
	go func() {
		if p.Err != nil {
			onFailure(p.Err)
			return
		}
		if !p.Coords.Valid() {
			onFailure(fmt.Errorf("%w: invalid coordinates", ErrUnavailable))
			return
		}
		onSuccess(p.Coords)
	}()
}

// DefaultReportMaxAge is how long a report that arrived with no request
// outstanding stays usable for the next request.
const DefaultReportMaxAge = time.Minute

// ClientProvider is answered by the page: the browser resolves its own
// position and reports it with Report or ReportError. A report that arrives
// before the request is kept and answers the next request, unless a newer
// report replaces it or it grows older than the max age.
type ClientProvider struct {
	mu      sync.Mutex
	pending *Position
	waiting bool
	keptAt  time.Time
	timeout time.Duration
	maxAge  time.Duration
	logger  logger.Logger
}

// ClientOption configures a ClientProvider.
type ClientOption func(*ClientProvider)

// WithTimeout fails a request that receives no report within d. Zero waits
// until the request context ends.
func WithTimeout(d time.Duration) ClientOption {
	return func(p *ClientProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithReportMaxAge sets how long an unrequested report is kept.
func WithReportMaxAge(d time.Duration) ClientOption {
	return func(p *ClientProvider) {
		if d > 0 {
			p.maxAge = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(p *ClientProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewClientProvider creates a provider waiting for browser reports.
func NewClientProvider(opts ...ClientOption) *ClientProvider {
	p := &ClientProvider{
		maxAge: DefaultReportMaxAge,
		logger: logger.Get().Named("geo"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// answer returns the position a report should complete. With no request
// outstanding, each report replaces whatever was kept before.
func (p *ClientProvider) answer() *Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.waiting {
		p.pending = NewPosition()
		p.keptAt = time.Now()
	}
	return p.pending
}

// request returns the position the next request waits on, reusing a kept
// report that is still fresh.
func (p *ClientProvider) request() *Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil && !p.waiting && time.Since(p.keptAt) > p.maxAge {
		p.pending = nil
	}
	if p.pending == nil {
		p.pending = NewPosition()
	}
	p.waiting = true
	return p.pending
}

func (p *ClientProvider) release(pos *Position) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == pos {
		p.pending = nil
		p.waiting = false
	}
}

// Report resolves the outstanding request with the browser's coordinates.
func (p *ClientProvider) Report(ctx context.Context, c workout.Coords) error {
	if !c.Valid() {
		return fmt.Errorf("%w: invalid coordinates", ErrUnavailable)
	}
	if !p.answer().Resolve(c) {
		p.logger.Debug(ctx, "ignoring late position report")
	}
	return nil
}

// ReportError fails the outstanding request.
func (p *ClientProvider) ReportError(ctx context.Context, reason string) {
	err := ErrUnavailable
	if reason != "" {
		err = fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}
	if !p.answer().Fail(err) {
		p.logger.Debug(ctx, "ignoring late position error", logger.String("reason", reason))
	}
}

func (p *ClientProvider) CurrentPosition(ctx context.Context, onSuccess func(workout.Coords), onFailure func(error)) {
	pos := p.request()

	go func() {
		var expire <-chan time.Time
		if p.timeout > 0 {
			t := time.NewTimer(p.timeout)
			defer t.Stop()
			expire = t.C
		}

		select {
		case <-pos.Done():
		case <-expire:
			pos.Fail(ErrTimeout)
		case <-ctx.Done():
			pos.Fail(fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err()))
		}

		p.release(pos)

		c, err := pos.Wait(context.Background())
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(c)
	}()
}
