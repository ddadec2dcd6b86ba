// Package geo supplies the user's current position to the session.
package geo

import (
	"context"
	"sync"

	"github.com/okian/mapty/internal/domain/workout"
)

// Position is a one-shot future for a geolocation request. It completes
// exactly once, either with coordinates or with an error; later completions
// are ignored.
type Position struct {
	once   sync.Once
	done   chan struct{}
	coords workout.Coords
	err    error
}

// NewPosition returns an unresolved position.
func NewPosition() *Position {
	return &Position{done: make(chan struct{})}
}

// Resolve completes p with coordinates. Reports whether this call completed it.
func (p *Position) Resolve(c workout.Coords) bool {
	return p.complete(c, nil)
}

// Fail completes p with err, or ErrUnavailable if err is nil.
func (p *Position) Fail(err error) bool {
	if err == nil {
		err = ErrUnavailable
	}
	return p.complete(workout.Coords{}, err)
}

func (p *Position) complete(c workout.Coords, err error) bool {
	won := false
	p.once.Do(func() {
		p.coords, p.err = c, err
		won = true
		close(p.done)
	})
	return won
}

// Done is closed once p is complete.
func (p *Position) Done() <-chan struct{} { return p.done }

// Wait blocks until p completes or ctx ends.
func (p *Position) Wait(ctx context.Context) (workout.Coords, error) {
	select {
	case <-p.done:
		return p.coords, p.err
	case <-ctx.Done():
		return workout.Coords{}, ctx.Err()
	}
}
