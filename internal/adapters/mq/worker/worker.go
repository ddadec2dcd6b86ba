// Package worker runs queued session commands one at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

// ErrPanic wraps a recovered task panic.
var ErrPanic = errors.New("task panicked")

// Queue defines how the worker receives tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker consumes tasks until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the task in progress.
	Shutdown(ctx context.Context) error
}

// Sequential runs every task to completion before taking the next, so tasks
// never overlap.
type Sequential struct {
	queue Queue
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewSequential creates a worker with configuration options.
func NewSequential(q Queue, opts ...Option) *Sequential {
	w := &Sequential{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *Sequential) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			queue.Reply(t, w.execute(ctx, t))
		}
	}
}

// Done is closed when Run returns.
func (w *Sequential) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *Sequential) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Sequential) execute(ctx context.Context, t queue.Task) (err error) {
	start := time.Now()
	metrics.SetWorkerBusy(true)
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordCommandPanic()
			w.logger.Error(ctx, "task panicked",
				logger.String("task", t.Name),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %s: %v", ErrPanic, t.Name, r)
		}
		metrics.SetWorkerBusy(false)
		metrics.RecordCommandLatency(t.Name, float64(time.Since(start).Microseconds())/1000)
		if err != nil {
			metrics.RecordCommandError(t.Name)
		}
	}()

	if t.Run == nil {
		return nil
	}
	err = t.Run(ctx)
	if err != nil {
		w.logger.Debug(ctx, "task failed", logger.String("task", t.Name), logger.Error(err))
	}
	return err
}
