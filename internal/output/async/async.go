package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

const (
	defaultBufferSize   = 16
	defaultDrainTimeout = 30 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets how many results may wait for the inner output. Default: 16.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithDrainTimeout bounds how long Close waits for queued results. Default: 30s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// WithLogger sets the logger used for drops and drain timeouts.
func WithLogger(l *slog.Logger) Option {
	return func(a *Async) { a.logger = l }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately, dropping the result, when
// the buffer is full instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

type job struct {
	ctx    context.Context
	result model.ExperimentResult
}

// Async hands results to a background goroutine that writes them to the
// wrapped output, so a slow destination such as a webhook does not hold up
// the next experiment. Inner write errors go to errFunc, not to the caller.
type Async struct {
	inner        output.Output
	ch           chan job
	done         chan struct{}
	logger       *slog.Logger
	errFunc      func(error)
	bufSize      int
	drainTimeout time.Duration
	dropOnFull   bool
	closeOnce    sync.Once
}

// New wraps inner and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.logger.Warn("async output write error", "error", err) }
	}
	a.ch = make(chan job, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues result. The inner write runs detached from ctx's
// cancellation so a finished run still delivers its result.
func (a *Async) Write(ctx context.Context, result model.ExperimentResult) error {
	j := job{ctx: context.WithoutCancel(ctx), result: result}
	if a.dropOnFull {
		select {
		case a.ch <- j:
		default:
			a.logger.Warn("async output buffer full, dropping result",
				"run_id", result.RunID, "embedding", result.Embedding, "labels", result.Labels)
		}
		return nil
	}
	a.ch <- j
	return nil
}

// Close stops accepting results, waits up to the drain timeout for queued
// ones, then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(a.drainTimeout):
			a.logger.Warn("async output drain timed out", "pending", len(a.ch))
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for j := range a.ch {
		if err := a.inner.Write(j.ctx, j.result); err != nil {
			a.errFunc(err)
		}
	}
}
