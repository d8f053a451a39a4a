package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithLogger sets the logger for drop and drain warnings. Default: no-op.
func WithLogger(l *zap.Logger) Option {
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

// Async decouples result production from delivery via a buffered channel.
// A background goroutine drains it to the wrapped output. Errors from the
// inner output go to errFunc rather than to the caller.
type Async struct {
	inner      output.Output
	ch         chan output.Result
	done       chan struct{}
	logger     *zap.Logger
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps an output.Output in an async channel-based writer.
// The drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.logger.Warn("async output write error", zap.Error(err)) }
	}
	a.ch = make(chan output.Result, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues the result. It blocks while the buffer is full unless
// WithDropOnFull is set, in which case the result is lost.
func (a *Async) Write(ctx context.Context, result output.Result) error {
	if a.dropOnFull {
		select {
		case a.ch <- result:
		default:
			a.logger.Warn("async output buffer full, dropping result",
				zap.String("action", result.Action),
				zap.String("type", result.Type))
		}
		return nil
	}
	select {
	case a.ch <- result:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting results, waits for the drain goroutine (bounded by
// a timeout) and closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			a.logger.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for result := range a.ch {
		if err := a.inner.Write(context.Background(), result); err != nil {
			a.errFunc(err)
		}
	}
}
