package stats

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults of an AsyncRecorder.
const (
	DefaultAsyncBuffer  = 1024
	DefaultWriteTimeout = 2 * time.Second
)

// AsyncRecorder hands events to a background worker that forwards them to
// another Recorder. Record never blocks: when the buffer is full or the
// recorder is closed the event is dropped and counted.
type AsyncRecorder struct {
	next         Recorder
	events       chan Event
	writeTimeout time.Duration
	onDrop       func()
	logger       *slog.Logger

	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// AsyncOption configures an AsyncRecorder.
type AsyncOption func(*AsyncRecorder)

// WithBuffer sets the number of events that may wait for the worker.
func WithBuffer(n int) AsyncOption {
	return func(r *AsyncRecorder) {
		if n > 0 {
			r.events = make(chan Event, n)
		}
	}
}

// WithWriteTimeout bounds each forwarded Record call.
func WithWriteTimeout(d time.Duration) AsyncOption {
	return func(r *AsyncRecorder) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// WithDropHook registers fn to be called for every dropped event.
func WithDropHook(fn func()) AsyncOption {
	return func(r *AsyncRecorder) { r.onDrop = fn }
}

// WithAsyncLogger sets the logger for forwarding failures.
func WithAsyncLogger(logger *slog.Logger) AsyncOption {
	return func(r *AsyncRecorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewAsyncRecorder starts the worker forwarding to next. Close stops it.
func NewAsyncRecorder(next Recorder, opts ...AsyncOption) *AsyncRecorder {
	r := &AsyncRecorder{
		next:         next,
		events:       make(chan Event, DefaultAsyncBuffer),
		writeTimeout: DefaultWriteTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "ratelimit.stats")

	r.wg.Add(1)
	go r.worker()
	return r
}

// Record implements Recorder. It only enqueues ev; ctx is not passed on.
func (r *AsyncRecorder) Record(_ context.Context, ev Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.closed {
		select {
		case r.events <- ev:
			return nil
		default:
		}
	}

	r.dropped.Add(1)
	if r.onDrop != nil {
		r.onDrop()
	}
	return nil
}

// Dropped returns the number of events discarded so far.
func (r *AsyncRecorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Pending returns the number of events waiting for the worker.
func (r *AsyncRecorder) Pending() int {
	return len(r.events)
}

// Total implements Reader when the wrapped recorder does.
func (r *AsyncRecorder) Total(ctx context.Context) (Counters, error) {
	if reader, ok := r.next.(Reader); ok {
		return reader.Total(ctx)
	}
	return Counters{}, nil
}

// Ping checks the wrapped recorder when it supports it.
func (r *AsyncRecorder) Ping(ctx context.Context) error {
	if p, ok := r.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close stops accepting events, waits for the worker to forward the
// buffered ones and closes the wrapped recorder when it is closable.
// It is safe to call more than once.
func (r *AsyncRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	r.wg.Wait()

	if c, ok := r.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (r *AsyncRecorder) worker() {
	defer r.wg.Done()

	for ev := range r.events {
		r.forward(ev)
	}
}

func (r *AsyncRecorder) forward(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.next.Record(ctx, ev); err != nil {
		r.logger.Warn("failed to record admission decision", "error", err)
	}
}
