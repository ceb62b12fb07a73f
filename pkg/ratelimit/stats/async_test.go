package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// blockingRecorder holds every Record call until release is closed.
type blockingRecorder struct {
	release  chan struct{}
	started  chan struct{}
	recorded atomic.Int64
	closed   atomic.Bool
}

func newBlockingRecorder() *blockingRecorder {
	return &blockingRecorder{
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
}

func (b *blockingRecorder) Record(ctx context.Context, _ Event) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.recorded.Add(1)
	return nil
}

func (b *blockingRecorder) Close() error {
	b.closed.Store(true)
	return nil
}

func TestAsyncRecorder_DoesNotWaitForSink(t *testing.T) {
	sink := newBlockingRecorder()
	r := NewAsyncRecorder(sink, WithBuffer(16), WithWriteTimeout(time.Minute))

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := r.Record(context.Background(), Event{Allowed: true}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Record blocked on the sink for %v", elapsed)
	}

	close(sink.release)
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := sink.recorded.Load(); got != 10 {
		t.Errorf("Expected 10 forwarded events after Close, got %d", got)
	}
	if !sink.closed.Load() {
		t.Error("Expected Close to close the sink")
	}
}

func TestAsyncRecorder_DropsWhenFull(t *testing.T) {
	sink := newBlockingRecorder()
	var hooked atomic.Int64
	r := NewAsyncRecorder(sink,
		WithBuffer(2),
		WithWriteTimeout(time.Minute),
		WithDropHook(func() { hooked.Add(1) }),
	)

	// The worker holds the first event inside the sink.
	_ = r.Record(context.Background(), Event{})
	select {
	case <-sink.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the sink")
	}

	// Two fit in the buffer, the rest are dropped.
	for i := 0; i < 5; i++ {
		_ = r.Record(context.Background(), Event{})
	}

	if got := r.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
	if got := hooked.Load(); got != 3 {
		t.Errorf("drop hook called %d times, want 3", got)
	}
	if got := r.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}

	close(sink.release)
	_ = r.Close()
	if got := sink.recorded.Load(); got != 3 {
		t.Errorf("Expected 3 forwarded events, got %d", got)
	}
}

func TestAsyncRecorder_AfterClose(t *testing.T) {
	r := NewAsyncRecorder(NewMemoryRecorder())
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	if err := r.Record(context.Background(), Event{Allowed: true}); err != nil {
		t.Errorf("Record after Close returned %v", err)
	}
	if got := r.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}

type erroringRecorder struct{ calls atomic.Int64 }

func (e *erroringRecorder) Record(context.Context, Event) error {
	e.calls.Add(1)
	return errors.New("connection refused")
}

func TestAsyncRecorder_SinkErrorsAreAbsorbed(t *testing.T) {
	sink := &erroringRecorder{}
	r := NewAsyncRecorder(sink)

	for i := 0; i < 3; i++ {
		if err := r.Record(context.Background(), Event{}); err != nil {
			t.Fatalf("Record returned %v", err)
		}
	}
	_ = r.Close()

	if got := sink.calls.Load(); got != 3 {
		t.Errorf("Expected 3 forwarded calls, got %d", got)
	}
}

func TestAsyncRecorder_TotalDelegates(t *testing.T) {
	mem := NewMemoryRecorder()
	r := NewAsyncRecorder(mem)

	_ = r.Record(context.Background(), Event{Allowed: true})
	_ = r.Record(context.Background(), Event{Allowed: false})
	_ = r.Close()

	total, err := r.Total(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != (Counters{Allowed: 1, Rejected: 1}) {
		t.Errorf("Total() = %+v", total)
	}
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v for a sink without Ping", err)
	}
}
