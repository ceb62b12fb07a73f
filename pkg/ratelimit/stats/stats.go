// Package stats records admission decisions for reporting.
//
// Recording is best effort: the admission gate logs and ignores recorder
// errors, so a slow or unavailable sink never changes a decision. Sinks that
// do network I/O are wrapped in an AsyncRecorder so the gate never waits on
// them.
package stats

import (
	"context"
	"time"
)

// OtherRoute labels events whose request matched no registered route, and
// absorbs new labels once a recorder reaches its cardinality limit.
const OtherRoute = "other"

// Event is a single admission decision.
type Event struct {
	Key     string
	Allowed bool

	// Route is the matched route pattern, e.g. "GET /api/history/{username}",
	// or OtherRoute. It never carries the raw request path.
	Route string

	At time.Time
}

// Counters holds allowed and rejected totals.
type Counters struct {
	Allowed  int64 `json:"allowed"`
	Rejected int64 `json:"rejected"`
}

// Recorder persists admission events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Reader exposes aggregated totals of recorded events.
type Reader interface {
	Total(ctx context.Context) (Counters, error)
}

// Nop discards every event.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) error { return nil }

// Total implements Reader.
func (Nop) Total(context.Context) (Counters, error) { return Counters{}, nil }
