package history

import (
	"context"
	"time"
)

// EventType defines the kind of run event.
type EventType string

const (
	EventStart  EventType = "start"
	EventFinish EventType = "finish"
)

// Record carries the run identity and terminal outcome persisted for one
// batch invocation.
type Record struct {
	Project  string `json:"project"`
	Command  string `json:"command"`
	PID      int    `json:"pid"`
	Outcome  string `json:"outcome"`
	ExitCode int    `json:"exit_code"`
}

// Event is one run event exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for run history (office-wide run statistics).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Querier is implemented by sinks that can read stored events back, for
// operator listings. limit <= 0 means no limit; results are newest first.
type Querier interface {
	Query(ctx context.Context, project string, limit int) ([]Event, error)
}
