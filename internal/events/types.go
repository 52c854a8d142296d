package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in a forge run's lifecycle.
type Event struct {
	// ID is a monotonic ULID assigned by the Bus on Emit, so the TUI
	// and the history store can order events that share a timestamp.
	ID string `json:"id,omitempty"`

	// Time is when the event occurred (set by the bus on emit).
	Time time.Time `json:"time"`

	// Type identifies what happened.
	Type EventType `json:"type"`

	// Plan is the plan name this event relates to (empty for pool-wide events).
	Plan string `json:"plan,omitempty"`

	// Node is the node ID this event relates to (empty if not node-related).
	Node string `json:"node,omitempty"`

	// Worker is the reporting worker's lease ID (empty if not worker-related).
	Worker string `json:"worker,omitempty"`

	// Payload contains event-specific data (type varies by event).
	Payload any `json:"payload,omitempty"`

	// Error contains the error message if this is a failure event.
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category.
type EventType string

// Pool lifecycle events.
const (
	PoolStarted  EventType = "pool.started"
	PoolStopped  EventType = "pool.stopped"
	PoolLiveness EventType = "pool.liveness_failed"
)

// Plan (work-source) lifecycle events.
const (
	PlanSubmitted EventType = "plan.submitted"
	PlanCompleted EventType = "plan.completed"
	PlanFailed    EventType = "plan.failed"
	PlanCancelled EventType = "plan.cancelled"
	PlanAborted   EventType = "plan.aborted"
)

// Node lifecycle events.
const (
	NodeSelected EventType = "node.selected"
	NodeStarted  EventType = "node.started"
	NodeFinished EventType = "node.finished"
	NodeFailed   EventType = "node.failed"
	NodeSkipped  EventType = "node.skipped"
)

// Worker lifecycle events.
const (
	WorkerSpawned EventType = "worker.spawned"
	WorkerIdle    EventType = "worker.idle"
	WorkerStopped EventType = "worker.stopped"
)

// NewEvent creates an event with the given type and plan name.
func NewEvent(eventType EventType, plan string) Event {
	return Event{
		Type: eventType,
		Plan: plan,
	}
}

// WithNode returns a copy of the event with the node ID set.
func (e Event) WithNode(node string) Event {
	e.Node = node
	return e
}

// WithWorker returns a copy of the event with the worker lease ID set.
func (e Event) WithWorker(worker string) Event {
	e.Worker = worker
	return e
}

// WithPayload returns a copy of the event with the payload set.
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set.
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type.
func (e Event) IsFailure() bool {
	return e.Type == PoolLiveness ||
		strings.HasSuffix(string(e.Type), ".failed") ||
		strings.HasSuffix(string(e.Type), ".aborted")
}

// String returns a human-readable representation of the event.
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Plan != "" {
		parts = append(parts, e.Plan)
	}
	if e.Node != "" {
		parts = append(parts, fmt.Sprintf("node=%s", e.Node))
	}
	if e.Worker != "" {
		parts = append(parts, fmt.Sprintf("worker=%s", e.Worker))
	}

	return strings.Join(parts, " ")
}
