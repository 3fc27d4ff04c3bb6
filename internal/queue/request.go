package queue

import (
	"time"
)

// Priority orders requests in the waiting list.
// Lower values are served first.
type Priority int

const (
	// PriorityCritical jumps ahead of everything else (system recovery, user aborts).
	PriorityCritical Priority = iota

	// PriorityHigh is for direct user prompts.
	PriorityHigh

	// PriorityNormal is the default for ordinary work.
	PriorityNormal

	// PriorityLow is for background tasks that can wait indefinitely.
	PriorityLow
)

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// ParsePriority maps a name back to a Priority. Unknown names get fallback.
func ParsePriority(s string, fallback Priority) Priority {
	switch s {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "normal":
		return PriorityNormal
	case "low":
		return PriorityLow
	}
	return fallback
}

// Status is the lifecycle state of a request.
//
// Transitions: queued -> processing (Dequeue), queued -> cancelled (Cancel),
// processing -> completed (Complete), processing -> failed (Fail).
// The last three are terminal; a terminal request is never mutated again.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether s is one of the final states.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Request is one unit of agent work tracked by the scheduler.
//
// The scheduler is the sole mutator of request state; every public method
// returns value copies, so callers can hold on to a Request without racing
// with the scheduler. Result and Error are only set when Status is terminal
// (Result on completed, Error on failed).
type Request struct {
	// ID uniquely identifies the request for Cancel/Complete/Fail reporting.
	ID string

	// AgentID names the agent this request is for. Opaque to the scheduler;
	// the executor resolves it against its registry.
	AgentID string

	// Prompt is the work payload. Together with AgentID it forms the
	// deduplication key.
	Prompt string

	Priority Priority
	Status   Status

	EnqueuedAt  time.Time
	StartedAt   time.Time // zero until dequeued
	CompletedAt time.Time // zero until terminal

	Result string
	Error  string
}

// Option configures a request at enqueue time.
type Option func(*Request)

// WithPriority overrides the configured default priority.
func WithPriority(p Priority) Option {
	return func(r *Request) {
		r.Priority = p
	}
}
