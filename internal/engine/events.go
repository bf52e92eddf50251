package engine

import (
	"time"

	"github.com/wordharvest/wordharvest/internal/checkpoint"
)

// EventKind discriminates scheduler events.
type EventKind string

const (
	// EventProgress carries a periodic stats snapshot.
	EventProgress EventKind = "progress"

	// EventAutosave carries a checkpoint ready for the consumer to
	// persist. The scheduler never writes files itself.
	EventAutosave EventKind = "autosave"

	// EventDone is the final event before the channel closes.
	EventDone EventKind = "done"
)

// Stats is a point-in-time snapshot of session progress, safe to read
// after the emitting lock has been released.
type Stats struct {
	// FoundCount is the number of distinct keywords retained so far.
	FoundCount int `json:"found_count"`

	// QueueDepth is the size of the pending frontier.
	QueueDepth int `json:"queue_depth"`

	// InFlight is the number of tasks currently being fetched.
	InFlight int `json:"in_flight"`

	// CompletedRequests counts successfully completed fetches.
	CompletedRequests int `json:"completed_requests"`

	// FailedTasks counts tasks that exhausted their attempt budget or
	// were skipped on a non-retryable error.
	FailedTasks int `json:"failed_tasks"`

	// CacheHits counts tasks answered from the response cache.
	CacheHits int `json:"cache_hits"`

	// Elapsed is the time since the session started.
	Elapsed time.Duration `json:"elapsed"`
}

// Event is one item on the scheduler's bounded event channel.
//
// Design decision: Progress and autosave are delivered over a channel
// rather than callbacks because:
//  1. The scheduler should not know whether a consumer exists.
//  2. A bounded channel with drop-on-full semantics means a slow
//     consumer can never stall the discovery loop.
//  3. Channel consumption composes naturally with select in the CLI.
type Event struct {
	// Kind says what the event carries.
	Kind EventKind

	// Stats is populated for every kind.
	Stats Stats

	// Checkpoint is populated for EventAutosave only.
	Checkpoint *checkpoint.Checkpoint
}
