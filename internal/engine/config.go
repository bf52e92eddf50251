package engine

import (
	"errors"
	"fmt"
	"time"
)

// Product bounds on discovery parameters. Depth and breadth multiply
// into total request volume, so both are capped low.
const (
	MinDepth = 1
	MaxDepth = 3

	MinTopN = 1
	MaxTopN = 5

	MinPhrasesPerCall = 1
	MaxPhrasesPerCall = 2000

	MinWorkers = 1
	MaxWorkers = 10
)

// Defaults applied when a Config field is zero.
const (
	// DefaultMaxAttempts is the per-task fetch attempt budget.
	DefaultMaxAttempts = 3

	// DefaultAcquireTimeout bounds how long a worker waits for a
	// rate-limiter slot before giving up on the task.
	DefaultAcquireTimeout = 15 * time.Second

	// DefaultProgressInterval is how often progress events are emitted.
	DefaultProgressInterval = time.Second

	// maxBackoff caps the exponential retry delay.
	maxBackoff = 60 * time.Second
)

// Construction-time validation errors.
var (
	ErrInvalidDepth       = errors.New("invalid max depth: must be between 1 and 3")
	ErrInvalidTopN        = errors.New("invalid top-n: must be between 1 and 5")
	ErrInvalidPhraseLimit = errors.New("invalid phrases per call: must be between 1 and 2000")
	ErrInvalidWorkers     = errors.New("invalid worker count: must be between 1 and 10")
)

// Config holds the discovery parameters validated once at construction.
type Config struct {
	// MaxDepth is the deepest level tasks may be enqueued at.
	// Seeds are depth 1.
	MaxDepth int

	// TopN is how many highest-volume children of a completed fetch
	// are enqueued at the next depth.
	TopN int

	// PhrasesPerCall is the result limit requested from the API.
	PhrasesPerCall int

	// Workers is the fetch concurrency limit.
	Workers int

	// Device filters results by device class (empty or "all" for no
	// filter; "desktop", "mobile", "tablet", "phone" otherwise).
	Device string

	// Regions restricts results to the given region identifiers.
	Regions []int64

	// ExpandFiltered controls whether phrases rejected by the keyword
	// filter still seed deeper recursion. Enabled by default: generic
	// hub phrases are often worth expanding even when not worth
	// keeping.
	ExpandFiltered bool

	// MaxAttempts is the fetch attempt budget per task, retrying
	// transient failures with exponential backoff. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int

	// AcquireTimeout bounds the wait for a rate-limiter slot.
	// Zero means DefaultAcquireTimeout.
	AcquireTimeout time.Duration

	// ProgressInterval is how often progress events are emitted while
	// running. Zero means DefaultProgressInterval.
	ProgressInterval time.Duration

	// AutosaveInterval is how often checkpoint events are emitted.
	// Zero disables autosave events.
	AutosaveInterval time.Duration
}

// DefaultConfig returns a conservative configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       2,
		TopN:           3,
		PhrasesPerCall: 300,
		Workers:        3,
		ExpandFiltered: true,
	}
}

// Validate checks the product bounds.
func (c Config) Validate() error {
	if c.MaxDepth < MinDepth || c.MaxDepth > MaxDepth {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, c.MaxDepth)
	}
	if c.TopN < MinTopN || c.TopN > MaxTopN {
		return fmt.Errorf("%w: got %d", ErrInvalidTopN, c.TopN)
	}
	if c.PhrasesPerCall < MinPhrasesPerCall || c.PhrasesPerCall > MaxPhrasesPerCall {
		return fmt.Errorf("%w: got %d", ErrInvalidPhraseLimit, c.PhrasesPerCall)
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	return c
}
