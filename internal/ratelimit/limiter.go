package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Default quota values. The per-second default matches the suggestion
// API's documented request rate; hour and day defaults are generous
// enough that the daily quota is the practical ceiling.
const (
	DefaultMaxRPS     = 10
	DefaultMaxPerHour = 10000
	DefaultMaxPerDay  = 100000

	// retryInterval is how long Acquire sleeps between attempts while the
	// second window is saturated.
	retryInterval = 10 * time.Millisecond
)

// Configuration validation errors.
var (
	// ErrInvalidRPS is returned when the per-second limit is below 1.
	ErrInvalidRPS = errors.New("invalid rate limit: max requests per second must be >= 1")

	// ErrInvalidHourLimit is returned when the hourly limit is below 1.
	ErrInvalidHourLimit = errors.New("invalid rate limit: max requests per hour must be >= 1")

	// ErrInvalidDayLimit is returned when the daily limit is below 1.
	ErrInvalidDayLimit = errors.New("invalid rate limit: max requests per day must be >= 1")

	// ErrDayBelowHour is returned when the daily limit is smaller than the
	// hourly limit, which could never be satisfied.
	ErrDayBelowHour = errors.New("invalid rate limit: daily limit must not be below hourly limit")
)

// Config holds the three quota limits.
type Config struct {
	// MaxRPS is the sliding one-second window limit.
	MaxRPS int

	// MaxPerHour is the fixed-origin hourly counter limit.
	MaxPerHour int

	// MaxPerDay is the fixed-origin daily counter limit.
	MaxPerDay int
}

// DefaultConfig returns the default quota configuration.
func DefaultConfig() Config {
	return Config{
		MaxRPS:     DefaultMaxRPS,
		MaxPerHour: DefaultMaxPerHour,
		MaxPerDay:  DefaultMaxPerDay,
	}
}

// Validate checks the quota configuration.
func (c Config) Validate() error {
	if c.MaxRPS < 1 {
		return ErrInvalidRPS
	}
	if c.MaxPerHour < 1 {
		return ErrInvalidHourLimit
	}
	if c.MaxPerDay < 1 {
		return ErrInvalidDayLimit
	}
	if c.MaxPerDay < c.MaxPerHour {
		return ErrDayBelowHour
	}
	return nil
}

// Limiter is the admission-control gate. All three windows are evaluated
// atomically under one lock on each attempt; an admission is recorded into
// all of them or none.
//
// Design decision: Quotas are checked day first, then hour, then second.
// Daily exhaustion is the most expensive mistake to keep retrying against,
// so it must short-circuit before the cheaper windows.
type Limiter struct {
	cfg Config

	mu sync.Mutex

	// second holds admission timestamps within the sliding one-second window.
	second []time.Time

	// hourStart/dayStart are the fixed window origins; zero until the first
	// acquire initializes them.
	hourStart time.Time
	dayStart  time.Time

	hourCount int
	dayCount  int

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a Limiter, validating the configuration.
func New(cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		cfg: cfg,
		now: time.Now,
	}, nil
}

// Acquire blocks until the request is admitted, the timeout elapses, or the
// context is cancelled. It returns whether the request was granted and, on
// rejection, a human-readable reason.
//
// Second-window saturation is retried on a short sleep loop until timeout.
// Hour and day exhaustion return immediately with a quota reason: waiting
// out those windows inside Acquire would stall a worker for up to a day, so
// the decision to retry or abort belongs to the caller.
func (l *Limiter) Acquire(ctx context.Context, cost int, timeout time.Duration) (bool, string) {
	if cost < 1 {
		return false, "cost must be >= 1"
	}
	if timeout <= 0 {
		return false, "timeout must be positive"
	}

	deadline := l.now().Add(timeout)

	for {
		granted, reason, retryable := l.tryAcquire(cost)
		if granted {
			return true, reason
		}
		if !retryable {
			return false, reason
		}

		if !l.now().Before(deadline) {
			return false, fmt.Sprintf("timeout waiting for request slot (%s)", timeout)
		}

		select {
		case <-ctx.Done():
			return false, "cancelled: " + ctx.Err().Error()
		case <-time.After(retryInterval):
		}
	}
}

// tryAcquire performs one atomic admission attempt.
// retryable is true only for second-window saturation.
func (l *Limiter) tryAcquire(cost int) (granted bool, reason string, retryable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.rollWindows(now)

	if l.hourStart.IsZero() {
		l.hourStart = now
	}
	if l.dayStart.IsZero() {
		l.dayStart = now
	}

	// Strict rejection: a request exactly at the limit is granted,
	// one past it is not. No partial admission.
	if l.dayCount+cost > l.cfg.MaxPerDay {
		return false, fmt.Sprintf("day quota exhausted (%d/%d)", l.dayCount, l.cfg.MaxPerDay), false
	}
	if l.hourCount+cost > l.cfg.MaxPerHour {
		return false, fmt.Sprintf("hour quota exhausted (%d/%d)", l.hourCount, l.cfg.MaxPerHour), false
	}
	if len(l.second)+cost > l.cfg.MaxRPS {
		return false, fmt.Sprintf("second window full (%d/%d)", len(l.second), l.cfg.MaxRPS), true
	}

	for range cost {
		l.second = append(l.second, now)
	}
	l.hourCount += cost
	l.dayCount += cost

	return true, "OK", false
}

// rollWindows lazily advances the three windows to now: stale second-window
// entries are evicted, and the hour/day counters reset once their window
// has fully elapsed.
func (l *Limiter) rollWindows(now time.Time) {
	cutoff := now.Add(-time.Second)
	idx := 0
	for idx < len(l.second) && l.second[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		l.second = append(l.second[:0], l.second[idx:]...)
	}

	if !l.hourStart.IsZero() && now.Sub(l.hourStart) > time.Hour {
		l.hourStart = now
		l.hourCount = 0
	}
	if !l.dayStart.IsZero() && now.Sub(l.dayStart) > 24*time.Hour {
		l.dayStart = now
		l.dayCount = 0
	}
}

// Stats is a point-in-time view of the limiter's windows.
type Stats struct {
	// SecondCurrent is the number of admissions within the last second.
	SecondCurrent int `json:"second_current"`

	// MaxRPS is the configured per-second limit.
	MaxRPS int `json:"max_rps"`

	// HourCount and DayCount are the consumed portions of the fixed windows.
	HourCount int `json:"hour_count"`
	DayCount  int `json:"day_count"`

	// HourRemaining and DayRemaining are the unconsumed portions.
	HourRemaining int `json:"hour_remaining"`
	DayRemaining  int `json:"day_remaining"`

	MaxPerHour int `json:"max_per_hour"`
	MaxPerDay  int `json:"max_per_day"`
}

// Stats returns the current window state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindows(l.now())

	return Stats{
		SecondCurrent: len(l.second),
		MaxRPS:        l.cfg.MaxRPS,
		HourCount:     l.hourCount,
		DayCount:      l.dayCount,
		HourRemaining: max(0, l.cfg.MaxPerHour-l.hourCount),
		DayRemaining:  max(0, l.cfg.MaxPerDay-l.dayCount),
		MaxPerHour:    l.cfg.MaxPerHour,
		MaxPerDay:     l.cfg.MaxPerDay,
	}
}

// Snapshot captures the hour/day counters for checkpointing. The sliding
// second window is deliberately excluded: it is meaningless across a
// process restart.
type Snapshot struct {
	HourCount int       `json:"hour_count"`
	HourStart time.Time `json:"hour_start"`
	DayCount  int       `json:"day_count"`
	DayStart  time.Time `json:"day_start"`
}

// Snapshot returns the persistable window state.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindows(l.now())

	return Snapshot{
		HourCount: l.hourCount,
		HourStart: l.hourStart,
		DayCount:  l.dayCount,
		DayStart:  l.dayStart,
	}
}

// Restore reinstates hour/day counters from a checkpoint so that a resumed
// session cannot overspend quotas consumed before the restart. Windows that
// have elapsed since the snapshot are rolled forward on the next acquire.
func (l *Limiter) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hourCount = s.HourCount
	l.hourStart = s.HourStart
	l.dayCount = s.DayCount
	l.dayStart = s.DayStart
}
