package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestConfigValidate tests quota configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "valid defaults", cfg: DefaultConfig()},
		{name: "rps below one", cfg: Config{MaxRPS: 0, MaxPerHour: 10, MaxPerDay: 10}, wantErr: ErrInvalidRPS},
		{name: "hour below one", cfg: Config{MaxRPS: 1, MaxPerHour: 0, MaxPerDay: 10}, wantErr: ErrInvalidHourLimit},
		{name: "day below one", cfg: Config{MaxRPS: 1, MaxPerHour: 1, MaxPerDay: 0}, wantErr: ErrInvalidDayLimit},
		{name: "day below hour", cfg: Config{MaxRPS: 1, MaxPerHour: 100, MaxPerDay: 50}, wantErr: ErrDayBelowHour},
		{name: "day equals hour", cfg: Config{MaxRPS: 1, MaxPerHour: 100, MaxPerDay: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("New(%+v) unexpected error: %v", tt.cfg, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%+v) error = %v, want %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

// TestAcquireSecondWindow verifies that N+1 acquires within one second grant
// at most N and reject the rest with a second-window reason.
func TestAcquireSecondWindow(t *testing.T) {
	t.Parallel()

	const maxRPS = 3

	l, err := New(Config{MaxRPS: maxRPS, MaxPerHour: 1000, MaxPerDay: 1000})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	granted := 0
	for range maxRPS {
		ok, reason := l.Acquire(ctx, 1, 50*time.Millisecond)
		if !ok {
			t.Fatalf("acquire within rps budget rejected: %s", reason)
		}
		granted++
	}

	// The window is now full; a short timeout cannot outlive the one-second
	// window, so the next acquire must time out.
	ok, reason := l.Acquire(ctx, 1, 30*time.Millisecond)
	if ok {
		t.Fatalf("acquire %d granted, want rejection", granted+1)
	}
	if !strings.Contains(reason, "timeout") {
		t.Errorf("reason = %q, want timeout reason", reason)
	}
}

// TestAcquireSecondWindowRecovers verifies a slot frees once the sliding
// window moves past old admissions.
func TestAcquireSecondWindowRecovers(t *testing.T) {
	t.Parallel()

	l, err := New(Config{MaxRPS: 1, MaxPerHour: 1000, MaxPerDay: 1000})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	if ok, reason := l.Acquire(ctx, 1, 50*time.Millisecond); !ok {
		t.Fatalf("first acquire rejected: %s", reason)
	}

	// With a timeout comfortably past the window length, the retry loop
	// must eventually succeed.
	if ok, reason := l.Acquire(ctx, 1, 3*time.Second); !ok {
		t.Fatalf("acquire after window should succeed: %s", reason)
	}
}

// TestAcquireDayQuota tests strict day-quota boundaries: exactly at the
// limit is granted, one past it is rejected with a day reason.
func TestAcquireDayQuota(t *testing.T) {
	t.Parallel()

	const daily = 3

	l, err := New(Config{MaxRPS: 100, MaxPerHour: daily, MaxPerDay: daily})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	for i := range daily {
		ok, reason := l.Acquire(ctx, 1, 100*time.Millisecond)
		if !ok {
			t.Fatalf("acquire %d within daily budget rejected: %s", i+1, reason)
		}
	}

	// Day is checked before hour, so with both exhausted the reason names
	// the day quota.
	ok, reason := l.Acquire(ctx, 1, 100*time.Millisecond)
	if ok {
		t.Fatal("acquire past daily limit granted")
	}
	if !strings.Contains(reason, "day quota") {
		t.Errorf("reason = %q, want day quota reason", reason)
	}
}

// TestAcquireHourQuota tests that hour exhaustion reports an hour reason
// while the day budget still has room.
func TestAcquireHourQuota(t *testing.T) {
	t.Parallel()

	l, err := New(Config{MaxRPS: 100, MaxPerHour: 2, MaxPerDay: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	for range 2 {
		if ok, reason := l.Acquire(ctx, 1, 100*time.Millisecond); !ok {
			t.Fatalf("acquire within hourly budget rejected: %s", reason)
		}
	}

	ok, reason := l.Acquire(ctx, 1, 100*time.Millisecond)
	if ok {
		t.Fatal("acquire past hourly limit granted")
	}
	if !strings.Contains(reason, "hour quota") {
		t.Errorf("reason = %q, want hour quota reason", reason)
	}
}

// TestAcquireInvalidArguments tests argument validation.
func TestAcquireInvalidArguments(t *testing.T) {
	t.Parallel()

	l, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, 0, time.Second); ok {
		t.Error("acquire with zero cost granted")
	}
	if ok, _ := l.Acquire(ctx, 1, 0); ok {
		t.Error("acquire with zero timeout granted")
	}
}

// TestAcquireContextCancel tests that a cancelled context stops the retry loop.
func TestAcquireContextCancel(t *testing.T) {
	t.Parallel()

	l, err := New(Config{MaxRPS: 1, MaxPerHour: 100, MaxPerDay: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if ok, _ := l.Acquire(ctx, 1, time.Second); !ok {
		t.Fatal("first acquire rejected")
	}

	cancel()
	ok, reason := l.Acquire(ctx, 1, 10*time.Second)
	if ok {
		t.Fatal("acquire granted after context cancellation")
	}
	if !strings.Contains(reason, "cancelled") {
		t.Errorf("reason = %q, want cancellation reason", reason)
	}
}

// TestStats tests the window statistics snapshot.
func TestStats(t *testing.T) {
	t.Parallel()

	l, err := New(Config{MaxRPS: 10, MaxPerHour: 100, MaxPerDay: 200})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for range 4 {
		if ok, _ := l.Acquire(ctx, 1, time.Second); !ok {
			t.Fatal("acquire rejected")
		}
	}

	stats := l.Stats()
	if stats.HourCount != 4 || stats.DayCount != 4 {
		t.Errorf("counts = hour %d day %d, want 4/4", stats.HourCount, stats.DayCount)
	}
	if stats.HourRemaining != 96 {
		t.Errorf("HourRemaining = %d, want 96", stats.HourRemaining)
	}
	if stats.DayRemaining != 196 {
		t.Errorf("DayRemaining = %d, want 196", stats.DayRemaining)
	}
}

// TestSnapshotRestore tests quota persistence across limiter instances.
func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	cfg := Config{MaxRPS: 100, MaxPerHour: 10, MaxPerDay: 10}

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for range 9 {
		if ok, _ := first.Acquire(ctx, 1, time.Second); !ok {
			t.Fatal("acquire rejected")
		}
	}

	snap := first.Snapshot()

	second, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second.Restore(snap)

	// One slot remains; after it the day quota must block.
	if ok, reason := second.Acquire(ctx, 1, time.Second); !ok {
		t.Fatalf("final budgeted acquire rejected: %s", reason)
	}
	ok, reason := second.Acquire(ctx, 1, time.Second)
	if ok {
		t.Fatal("restored limiter overspent the daily budget")
	}
	if !strings.Contains(reason, "day quota") {
		t.Errorf("reason = %q, want day quota reason", reason)
	}
}
