package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wordharvest/wordharvest/internal/model"
	"github.com/wordharvest/wordharvest/internal/ratelimit"
)

// Version is the checkpoint format version. Bumped on incompatible
// layout changes so a resume can reject files it cannot interpret.
const Version = 1

// ErrNotFound is returned when no checkpoint file exists at the path.
var ErrNotFound = errors.New("checkpoint file not found")

// ErrVersionMismatch is returned when a checkpoint was written by an
// incompatible format version.
var ErrVersionMismatch = errors.New("checkpoint format version mismatch")

// Checkpoint is the serialized form of a discovery session.
type Checkpoint struct {
	// Version is the format version this file was written with.
	Version int `json:"version"`

	// SavedAt is when the checkpoint was written.
	SavedAt time.Time `json:"saved_at"`

	// SessionStart is when the interrupted session began.
	SessionStart time.Time `json:"session_start"`

	// PendingTasks is the frontier at save time, in queue order.
	PendingTasks []model.Task `json:"pending_tasks"`

	// QueriedKeys is the set of completed task identity keys.
	QueriedKeys []string `json:"queried_keys"`

	// FailedTasks maps failed task identity keys to their last error.
	FailedTasks map[string]string `json:"failed_tasks,omitempty"`

	// Keywords is the accumulated keyword map.
	Keywords map[string]*model.KeywordRecord `json:"keywords"`

	// CompletedRequests is the completed fetch counter.
	CompletedRequests int `json:"completed_requests"`

	// CacheHits counts tasks answered from the response cache.
	CacheHits int `json:"cache_hits"`

	// Quota carries the rate limiter's hour/day counters so a resumed
	// session cannot overspend the quota the interrupted one consumed.
	Quota ratelimit.Snapshot `json:"quota"`
}

// Save writes the checkpoint atomically to path, creating parent
// directories as needed.
func Save(path string, cp *Checkpoint) error {
	cp.Version = Version
	cp.SavedAt = time.Now()

	raw, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	// Write-then-rename keeps the previous checkpoint readable if the
	// process dies mid-write.
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Load reads a checkpoint from path. A missing file yields ErrNotFound.
func Load(path string) (*Checkpoint, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	if cp.Version != Version {
		return nil, fmt.Errorf("%w: file has version %d, expected %d", ErrVersionMismatch, cp.Version, Version)
	}
	if cp.Keywords == nil {
		cp.Keywords = make(map[string]*model.KeywordRecord)
	}
	return &cp, nil
}
