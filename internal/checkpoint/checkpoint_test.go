package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wordharvest/wordharvest/internal/model"
	"github.com/wordharvest/wordharvest/internal/ratelimit"
)

func testCheckpoint() *Checkpoint {
	return &Checkpoint{
		SessionStart: time.Now().Add(-10 * time.Minute),
		PendingTasks: []model.Task{
			{Phrase: "кроссовки мужские", Depth: 2, Seed: "кроссовки", Source: "кроссовки"},
			{Phrase: "купить кроссовки", Depth: 2, Seed: "кроссовки", Source: "кроссовки"},
		},
		QueriedKeys: []string{"кроссовки|1"},
		FailedTasks: map[string]string{
			"кеды|1": "wordstat api error (server, status 502): bad gateway",
		},
		Keywords: map[string]*model.KeywordRecord{
			"кроссовки мужские": {
				Phrase: "кроссовки мужские",
				Count:  3100,
				Seed:   "кроссовки",
				Depth:  1,
				Origin: model.OriginAPI,
			},
		},
		CompletedRequests: 1,
		CacheHits:         0,
		Quota: ratelimit.Snapshot{
			HourCount: 12,
			HourStart: time.Now().Add(-10 * time.Minute),
			DayCount:  340,
			DayStart:  time.Now().Add(-3 * time.Hour),
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.checkpoint.json")
	want := testCheckpoint()

	if err := Save(path, want); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}

	if got.Version != Version {
		t.Errorf("expected version %d, got %d", Version, got.Version)
	}
	if len(got.PendingTasks) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(got.PendingTasks))
	}
	if got.PendingTasks[0] != want.PendingTasks[0] {
		t.Errorf("pending task order not preserved: %+v", got.PendingTasks[0])
	}
	if len(got.QueriedKeys) != 1 || got.QueriedKeys[0] != "кроссовки|1" {
		t.Errorf("unexpected queried keys: %v", got.QueriedKeys)
	}
	if got.FailedTasks["кеды|1"] == "" {
		t.Error("expected failed task error to survive the round trip")
	}

	kw, ok := got.Keywords["кроссовки мужские"]
	if !ok {
		t.Fatal("expected keyword to survive the round trip")
	}
	if kw.Count != 3100 || kw.Origin != model.OriginAPI {
		t.Errorf("unexpected keyword record: %+v", kw)
	}

	if got.CompletedRequests != 1 {
		t.Errorf("expected 1 completed request, got %d", got.CompletedRequests)
	}
	if got.Quota.DayCount != 340 {
		t.Errorf("expected day count 340, got %d", got.Quota.DayCount)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "no-such.checkpoint.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "old.checkpoint.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "keywords": {}}`), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.checkpoint.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for corrupt checkpoint")
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.checkpoint.json")

	first := testCheckpoint()
	if err := Save(path, first); err != nil {
		t.Fatalf("failed to save first checkpoint: %v", err)
	}

	second := testCheckpoint()
	second.CompletedRequests = 50
	if err := Save(path, second); err != nil {
		t.Fatalf("failed to save second checkpoint: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}
	if got.CompletedRequests != 50 {
		t.Errorf("expected replacement to win, got %d completed requests", got.CompletedRequests)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the checkpoint file, found %d entries", len(entries))
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "session.checkpoint.json")
	if err := Save(path, testCheckpoint()); err != nil {
		t.Fatalf("failed to save into nested directory: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("failed to load from nested directory: %v", err)
	}
}
