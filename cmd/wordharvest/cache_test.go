package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewCacheCmd tests the cache command creation.
func TestNewCacheCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCacheCmd()

	if cmd.Use != "cache" {
		t.Errorf("expected use 'cache', got %q", cmd.Use)
	}

	want := map[string]bool{
		"stats":            false,
		"sweep":            false,
		"clear":            false,
		"warm [phrase...]": false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Use]; ok {
			want[sub.Use] = true
		}
	}
	for use, found := range want {
		if !found {
			t.Errorf("expected %q subcommand", use)
		}
	}
}

// TestCacheStatsMissingDatabase tests the error for an absent cache.
func TestCacheStatsMissingDatabase(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"cache", "stats", "--cache-dir", t.TempDir()})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing cache database")
	}
}

// TestCacheWarmThenStats warms the cache from a fake API, then reads
// statistics and clears it through the CLI.
func TestCacheWarmThenStats(t *testing.T) {
	t.Parallel()

	srv := suggestionServer(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	t.Run("warm", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"cache", "warm",
			"--cache-dir", cacheDir,
			"--api-key", "test-key",
			"--endpoint", srv.URL,
			"-w", "2",
			"окна", "двери", "ОКНА", // duplicate after normalization
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("cache warm failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Cached 2 phrases") {
			t.Errorf("expected 2 cached phrases, got output: %s", buf.String())
		}
	})

	t.Run("stats", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"cache", "stats", "--cache-dir", cacheDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("cache stats failed: %v", err)
		}
		if !strings.Contains(buf.String(), "total:   2") {
			t.Errorf("expected 2 total entries, got output: %s", buf.String())
		}
	})

	t.Run("clear", func(t *testing.T) {
		cmd := NewRootCmd()
		cmd.SetArgs([]string{"cache", "clear", "--cache-dir", cacheDir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}

		var buf bytes.Buffer
		statsCmd := NewRootCmd()
		statsCmd.SetOut(&buf)
		statsCmd.SetArgs([]string{"cache", "stats", "--cache-dir", cacheDir})
		if err := statsCmd.Execute(); err != nil {
			t.Fatalf("cache stats after clear failed: %v", err)
		}
		if !strings.Contains(buf.String(), "total:   0") {
			t.Errorf("expected empty cache after clear, got output: %s", buf.String())
		}
	})
}

// TestCacheWarmFromSeedFile tests warming with a seed file.
func TestCacheWarmFromSeedFile(t *testing.T) {
	t.Parallel()

	srv := suggestionServer(t)
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(seedPath, []byte("окна\n# comment\nдвери\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"cache", "warm",
		"--cache-dir", filepath.Join(dir, "cache"),
		"--api-key", "test-key",
		"--endpoint", srv.URL,
		"-s", seedPath,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache warm failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Cached 2 phrases") {
		t.Errorf("expected 2 cached phrases, got output: %s", buf.String())
	}
}

// TestCacheWarmRequiresKey tests the missing-credential error.
func TestCacheWarmRequiresKey(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"cache", "warm", "--cache-dir", t.TempDir(), "окна"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when no API key given")
	}
}
