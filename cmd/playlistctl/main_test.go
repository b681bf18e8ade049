package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pipeline-player/internal/history"
	"pipeline-player/internal/playlist"
)

// =============================================================================
// Unit Tests
// =============================================================================

// TestPrintUsage tests that printUsage doesn't panic
func TestPrintUsage(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage panicked: %v", r)
		}
	}()

	printUsage()
}

// TestPrintVersion tests that printVersion doesn't panic
func TestPrintVersion(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printVersion panicked: %v", r)
		}
	}()

	printVersion()
}

// TestResolveBaseDir tests base directory precedence
func TestResolveBaseDir(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv("PLAYER_HOME", "/from/env")

		dir, err := resolveBaseDir("/from/flag")
		if err != nil {
			t.Fatalf("resolveBaseDir returned error: %v", err)
		}
		if dir != "/from/flag" {
			t.Errorf("Expected /from/flag, got %s", dir)
		}
	})

	t.Run("environment wins over home", func(t *testing.T) {
		t.Setenv("PLAYER_HOME", "/from/env")

		dir, err := resolveBaseDir("")
		if err != nil {
			t.Fatalf("resolveBaseDir returned error: %v", err)
		}
		if dir != "/from/env" {
			t.Errorf("Expected /from/env, got %s", dir)
		}
	})

	t.Run("falls back to user home", func(t *testing.T) {
		t.Setenv("PLAYER_HOME", "")

		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("user home directory unavailable: %v", err)
		}

		dir, err := resolveBaseDir("")
		if err != nil {
			t.Fatalf("resolveBaseDir returned error: %v", err)
		}
		if dir != home {
			t.Errorf("Expected %s, got %s", home, dir)
		}
	})
}

// TestSanitizeCommand tests command sanitization for display
func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain command", "list", "list"},
		{"hyphenated", "do-thing", "do-thing"},
		{"underscored", "do_thing", "do_thing"},
		{"alphanumeric", "cmd123", "cmd123"},
		{"spaces replaced", "two words", "two_words"},
		{"control characters replaced", "bad\ncmd", "bad_cmd"},
		{"shell metacharacters replaced", "rm;-rf", "rm_-rf"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeCommand(tt.input)
			if got != tt.expected {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

// setupTestStore creates a playlist store under a temp base directory
func setupTestStore(t *testing.T) (store *playlist.Store, baseDir string) {
	t.Helper()

	baseDir = t.TempDir()
	store, err := playlist.New(baseDir)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store, baseDir
}

// writePipelineFile creates a pipeline file on disk for stat-sensitive tests
func writePipelineFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("nodes:\n"), 0o644); err != nil {
		t.Fatalf("failed to write pipeline file: %v", err)
	}
	return path
}

// TestAddEntriesIntegration tests adding pipelines and persisting them
func TestAddEntriesIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)

	pose := writePipelineFile(t, baseDir, "pose.yml")
	object := writePipelineFile(t, baseDir, "object.yml")

	if !addEntries(store, []string{pose, object}) {
		t.Fatal("Expected addEntries to succeed")
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", store.Len())
	}

	// A fresh store must see the saved entries
	reloaded, err := playlist.New(baseDir)
	if err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("Expected 2 entries after reload, got %d", reloaded.Len())
	}
	if !reloaded.Contains(pose) {
		t.Errorf("Expected reloaded store to contain %s", pose)
	}
}

// TestAddEntriesDuplicateIntegration tests that duplicates are skipped, not fatal
func TestAddEntriesDuplicateIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)
	pose := writePipelineFile(t, baseDir, "pose.yml")

	if !addEntries(store, []string{pose}) {
		t.Fatal("Expected first add to succeed")
	}
	if !addEntries(store, []string{pose}) {
		t.Error("Expected duplicate add to be reported, not fail")
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", store.Len())
	}
}

// TestAddEntriesMissingFileIntegration tests that a nonexistent path still adds
func TestAddEntriesMissingFileIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)
	ghost := filepath.Join(baseDir, "ghost.yml")

	if !addEntries(store, []string{ghost}) {
		t.Fatal("Expected add of missing file to succeed with a warning")
	}

	st, err := store.StatsFor(ghost)
	if err != nil {
		t.Fatalf("StatsFor returned error: %v", err)
	}
	if st.Exists {
		t.Error("Expected Exists to be false for missing file")
	}
}

// TestAddEntriesNoArgs tests argument validation
func TestAddEntriesNoArgs(t *testing.T) {
	store, _ := setupTestStore(t)

	if addEntries(store, nil) {
		t.Error("Expected addEntries with no arguments to fail")
	}
}

// TestRemoveEntryIntegration tests removal with the confirmation skipped
func TestRemoveEntryIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)
	pose := writePipelineFile(t, baseDir, "pose.yml")

	if !addEntries(store, []string{pose}) {
		t.Fatal("Expected add to succeed")
	}
	if !removeEntry(store, []string{pose}, true) {
		t.Fatal("Expected removeEntry to succeed")
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", store.Len())
	}

	// Removal must be persisted
	reloaded, err := playlist.New(baseDir)
	if err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Errorf("Expected empty store after reload, got %d entries", reloaded.Len())
	}
}

// TestRemoveEntryNotFound tests removal of an entry that is not present
func TestRemoveEntryNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	if removeEntry(store, []string{"nope.yml"}, true) {
		t.Error("Expected removeEntry to fail for unknown entry")
	}
}

// TestRemoveEntryArgumentCount tests argument validation
func TestRemoveEntryArgumentCount(t *testing.T) {
	store, _ := setupTestStore(t)

	if removeEntry(store, nil, true) {
		t.Error("Expected removeEntry with no arguments to fail")
	}
	if removeEntry(store, []string{"a.yml", "b.yml"}, true) {
		t.Error("Expected removeEntry with two arguments to fail")
	}
}

// TestShowStatsIntegration tests the stats command against a populated store
func TestShowStatsIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)
	pose := writePipelineFile(t, baseDir, "pose.yml")

	if !addEntries(store, []string{pose}) {
		t.Fatal("Expected add to succeed")
	}

	if !showStats(store, []string{pose}) {
		t.Error("Expected showStats to succeed for present entry")
	}
	if showStats(store, []string{"absent.yml"}) {
		t.Error("Expected showStats to fail for absent entry")
	}
	if showStats(store, nil) {
		t.Error("Expected showStats with no arguments to fail")
	}
}

// TestListEntriesIntegration tests that list handles empty and populated stores
func TestListEntriesIntegration(t *testing.T) {
	store, baseDir := setupTestStore(t)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("listEntries panicked: %v", r)
		}
	}()

	listEntries(store)

	pose := writePipelineFile(t, baseDir, "pose.yml")
	if !addEntries(store, []string{pose}) {
		t.Fatal("Expected add to succeed")
	}
	listEntries(store)
}

// TestShowHistoryIntegration tests the history command against recorded runs
func TestShowHistoryIntegration(t *testing.T) {
	_, baseDir := setupTestStore(t)
	ctx := context.Background()

	dbPath := filepath.Join(baseDir, playlist.ConfigDirName, "history.db")
	ledger, err := history.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open test ledger: %v", err)
	}

	runs := []history.Run{
		{
			Pipeline:  "pose.yml",
			Source:    "640x480 synthetic",
			StartedAt: time.Now().Add(-2 * time.Minute),
			EndedAt:   time.Now().Add(-1 * time.Minute),
			Frames:    120,
			Status:    history.StatusCompleted,
		},
		{
			Pipeline:  "object.yml",
			Source:    "640x480 synthetic",
			StartedAt: time.Now().Add(-1 * time.Minute),
			EndedAt:   time.Now(),
			Frames:    30,
			Status:    history.StatusFailed,
			Error:     "decode failure",
		},
	}
	for _, run := range runs {
		if err := ledger.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("failed to close test ledger: %v", err)
	}

	if !showHistory(ctx, baseDir, nil) {
		t.Error("Expected showHistory to succeed for all pipelines")
	}
	if !showHistory(ctx, baseDir, []string{"pose.yml"}) {
		t.Error("Expected showHistory to succeed for one pipeline")
	}
}

// TestShowHistoryEmptyIntegration tests history output with no recorded runs
func TestShowHistoryEmptyIntegration(t *testing.T) {
	_, baseDir := setupTestStore(t)
	ctx := context.Background()

	if !showHistory(ctx, baseDir, nil) {
		t.Error("Expected showHistory to succeed on an empty database")
	}
}

// TestShowHistoryMissingDirIntegration tests history when the config dir is absent
func TestShowHistoryMissingDirIntegration(t *testing.T) {
	ctx := context.Background()
	baseDir := filepath.Join(t.TempDir(), "does-not-exist")

	if showHistory(ctx, baseDir, nil) {
		t.Error("Expected showHistory to fail when the database cannot be opened")
	}
}
