package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/felixgeelhaar/recall/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeModule(t *testing.T, dir string) {
	t.Helper()
	moduleDir := filepath.Join(dir, "catalog", "basics")
	if err := os.MkdirAll(moduleDir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `id: basics
title: Basics
order: 1
lessons:
  - id: l1
    title: Variables
    exercises:
      - id: ex1
        title: Swap
        difficulty: intermediate
`
	if err := os.WriteFile(filepath.Join(moduleDir, "module.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newApp(t *testing.T, dir string, mutate func(*config.LocalConfig)) *App {
	t.Helper()
	cfg := config.DefaultLocalConfig()
	cfg.Reminder.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(context.Background(), cfg, Options{Dir: dir, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_LocalBackendPersists(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir)
	ctx := context.Background()

	a := newApp(t, dir, nil)
	if !a.Catalog.HasExercise("ex1") {
		t.Fatal("catalog not loaded")
	}
	if err := a.Progress.CompleteExercise(ctx, "ex1", 10); err != nil {
		t.Fatal(err)
	}
	if a.Runner != nil {
		t.Error("Runner should be nil without an execution url")
	}
	a.Close()

	b := newApp(t, dir, nil)
	if got := b.Progress.ExerciseStatus("ex1"); got != domain.StatusCompleted {
		t.Errorf("status after reopen = %q, want completed", got)
	}
	if n := b.Progress.Snapshot().Stats.ExercisesByDifficulty[domain.DifficultyIntermediate]; n != 1 {
		t.Errorf("intermediate count = %d, want 1", n)
	}
}

func TestNew_SQLiteBackendKeepsReviewLog(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir)
	ctx := context.Background()

	a := newApp(t, dir, func(c *config.LocalConfig) { c.Storage.Backend = config.BackendSQLite })
	if _, err := a.Progress.ReviewLesson(ctx, "l1", 4); err != nil {
		t.Fatal(err)
	}

	history, err := a.Progress.ReviewHistory(ctx, domain.UnitLesson, "l1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Quality != 4 {
		t.Errorf("history = %+v", history)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "recall.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	a := newApp(t, t.TempDir(), func(c *config.LocalConfig) { c.Storage.Backend = config.BackendMemory })
	if err := a.Progress.StartLesson(context.Background(), "l1"); err != nil {
		t.Fatal(err)
	}
	if a.Catalog == nil || len(a.Catalog.Modules()) != 0 {
		t.Error("missing catalog directory should give an empty catalog")
	}
}

func TestNew_WithExecutionAndReminder(t *testing.T) {
	a := newApp(t, t.TempDir(), func(c *config.LocalConfig) {
		c.Storage.Backend = config.BackendMemory
		c.Execution.URL = "http://127.0.0.1:1"
		c.Reminder.Enabled = true
	})
	if a.Runner == nil {
		t.Error("Runner should be built when an execution url is set")
	}
	if a.Reminder == nil {
		t.Error("Reminder should be built when enabled")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.LocalConfig)
	}{
		{"unknown backend", func(c *config.LocalConfig) { c.Storage.Backend = "tape" }},
		{"bad ladder", func(c *config.LocalConfig) {
			c.Storage.Backend = config.BackendMemory
			c.Scheduler.Ladder = []int{3, 1}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultLocalConfig()
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg, Options{Dir: t.TempDir(), Logger: testLogger()}); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}
