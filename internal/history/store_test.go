package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"compressr/internal/history"
	"compressr/internal/testsupport"
)

func TestOpenCreatesDatabaseUnderStateDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if store.Path() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("path = %q", store.Path())
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	_ = reopened.Close()
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 7"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	_ = db.Close()

	if _, err := history.OpenPath(dbPath); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.Run{
		Input:           "/media/clip.mkv",
		Output:          "/media/25mb clip.mp4",
		Codec:           "libx264",
		BudgetBytes:     25_000_000,
		TotalFrames:     1000,
		DurationSeconds: 100,
	})
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if len(run.ID) != 36 {
		t.Fatalf("expected uuid id, got %q", run.ID)
	}
	if run.Status != history.StatusRunning || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run state %+v", run)
	}

	attempts := []history.Attempt{
		{Index: 1, VideoKbps: 1808, AudioKbps: 240, SizeBytes: 26_000_000},
		{Index: 2, VideoKbps: 1717.6, AudioKbps: 240, SizeBytes: 24_500_000, Accepted: true},
	}
	for _, attempt := range attempts {
		if err := store.RecordAttempt(ctx, run.ID, attempt); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	if err := store.FinishRun(ctx, run.ID, history.StatusAccepted, 24_500_000, nil); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	got, err := store.Run(ctx, run.ID)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected run")
	}
	if got.Status != history.StatusAccepted || got.FinalSize != 24_500_000 {
		t.Fatalf("unexpected final state %+v", got)
	}
	if got.FinishedAt.IsZero() || got.Elapsed() < 0 {
		t.Fatalf("expected finished timestamp, got %+v", got)
	}
	if got.TotalFrames != 1000 || got.DurationSeconds != 100 || got.Codec != "libx264" {
		t.Fatalf("probe fields not persisted: %+v", got)
	}
	if len(got.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(got.Attempts))
	}
	if got.Attempts[0].Accepted || !got.Attempts[1].Accepted {
		t.Fatalf("accepted flags wrong: %+v", got.Attempts)
	}
	if got.Attempts[1].VideoKbps != 1717.6 {
		t.Fatalf("video kbps = %v", got.Attempts[1].VideoKbps)
	}
}

func TestFinishRunStoresError(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.Run{ID: "fixed-id", Input: "a.mkv", Output: "25mb a.mp4", Codec: "libx264", BudgetBytes: 1})
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if run.ID != "fixed-id" {
		t.Fatalf("explicit id replaced: %q", run.ID)
	}
	if err := store.FinishRun(ctx, run.ID, history.StatusFailed, 0, errors.New("ffmpeg exited 1")); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}
	got, _ := store.Run(ctx, run.ID)
	if got.ErrorMessage != "ffmpeg exited 1" || got.Status != history.StatusFailed {
		t.Fatalf("unexpected run %+v", got)
	}

	if err := store.FinishRun(ctx, run.ID, history.StatusRunning, 0, nil); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
	if err := store.FinishRun(ctx, "missing", history.StatusFailed, 0, nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestRunsNewestFirstWithLimit(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if _, err := store.BeginRun(ctx, history.Run{ID: id, Input: id, Output: id, Codec: "libx264", BudgetBytes: 1}); err != nil {
			t.Fatalf("BeginRun(%s) returned error: %v", id, err)
		}
	}

	runs, err := store.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("Runs returned error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	all, err := store.Runs(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("Runs(0) = %d runs, err %v", len(all), err)
	}
}

func TestRunLookupByPrefix(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()

	for _, id := range []string{"abc123", "abd456"} {
		if _, err := store.BeginRun(ctx, history.Run{ID: id, Input: id, Output: id, Codec: "libx264", BudgetBytes: 1}); err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
	}

	got, err := store.Run(ctx, "abc")
	if err != nil || got == nil || got.ID != "abc123" {
		t.Fatalf("prefix lookup = %+v, %v", got, err)
	}
	if _, err := store.Run(ctx, "ab"); !errors.Is(err, history.ErrAmbiguousID) {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
	missing, err := store.Run(ctx, "zzz")
	if err != nil || missing != nil {
		t.Fatalf("missing lookup = %+v, %v", missing, err)
	}
	if _, err := store.Run(ctx, "a_"); err != nil {
		t.Fatalf("underscore must be literal: %v", err)
	}
}
