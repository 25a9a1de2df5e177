package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkprune/linkprune/internal/report"
)

func sampleRun(input string, dropped int) *report.Run {
	run := &report.Run{
		Input:        input,
		StartedAt:    time.Date(2026, 3, 14, 9, 26, 53, 123456789, time.UTC),
		Elapsed:      2500 * time.Millisecond,
		Places:       10,
		DistinctURLs: 9,
		Kept:         10 - dropped,
		DropCount:    dropped,
	}
	for i := 0; i < dropped; i++ {
		run.Dropped = append(run.Dropped, report.DroppedBookmark{
			URL:    "https://gone.example/" + string(rune('a'+i)),
			Title:  "dead link",
			Reason: "status 404",
		})
	}
	return run
}

func TestOpenCreateIfNotExists(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and file", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nested", "data")
		hdb, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer hdb.Close() //nolint:errcheck

		if hdb.Path() != filepath.Join(dbDir, "linkprune.db") {
			t.Errorf("unexpected path %s", hdb.Path())
		}
	})

	t.Run("refuses to create when disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error opening a missing database read-only")
		}
	})
}

func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer hdb.Close() //nolint:errcheck

	firstID, err := hdb.SaveRun(ctx, sampleRun("first.json", 2))
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	secondID, err := hdb.SaveRun(ctx, sampleRun("second.json", 0))
	if err != nil {
		t.Fatalf("save second run: %v", err)
	}
	if secondID <= firstID {
		t.Errorf("run IDs not increasing: %d then %d", firstID, secondID)
	}

	records, err := hdb.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(records))
	}

	// Newest first.
	if records[0].Input != "second.json" || records[1].Input != "first.json" {
		t.Errorf("unexpected order: %s, %s", records[0].Input, records[1].Input)
	}

	first := records[1]
	if first.Places != 10 || first.DistinctURLs != 9 || first.Kept != 8 || first.Dropped != 2 {
		t.Errorf("run counters lost in storage: %+v", first)
	}
	if first.Elapsed != 2500*time.Millisecond {
		t.Errorf("Elapsed = %v, want 2.5s", first.Elapsed)
	}
	want := time.Date(2026, 3, 14, 9, 26, 53, 123456789, time.UTC)
	if !first.StartedAt.Equal(want) {
		t.Errorf("StartedAt = %v, want %v", first.StartedAt, want)
	}
}

func TestListRunsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer hdb.Close() //nolint:errcheck

	for i := 0; i < 5; i++ {
		if _, err := hdb.SaveRun(ctx, sampleRun("run.json", 0)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := hdb.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 runs with limit, got %d", len(records))
	}
}

func TestDroppedForRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer hdb.Close() //nolint:errcheck

	runID, err := hdb.SaveRun(ctx, sampleRun("run.json", 3))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	otherID, err := hdb.SaveRun(ctx, sampleRun("other.json", 1))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	dropped, err := hdb.DroppedForRun(ctx, runID)
	if err != nil {
		t.Fatalf("dropped for run: %v", err)
	}
	if len(dropped) != 3 {
		t.Fatalf("expected 3 dropped bookmarks, got %d", len(dropped))
	}
	// Insertion order preserved.
	if dropped[0].URL != "https://gone.example/a" || dropped[2].URL != "https://gone.example/c" {
		t.Errorf("dropped order wrong: %+v", dropped)
	}
	if dropped[0].Title != "dead link" || dropped[0].Reason != "status 404" {
		t.Errorf("dropped fields lost: %+v", dropped[0])
	}

	other, err := hdb.DroppedForRun(ctx, otherID)
	if err != nil {
		t.Fatalf("dropped for other run: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("runs share dropped bookmarks: got %d for other run", len(other))
	}
}

func TestReopenPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbDir := t.TempDir()

	hdb, err := Open(dbDir, DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := hdb.SaveRun(ctx, sampleRun("run.json", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := hdb.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dbDir, Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close() //nolint:errcheck

	records, err := reopened.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(records) != 1 || records[0].Input != "run.json" {
		t.Errorf("saved run not found after reopen: %+v", records)
	}
}
