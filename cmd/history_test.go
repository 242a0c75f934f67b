package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/memory"
)

// seedStore saves one sheet per age, each aged relative to now.
func seedStore(t *testing.T, now time.Time, ages map[string]time.Duration) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for id, age := range ages {
		at := now.Add(-age)
		store.SetClock(func() time.Time { return at })
		if err := store.SavePhotosheet(context.Background(), &database.Photosheet{ID: id, OwnerID: "owner", Copies: 1}); err != nil {
			t.Fatalf("SavePhotosheet(%s): %v", id, err)
		}
	}
	store.SetClock(func() time.Time { return now })
	return store
}

func TestStaleIDs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := seedStore(t, now, map[string]time.Duration{
		"fresh":  time.Hour,
		"week":   7 * 24 * time.Hour,
		"old":    40 * 24 * time.Hour,
		"oldest": 90 * 24 * time.Hour,
	})

	got, err := staleIDs(context.Background(), store, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("staleIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"old", "oldest"}, got); diff != "" {
		t.Errorf("stale ids mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleIDs_Paginates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ages := make(map[string]time.Duration)
	for i := range 1200 {
		ages[fmt.Sprintf("sheet-%04d", i)] = time.Duration(48+i) * time.Hour
	}
	store := seedStore(t, now, ages)

	got, err := staleIDs(context.Background(), store, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("staleIDs: %v", err)
	}
	if len(got) != len(ages) {
		t.Errorf("expected %d ids across pages, got %d", len(ages), len(got))
	}
}

func TestPruneHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := seedStore(t, now, map[string]time.Duration{
		"keep": time.Hour,
		"a":    60 * 24 * time.Hour,
		"b":    61 * 24 * time.Hour,
	})
	ctx := context.Background()

	ids, err := staleIDs(ctx, store, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("staleIDs: %v", err)
	}
	deleted, err := pruneHistory(ctx, store, ids, nil)
	if err != nil {
		t.Fatalf("pruneHistory: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	left, _ := store.ListPhotosheets(ctx, database.HistoryFilter{})
	if len(left) != 1 || left[0].ID != "keep" {
		t.Errorf("expected only 'keep' to remain, got %+v", left)
	}
}

func TestPruneHistory_Canceled(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deleted, err := pruneHistory(ctx, store, []string{"a", "b"}, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil, 0)
	if !strings.Contains(buf.String(), "No saved sheets") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	rows := []historyRow{{ID: "abc", OwnerID: "o1", Copies: 4, UpdatedAt: time.Now(), ThumbnailURL: "/uploads/x.jpg"}}
	printHistory(&buf, rows, 7)
	out := buf.String()
	for _, want := range []string{"abc", "o1", "/uploads/x.jpg", "Showing 1 of 7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
