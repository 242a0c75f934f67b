// Package historytest holds behaviour tests shared by every
// database.HistoryWriter implementation.
package historytest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/photo-sheet/internal/database"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) database.HistoryWriter

// tick keeps updated_at strictly increasing between saves on stores that
// read the wall clock.
const tick = 15 * time.Millisecond

func save(t *testing.T, w database.HistoryWriter, p *database.Photosheet) {
	t.Helper()
	if err := w.SavePhotosheet(context.Background(), p); err != nil {
		t.Fatalf("SavePhotosheet: %v", err)
	}
	time.Sleep(tick)
}

func jsonEqual(t *testing.T, want, got []byte) {
	t.Helper()
	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("want is not JSON: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("stored state is not JSON: %v (%q)", err, got)
	}
	if diff := cmp.Diff(w, g); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func ids(sheets []database.Photosheet) []string {
	out := make([]string, len(sheets))
	for i, s := range sheets {
		out[i] = s.ID
	}
	return out
}

// Run exercises the full HistoryWriter contract against stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveAndGet", func(t *testing.T) {
		ctx := context.Background()
		w := newStore(t)

		state := []byte(`{"copies":4,"images":[{"src":"/uploads/a.jpg","width":640,"height":480}]}`)
		p := &database.Photosheet{OwnerID: "owner-1", ThumbnailURL: "/uploads/a.jpg", Copies: 4, State: state}
		save(t, w, p)
		if p.ID == "" {
			t.Fatal("expected SavePhotosheet to assign an ID")
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Errorf("expected timestamps to be set, got %+v", p)
		}

		got, err := w.GetPhotosheet(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPhotosheet: %v", err)
		}
		if got == nil {
			t.Fatal("expected photosheet, got nil")
		}
		if got.OwnerID != "owner-1" || got.ThumbnailURL != "/uploads/a.jpg" || got.Copies != 4 {
			t.Errorf("unexpected photosheet %+v", got)
		}
		jsonEqual(t, state, got.State)
	})

	t.Run("GetMissing", func(t *testing.T) {
		w := newStore(t)
		got, err := w.GetPhotosheet(context.Background(), "does-not-exist")
		if err != nil {
			t.Fatalf("GetPhotosheet: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for a missing photosheet, got %+v", got)
		}
	})

	t.Run("UpdateKeepsCreatedAt", func(t *testing.T) {
		ctx := context.Background()
		w := newStore(t)

		p := &database.Photosheet{OwnerID: "o", Copies: 1, State: []byte(`{"copies":1}`)}
		save(t, w, p)
		created := p.CreatedAt

		p.Copies = 9
		p.State = []byte(`{"copies":9}`)
		save(t, w, p)

		got, err := w.GetPhotosheet(ctx, p.ID)
		if err != nil || got == nil {
			t.Fatalf("GetPhotosheet: %v, %v", got, err)
		}
		if got.Copies != 9 {
			t.Errorf("copies = %d, want 9", got.Copies)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("created_at changed from %v to %v", created, got.CreatedAt)
		}
		if !got.UpdatedAt.After(created) {
			t.Errorf("updated_at %v should be after created_at %v", got.UpdatedAt, created)
		}
		jsonEqual(t, []byte(`{"copies":9}`), got.State)

		n, err := w.CountPhotosheets(ctx, database.HistoryFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("count = %d after an update, want 1", n)
		}
	})

	t.Run("ListOrderAndFilters", func(t *testing.T) {
		ctx := context.Background()
		w := newStore(t)

		var saved []*database.Photosheet
		for _, owner := range []string{"a", "b", "a", "a"} {
			p := &database.Photosheet{OwnerID: owner, Copies: 1, State: []byte(`{}`)}
			save(t, w, p)
			saved = append(saved, p)
		}

		all, err := w.ListPhotosheets(ctx, database.HistoryFilter{})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{saved[3].ID, saved[2].ID, saved[1].ID, saved[0].ID}
		if diff := cmp.Diff(want, ids(all)); diff != "" {
			t.Errorf("newest first (-want +got):\n%s", diff)
		}
		for _, p := range all {
			if len(p.State) != 0 {
				t.Errorf("listing should not load state, got %q", p.State)
			}
		}

		owned, err := w.ListPhotosheets(ctx, database.HistoryFilter{OwnerID: "a", Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{saved[3].ID, saved[2].ID}, ids(owned)); diff != "" {
			t.Errorf("owner a, limit 2 (-want +got):\n%s", diff)
		}

		page2, err := w.ListPhotosheets(ctx, database.HistoryFilter{OwnerID: "a", Limit: 2, Offset: 2})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{saved[0].ID}, ids(page2)); diff != "" {
			t.Errorf("owner a, second page (-want +got):\n%s", diff)
		}

		n, err := w.CountPhotosheets(ctx, database.HistoryFilter{OwnerID: "a", Limit: 1})
		if err != nil {
			t.Fatal(err)
		}
		if n != 3 {
			t.Errorf("count ignores limit: got %d, want 3", n)
		}

		older, err := w.ListPhotosheets(ctx, database.HistoryFilter{Before: saved[2].UpdatedAt})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{saved[1].ID, saved[0].ID}, ids(older)); diff != "" {
			t.Errorf("before filter (-want +got):\n%s", diff)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		w := newStore(t)

		p := &database.Photosheet{OwnerID: "o", State: []byte(`{}`)}
		save(t, w, p)
		if err := w.DeletePhotosheet(ctx, p.ID); err != nil {
			t.Fatalf("DeletePhotosheet: %v", err)
		}
		if got, _ := w.GetPhotosheet(ctx, p.ID); got != nil {
			t.Error("photosheet still present after delete")
		}
		if err := w.DeletePhotosheet(ctx, p.ID); err != nil {
			t.Errorf("deleting a missing photosheet should not fail: %v", err)
		}
	})

	t.Run("DeleteManyIsOwnerScoped", func(t *testing.T) {
		ctx := context.Background()
		w := newStore(t)

		mine1 := &database.Photosheet{OwnerID: "me", State: []byte(`{}`)}
		mine2 := &database.Photosheet{OwnerID: "me", State: []byte(`{}`)}
		theirs := &database.Photosheet{OwnerID: "them", State: []byte(`{}`)}
		for _, p := range []*database.Photosheet{mine1, mine2, theirs} {
			save(t, w, p)
		}

		n, err := w.DeletePhotosheets(ctx, "me", []string{mine1.ID, theirs.ID, "unknown"})
		if err != nil {
			t.Fatalf("DeletePhotosheets: %v", err)
		}
		if n != 1 {
			t.Errorf("deleted %d, want 1", n)
		}
		if got, _ := w.GetPhotosheet(ctx, theirs.ID); got == nil {
			t.Error("another owner's photosheet was deleted")
		}
		if got, _ := w.GetPhotosheet(ctx, mine2.ID); got == nil {
			t.Error("unlisted photosheet was deleted")
		}

		n, err = w.DeletePhotosheets(ctx, "me", nil)
		if err != nil || n != 0 {
			t.Errorf("empty batch: got %d, %v", n, err)
		}
	})
}
