package scores

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := OpenSnapshots(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenSnapshots failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotRoundTripPreservesOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	book := scoresFrom(
		Entry{"zeta", Score{9, 2}},
		Entry{"alpha", Score{5, 1}},
		Entry{"mid", Score{12, 3}},
	)
	if err := store.Save(ctx, 42, book); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, found, err := store.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("snapshot not found after save")
	}
	if !reflect.DeepEqual(loaded.IDs(), []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("order not preserved: %v", loaded.IDs())
	}
	if got, _ := loaded.Get("mid"); got != (Score{12, 3}) {
		t.Fatalf("mid = %+v", got)
	}
}

func TestSnapshotLoadMissingUser(t *testing.T) {
	store := openTestStore(t)

	loaded, found, err := store.Load(context.Background(), 7)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Fatal("expected no snapshot")
	}
	if loaded != nil {
		t.Fatal("expected nil scores for missing snapshot")
	}
}

func TestSnapshotSaveReplacesPrevious(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, scoresFrom(Entry{"old", Score{5, 1}})); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := store.Save(ctx, 1, scoresFrom(Entry{"new", Score{4, 1}})); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, found, err := store.Load(ctx, 1)
	if err != nil || !found {
		t.Fatalf("Load failed: %v found=%v", err, found)
	}
	if _, ok := loaded.Get("old"); ok {
		t.Fatal("old entry survived replacement")
	}
	if _, ok := loaded.Get("new"); !ok {
		t.Fatal("new entry missing")
	}
}

func TestSnapshotDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 9, scoresFrom(Entry{"a", Score{5, 1}})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, 9); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, err := store.Load(ctx, 9)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Fatal("snapshot still present after delete")
	}
}

func TestSnapshotEmptyScoresStillFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 3, New()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, found, err := store.Load(ctx, 3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("empty snapshot should still be found")
	}
	if loaded.Len() != 0 {
		t.Fatalf("expected empty scores, got %d entries", loaded.Len())
	}
}

func TestSnapshotsIsolatedPerUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, scoresFrom(Entry{"one", Score{5, 1}})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, 2, scoresFrom(Entry{"two", Score{4, 1}})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := loaded.Get("two"); ok {
		t.Fatal("user 1 snapshot contains user 2 data")
	}
}
