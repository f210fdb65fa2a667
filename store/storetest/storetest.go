// Package storetest holds the behavior every store.SnapshotStore backend
// must share. Backend packages call Run from their tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smallnest/searchflow/persist"
	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
	"github.com/smallnest/searchflow/store"
)

// Snapshot builds a snapshot of a small idle state.
func Snapshot(id, session string, version int) *store.Snapshot {
	vs := state.ViewState{
		Phrase: "alice",
		Status: state.IdleLoadable,
		Profiles: []profile.Profile{
			{Name: fmt.Sprintf("Alice %d", version), Title: "Mentor", Link: "/u/" + id},
		},
	}
	return &store.Snapshot{
		ID:        id,
		SessionID: session,
		Record:    persist.Serialize(vs),
		Metadata:  map[string]any{"phrase": "alice"},
		Timestamp: time.Date(2024, 1, 1, 12, 0, version, 0, time.UTC),
		Version:   version,
	}
}

// Run exercises newStore against the SnapshotStore contract. newStore must
// return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.SnapshotStore) {
	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		snap := Snapshot("snap-1", "session-a", 1)
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		loaded, err := s.Load(ctx, "snap-1")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if loaded.ID != snap.ID || loaded.SessionID != snap.SessionID || loaded.Version != snap.Version {
			t.Errorf("Loaded %+v, want %+v", loaded, snap)
		}
		if !loaded.Timestamp.Equal(snap.Timestamp) {
			t.Errorf("Timestamp mismatch: got %v, want %v", loaded.Timestamp, snap.Timestamp)
		}

		vs, ok, err := persist.Deserialize(loaded.Record)
		if err != nil || !ok {
			t.Fatalf("Record did not survive: ok=%v err=%v", ok, err)
		}
		if len(vs.Profiles) != 1 || vs.Profiles[0].Name != "Alice 1" {
			t.Errorf("Profiles mismatch: %v", vs.Profiles)
		}
	})

	t.Run("load missing returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(context.Background(), "does-not-exist")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("overwrite by ID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.Save(ctx, Snapshot("same", "session-a", 1)); err != nil {
			t.Fatalf("Failed to save v1: %v", err)
		}
		if err := s.Save(ctx, Snapshot("same", "session-a", 2)); err != nil {
			t.Fatalf("Failed to save v2: %v", err)
		}

		loaded, err := s.Load(ctx, "same")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if loaded.Version != 2 {
			t.Errorf("Expected version 2, got %d", loaded.Version)
		}
		list, err := s.List(ctx, "session-a")
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("Expected 1 snapshot after overwrite, got %d", len(list))
		}
	})

	t.Run("list filters by session and sorts by version", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, snap := range []*store.Snapshot{
			Snapshot("a-3", "session-a", 3),
			Snapshot("a-1", "session-a", 1),
			Snapshot("b-1", "session-b", 1),
			Snapshot("a-2", "session-a", 2),
		} {
			if err := s.Save(ctx, snap); err != nil {
				t.Fatalf("Failed to save %s: %v", snap.ID, err)
			}
		}

		list, err := s.List(ctx, "session-a")
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(list))
		}
		for i, want := range []string{"a-1", "a-2", "a-3"} {
			if list[i].ID != want {
				t.Errorf("Position %d: got %s, want %s", i, list[i].ID, want)
			}
		}

		latest, err := store.Latest(ctx, s, "session-a")
		if err != nil || latest == nil || latest.ID != "a-3" {
			t.Errorf("Latest = %v, %v; want a-3", latest, err)
		}

		empty, err := s.List(ctx, "nobody")
		if err != nil {
			t.Fatalf("Failed to list empty session: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("Expected no snapshots, got %d", len(empty))
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.Save(ctx, Snapshot("gone", "session-a", 1)); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if err := s.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := s.Load(ctx, "gone"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		list, _ := s.List(ctx, "session-a")
		if len(list) != 0 {
			t.Errorf("Deleted snapshot still listed")
		}
	})

	t.Run("clear only touches one session", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, snap := range []*store.Snapshot{
			Snapshot("a-1", "session-a", 1),
			Snapshot("a-2", "session-a", 2),
			Snapshot("b-1", "session-b", 1),
		} {
			if err := s.Save(ctx, snap); err != nil {
				t.Fatalf("Failed to save %s: %v", snap.ID, err)
			}
		}
		if err := s.Clear(ctx, "session-a"); err != nil {
			t.Fatalf("Failed to clear: %v", err)
		}

		a, _ := s.List(ctx, "session-a")
		b, _ := s.List(ctx, "session-b")
		if len(a) != 0 || len(b) != 1 {
			t.Errorf("After clear: session-a=%d session-b=%d, want 0 and 1", len(a), len(b))
		}
	})

	t.Run("checkpointer round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		cp := store.NewCheckpointer(s, "session-c")
		cp.MaxSnapshots = 2

		for i := 1; i <= 3; i++ {
			vs := state.ViewState{
				Phrase:   fmt.Sprintf("query %d", i),
				Status:   state.LoadingMore,
				Profiles: []profile.Profile{{Name: "Bob"}},
			}
			if _, err := cp.Save(ctx, vs); err != nil {
				t.Fatalf("Failed to save state %d: %v", i, err)
			}
		}

		list, err := s.List(ctx, "session-c")
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 2 || list[0].Version != 2 || list[1].Version != 3 {
			t.Errorf("Expected versions 2 and 3 after pruning, got %d snapshots", len(list))
		}

		vs, ok, err := cp.Restore(ctx)
		if err != nil || !ok {
			t.Fatalf("Restore failed: ok=%v err=%v", ok, err)
		}
		if vs.Phrase != "query 3" || vs.Status != state.IdleLoadable {
			t.Errorf("Restored %s, want query 3 downgraded to IDLE_LOADABLE", vs)
		}
	})
}
