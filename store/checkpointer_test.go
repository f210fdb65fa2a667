package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/searchflow/persist"
	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
	"github.com/smallnest/searchflow/store"
	"github.com/smallnest/searchflow/store/memory"
)

func results(phrase string, names ...string) state.ViewState {
	vs := state.ViewState{Phrase: phrase, Status: state.IdleLoadable}
	for _, n := range names {
		vs.Profiles = append(vs.Profiles, profile.Profile{Name: n, Title: "t", Link: "/" + n})
	}
	return vs
}

func TestCheckpointer_SaveAssignsVersions(t *testing.T) {
	ctx := context.Background()
	cp := store.NewCheckpointer(memory.NewMemorySnapshotStore(), "sess")

	first, err := cp.Save(ctx, results("alice", "Alice"))
	require.NoError(t, err)
	second, err := cp.Save(ctx, results("alice", "Alice", "Alina"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "alice", second.Metadata["phrase"])
	assert.Equal(t, 2, second.Metadata["profiles"])
}

func TestCheckpointer_Prunes(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMemorySnapshotStore()
	cp := store.NewCheckpointer(s, "sess")
	cp.MaxSnapshots = 2

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := cp.Save(ctx, results(name, name))
		require.NoError(t, err)
	}

	list, err := s.List(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].Version)
	assert.Equal(t, 4, list[1].Version)
}

func TestCheckpointer_RestoreLatest(t *testing.T) {
	ctx := context.Background()
	cp := store.NewCheckpointer(memory.NewMemorySnapshotStore(), "sess")

	_, ok, err := cp.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cp.Save(ctx, results("ali", "Ali"))
	require.NoError(t, err)
	loading := results("alice", "Alice")
	loading.Status = state.LoadingMore
	_, err = cp.Save(ctx, loading)
	require.NoError(t, err)

	vs, ok, err := cp.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", vs.Phrase)
	assert.Equal(t, state.IdleLoadable, vs.Status)
	assert.Len(t, vs.Profiles, 1)
}

func TestCheckpointer_RestoreCorrupt(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMemorySnapshotStore()

	r := persist.NewRecord()
	r.PutString(persist.KeySearchPhrase, "alice")
	require.NoError(t, s.Save(ctx, &store.Snapshot{ID: "bad", SessionID: "sess", Record: r, Version: 1}))

	_, _, err := store.NewCheckpointer(s, "sess").Restore(ctx)
	assert.True(t, errors.Is(err, persist.ErrCorrupt))
}

func TestCheckpointer_Watch(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMemorySnapshotStore()
	cp := store.NewCheckpointer(s, "sess")

	states := make(chan state.ViewState, 5)
	states <- state.ViewState{Phrase: "alice", Status: state.LoadingFresh}
	states <- results("alice", "Alice")
	states <- results("alice", "Alice")
	states <- state.ViewState{Phrase: "alice", Status: state.LoadingMore, Profiles: results("alice", "Alice").Profiles}
	states <- results("alice", "Alice", "Alina")
	close(states)

	require.NoError(t, cp.Watch(ctx, states))

	list, err := s.List(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Metadata["profiles"])
	assert.Equal(t, 2, list[1].Metadata["profiles"])
}

func TestCheckpointer_WatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cp := store.NewCheckpointer(memory.NewMemorySnapshotStore(), "sess")
	assert.NoError(t, cp.Watch(ctx, make(chan state.ViewState)))
}
