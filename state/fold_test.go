package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/searchflow/profile"
)

func people(prefix string, from, to int) []profile.Profile {
	var out []profile.Profile
	for i := from; i <= to; i++ {
		out = append(out, profile.Profile{Name: fmt.Sprintf("%s %d", prefix, i)})
	}
	return out
}

func foldAll(s ViewState, partials ...Partial) ViewState {
	for _, p := range partials {
		s = Fold(s, p)
	}
	return s
}

func TestBlank(t *testing.T) {
	s := Blank()
	assert.Equal(t, "", s.Phrase)
	assert.Equal(t, IdleTerminal, s.Status)
	assert.Empty(t, s.Profiles)
	assert.NoError(t, s.Err)
	assert.False(t, s.HasNoResults())
	assert.False(t, s.HasResults())
	assert.Empty(t, s.ListItems())
}

func TestFold_Transitions(t *testing.T) {
	boom := errors.New("boom")
	withResults := ViewState{Phrase: "a", Status: IdleLoadable, Profiles: people("A", 1, 3), Err: boom}

	tests := []struct {
		name     string
		partial  Partial
		phrase   string
		status   LoadingStatus
		profiles []profile.Profile
		err      error
	}{
		{"cancelled", Cancelled{}, "", IdleLoadable, nil, nil},
		{"loading fresh drops profiles", LoadingFreshSearch{"b"}, "b", LoadingFresh, nil, nil},
		{"loading more keeps profiles", LoadingMoreResults{"a"}, "a", LoadingMore, people("A", 1, 3), nil},
		{"fresh replaces", FreshResults{"a", people("B", 1, 2)}, "a", IdleLoadable, people("B", 1, 2), nil},
		{"more appends", MoreResults{"a", people("A", 4, 5)}, "a", IdleLoadable, people("A", 1, 5), nil},
		{"end same phrase keeps", EndReached{"a"}, "a", IdleTerminal, people("A", 1, 3), nil},
		{"end other phrase clears", EndReached{"z"}, "z", IdleTerminal, nil, nil},
		{"failed", Failed{"a", boom}, "a", IdleTerminal, nil, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fold(withResults, tt.partial)
			assert.Equal(t, tt.phrase, got.Phrase)
			assert.Equal(t, tt.status, got.Status)
			if tt.profiles == nil {
				assert.Empty(t, got.Profiles)
			} else {
				assert.Equal(t, tt.profiles, got.Profiles)
			}
			assert.Equal(t, tt.err, got.Err)
		})
	}
}

func TestFold_ConcatenatesPagesInOrder(t *testing.T) {
	s := foldAll(Blank(),
		LoadingFreshSearch{"alice"},
		FreshResults{"alice", people("Alice", 1, 5)},
		LoadingMoreResults{"alice"},
		MoreResults{"alice", people("Alice", 6, 10)},
		LoadingMoreResults{"alice"},
		MoreResults{"alice", people("Alice", 11, 12)},
	)
	assert.Equal(t, people("Alice", 1, 12), s.Profiles)
	assert.Equal(t, IdleLoadable, s.Status)
}

func TestFold_DoesNotAliasPrevious(t *testing.T) {
	page := people("A", 1, 2)
	first := Fold(Blank(), FreshResults{"a", page})
	page[0].Name = "mutated"
	assert.Equal(t, "A 1", first.Profiles[0].Name)

	base := ViewState{Phrase: "a", Status: IdleLoadable, Profiles: make([]profile.Profile, 1, 10)}
	x := Fold(base, MoreResults{"a", people("X", 1, 1)})
	y := Fold(base, MoreResults{"a", people("Y", 1, 1)})
	assert.Equal(t, "X 1", x.Profiles[1].Name)
	assert.Equal(t, "Y 1", y.Profiles[1].Name)
	assert.Len(t, base.Profiles, 1)
}

func TestFold_EndReachedAfterEmptyFirstPage(t *testing.T) {
	s := foldAll(Blank(), LoadingFreshSearch{"zed"}, EndReached{"zed"})
	assert.Equal(t, IdleTerminal, s.Status)
	assert.True(t, s.HasNoResults())
	assert.False(t, s.HasResults())
	assert.Empty(t, s.ListItems())
}

func TestFold_ErrorClearedByNextEvent(t *testing.T) {
	s := Fold(Blank(), Failed{"a", errors.New("offline")})
	require.Error(t, s.Err)
	s = Fold(s, LoadingFreshSearch{"b"})
	assert.NoError(t, s.Err)
}

func TestListItems(t *testing.T) {
	loadingMore := ViewState{Phrase: "a", Status: LoadingMore, Profiles: people("A", 1, 2)}
	items := loadingMore.ListItems()
	require.Len(t, items, 3)
	assert.Equal(t, ProfileItem{Ordinal: 1, Profile: people("A", 1, 1)[0]}, items[0])
	assert.Equal(t, 2, items[1].(ProfileItem).Ordinal)
	assert.Equal(t, LoadingMoreView, items[2].ViewType())

	ended := ViewState{Phrase: "a", Status: IdleTerminal, Profiles: people("A", 1, 1)}
	items = ended.ListItems()
	require.Len(t, items, 2)
	assert.Equal(t, NoMoreResultsView, items[1].ViewType())

	loadable := ViewState{Phrase: "a", Status: IdleLoadable, Profiles: people("A", 1, 1)}
	items = loadable.ListItems()
	require.Len(t, items, 1)
	assert.Equal(t, ProfileView, items[0].ViewType())
}

func TestHasResults(t *testing.T) {
	assert.False(t, ViewState{Phrase: "a", Status: LoadingFresh, Profiles: people("A", 1, 1)}.HasResults())
	assert.True(t, ViewState{Phrase: "a", Status: LoadingMore, Profiles: people("A", 1, 1)}.HasResults())
	assert.False(t, ViewState{Phrase: "a", Status: LoadingFresh}.HasNoResults())
	assert.True(t, ViewState{Phrase: "a", Status: IdleLoadable}.HasNoResults())
}

func TestViewState_Equal(t *testing.T) {
	a := ViewState{Phrase: "a", Status: IdleTerminal, Err: errors.New("x")}
	b := ViewState{Phrase: "a", Status: IdleTerminal, Err: errors.New("x")}
	assert.True(t, a.Equal(b))
	b.Err = nil
	assert.False(t, a.Equal(b))
}

func TestStrings(t *testing.T) {
	s := ViewState{Phrase: "alice", Status: IdleLoadable, Profiles: people("Alice", 1, 5)}
	assert.Equal(t, `ViewState(phrase="alice", status=IDLE_LOADABLE, profiles=5 elements (from Alice 1 to Alice 5))`, s.String())
	assert.Equal(t, `FreshResults("alice", (Alice 1 and Alice 2))`, FreshResults{"alice", people("Alice", 1, 2)}.String())
	assert.Equal(t, "Cancelled", Cancelled{}.String())
}

func TestLoadingStatus(t *testing.T) {
	for _, s := range []LoadingStatus{IdleTerminal, IdleLoadable, LoadingFresh, LoadingMore} {
		parsed, err := ParseLoadingStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseLoadingStatus("LOADING")
	assert.Error(t, err)
	assert.Equal(t, "LoadingStatus(9)", LoadingStatus(9).String())
	assert.True(t, LoadingMore.Loading())
	assert.True(t, IdleLoadable.Idle())
}
