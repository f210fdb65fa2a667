package persist

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
)

var sample = []profile.Profile{
	{Name: "Alice 1", Title: "Go mentor", Link: "/u/1"},
	{Name: "Alice 2", Title: "Chess coach", Link: "/u/2"},
}

func TestRoundTrip_IdleStates(t *testing.T) {
	for _, status := range []state.LoadingStatus{state.IdleTerminal, state.IdleLoadable} {
		t.Run(status.String(), func(t *testing.T) {
			in := state.ViewState{Phrase: "alice", Status: status, Profiles: sample}

			out, ok, err := Deserialize(Serialize(in))
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, in.Equal(out), "got %s", out)
		})
	}
}

func TestRoundTrip_LoadingDowngraded(t *testing.T) {
	for _, status := range []state.LoadingStatus{state.LoadingFresh, state.LoadingMore} {
		t.Run(status.String(), func(t *testing.T) {
			in := state.ViewState{Phrase: "alice", Status: status, Profiles: sample}

			out, ok, err := Deserialize(Serialize(in))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, state.IdleLoadable, out.Status)
			assert.Equal(t, sample, out.Profiles)
		})
	}
}

func TestRoundTrip_Error(t *testing.T) {
	in := state.ViewState{Phrase: "alice", Status: state.IdleTerminal, Profiles: []profile.Profile{}, Err: errors.New("timeout")}

	out, ok, err := Deserialize(Serialize(in))
	require.NoError(t, err)
	require.True(t, ok)
	require.Error(t, out.Err)
	assert.Equal(t, "timeout", out.Err.Error())

	var restored *RestoredError
	assert.True(t, errors.As(out.Err, &restored))
}

func TestRoundTrip_BlankState(t *testing.T) {
	out, ok, err := Deserialize(Serialize(state.Blank()))
	require.NoError(t, err)
	require.True(t, ok, "an empty phrase is still a persisted state")
	assert.True(t, state.Blank().Equal(out))
}

func TestDeserialize_NothingPersisted(t *testing.T) {
	_, ok, err := Deserialize(NewRecord())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Deserialize(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeserialize_Corrupt(t *testing.T) {
	valid := func() *Record { return Serialize(state.ViewState{Phrase: "a", Status: state.IdleLoadable, Profiles: sample}) }

	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{"mismatched lengths", func(r *Record) { r.PutStrings(KeyTitles, []string{"only one"}) }},
		{"missing status", func(r *Record) { delete(r.strings, KeyLoadingStatus) }},
		{"unknown status", func(r *Record) { r.PutString(KeyLoadingStatus, "SLEEPING") }},
		{"missing links", func(r *Record) { delete(r.lists, KeyLinks) }},
		{"future version", func(r *Record) { r.PutString(KeyVersion, "2") }},
		{"phrase only", func(r *Record) {
			*r = *NewRecord()
			r.PutString(KeySearchPhrase, "a")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			_, ok, err := Deserialize(r)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDeserialize_WithoutVersion(t *testing.T) {
	r := Serialize(state.ViewState{Phrase: "a", Status: state.IdleTerminal})
	delete(r.strings, KeyVersion)
	_, ok, err := Deserialize(r)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMustDeserialize(t *testing.T) {
	r := Serialize(state.ViewState{Phrase: "a", Status: state.IdleLoadable, Profiles: sample})
	s, ok := MustDeserialize(r)
	assert.True(t, ok)
	assert.Len(t, s.Profiles, 2)

	r.PutStrings(KeyNames, nil)
	assert.Panics(t, func() { MustDeserialize(r) })
}

func TestSerialize_Layout(t *testing.T) {
	r := Serialize(state.ViewState{Phrase: "alice", Status: state.LoadingMore, Profiles: sample, Err: errors.New("x")})
	assert.Equal(t, []string{KeyError, KeyLinks, KeyLoadingStatus, KeyNames, KeySearchPhrase, KeyTitles, KeyVersion}, r.Keys())

	status, _ := r.GetString(KeyLoadingStatus)
	assert.Equal(t, "LOADING_MORE", status)
	names, _ := r.GetStrings(KeyNames)
	assert.Equal(t, []string{"Alice 1", "Alice 2"}, names)
	links, _ := r.GetStrings(KeyLinks)
	assert.Equal(t, []string{"/u/1", "/u/2"}, links)
}

func TestRecord_JSON(t *testing.T) {
	r := Serialize(state.ViewState{Phrase: "alice", Status: state.IdleLoadable, Profiles: sample})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "alice", flat[KeySearchPhrase])
	assert.Equal(t, []any{"Alice 1", "Alice 2"}, flat[KeyNames])

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Keys(), back.Keys())

	s, ok, err := Deserialize(&back)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample, s.Profiles)
}

func TestRecord_JSONEmptyListAndBadValue(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"names":[],"searchPhrase":"a"}`), &r))
	names, ok := r.GetStrings(KeyNames)
	assert.True(t, ok)
	assert.Empty(t, names)

	assert.Error(t, json.Unmarshal([]byte(`{"names":[1,2]}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"searchPhrase":42}`), &r))
}

func TestRecord_PutReplacesKind(t *testing.T) {
	r := NewRecord()
	r.PutString("k", "v")
	r.PutStrings("k", []string{"a"})
	_, isString := r.GetString("k")
	assert.False(t, isString)
	assert.True(t, r.Has("k"))
	assert.Equal(t, 1, r.Len())
}
