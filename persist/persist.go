package persist

import (
	"errors"
	"fmt"

	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
)

// Record keys. They are part of the on-disk format and must not change.
const (
	KeyVersion       = "version"
	KeySearchPhrase  = "searchPhrase"
	KeyLoadingStatus = "loadingStatus"
	KeyError         = "error"
	KeyNames         = "names"
	KeyTitles        = "titles"
	KeyLinks         = "links"
)

// SchemaVersion is written to every record.
const SchemaVersion = "1"

// ErrCorrupt reports a record that was persisted but cannot be restored.
// It signals a broken invariant, not a recoverable condition.
var ErrCorrupt = errors.New("persist: corrupt record")

// RestoredError stands in for an error restored from a record. Only the
// message survives persistence.
type RestoredError struct {
	Message string
}

func (e *RestoredError) Error() string { return e.Message }

// Serialize flattens s into a record. Profiles are stored column-wise as
// three parallel lists.
func Serialize(s state.ViewState) *Record {
	r := NewRecord()
	r.PutString(KeyVersion, SchemaVersion)
	r.PutString(KeySearchPhrase, s.Phrase)
	r.PutString(KeyLoadingStatus, s.Status.String())
	if s.Err != nil {
		r.PutString(KeyError, s.Err.Error())
	}

	names := make([]string, len(s.Profiles))
	titles := make([]string, len(s.Profiles))
	links := make([]string, len(s.Profiles))
	for i, p := range s.Profiles {
		names[i], titles[i], links[i] = p.Name, p.Title, p.Link
	}
	r.PutStrings(KeyNames, names)
	r.PutStrings(KeyTitles, titles)
	r.PutStrings(KeyLinks, links)
	return r
}

// Deserialize rebuilds a state from r. It returns false when r holds no
// persisted state, which is signalled by the absence of the search phrase.
//
// A state captured while a fetch was in flight is restored as
// IdleLoadable, since the fetch did not survive. Any record that has a
// phrase but is otherwise inconsistent returns an error wrapping
// ErrCorrupt.
func Deserialize(r *Record) (state.ViewState, bool, error) {
	phrase, ok := r.GetString(KeySearchPhrase)
	if !ok {
		return state.ViewState{}, false, nil
	}

	if v, ok := r.GetString(KeyVersion); ok && v != SchemaVersion {
		return state.ViewState{}, false, fmt.Errorf("%w: unsupported version %q", ErrCorrupt, v)
	}

	// Only the phrase signals an empty record. Once it is present, a
	// missing status or list is a broken write, not an absent state.
	rawStatus, ok := r.GetString(KeyLoadingStatus)
	if !ok {
		return state.ViewState{}, false, fmt.Errorf("%w: missing %s", ErrCorrupt, KeyLoadingStatus)
	}
	status, err := state.ParseLoadingStatus(rawStatus)
	if err != nil {
		return state.ViewState{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if status.Loading() {
		status = state.IdleLoadable
	}

	var columns [3][]string
	for i, key := range []string{KeyNames, KeyTitles, KeyLinks} {
		list, ok := r.GetStrings(key)
		if !ok {
			return state.ViewState{}, false, fmt.Errorf("%w: missing %s", ErrCorrupt, key)
		}
		columns[i] = list
	}
	names, titles, links := columns[0], columns[1], columns[2]
	if len(names) != len(titles) || len(names) != len(links) {
		return state.ViewState{}, false, fmt.Errorf("%w: %d names, %d titles, %d links",
			ErrCorrupt, len(names), len(titles), len(links))
	}

	profiles := make([]profile.Profile, len(names))
	for i := range names {
		profiles[i] = profile.Profile{Name: names[i], Title: titles[i], Link: links[i]}
	}

	s := state.ViewState{Phrase: phrase, Status: status, Profiles: profiles}
	if msg, ok := r.GetString(KeyError); ok {
		s.Err = &RestoredError{Message: msg}
	}
	return s, true, nil
}

// MustDeserialize is like Deserialize but panics on a corrupt record.
func MustDeserialize(r *Record) (state.ViewState, bool) {
	s, ok, err := Deserialize(r)
	if err != nil {
		panic(err)
	}
	return s, ok
}
