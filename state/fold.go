package state

import "github.com/smallnest/searchflow/profile"

// Fold derives the next state from prev and one partial event. It is pure:
// prev is not modified and the result never shares a backing array that a
// later Fold could write to.
//
// Every variant except Failed clears the error.
func Fold(prev ViewState, p Partial) ViewState {
	return p.accept(reducer{prev: prev})
}

type reducer struct {
	prev ViewState
}

var _ visitor = reducer{}

func (r reducer) cancelled(Cancelled) ViewState {
	return ViewState{Phrase: "", Status: IdleLoadable, Profiles: []profile.Profile{}}
}

func (r reducer) loadingFresh(p LoadingFreshSearch) ViewState {
	return ViewState{Phrase: p.SearchPhrase, Status: LoadingFresh, Profiles: []profile.Profile{}}
}

func (r reducer) loadingMore(p LoadingMoreResults) ViewState {
	return ViewState{Phrase: p.SearchPhrase, Status: LoadingMore, Profiles: r.prev.Profiles}
}

func (r reducer) fresh(p FreshResults) ViewState {
	return ViewState{Phrase: p.SearchPhrase, Status: IdleLoadable, Profiles: clone(p.Profiles)}
}

func (r reducer) more(p MoreResults) ViewState {
	profiles := make([]profile.Profile, 0, len(r.prev.Profiles)+len(p.Profiles))
	profiles = append(profiles, r.prev.Profiles...)
	profiles = append(profiles, p.Profiles...)
	return ViewState{Phrase: p.SearchPhrase, Status: IdleLoadable, Profiles: profiles}
}

func (r reducer) endReached(p EndReached) ViewState {
	profiles := []profile.Profile{}
	if p.SearchPhrase == r.prev.Phrase {
		profiles = r.prev.Profiles
	}
	return ViewState{Phrase: p.SearchPhrase, Status: IdleTerminal, Profiles: profiles}
}

func (r reducer) failed(p Failed) ViewState {
	return ViewState{Phrase: p.SearchPhrase, Status: IdleTerminal, Profiles: []profile.Profile{}, Err: p.Err}
}

func clone(profiles []profile.Profile) []profile.Profile {
	out := make([]profile.Profile, len(profiles))
	copy(out, profiles)
	return out
}
