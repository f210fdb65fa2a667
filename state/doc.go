// Package state holds the view model of a search screen and the reducer
// that builds it.
//
// The pipeline emits Partial events (loading started, a page arrived, the
// end was reached, a fetch failed, the search was cleared). Fold turns the
// previous ViewState and one event into the next ViewState:
//
//	s := state.Blank()
//	s = state.Fold(s, state.LoadingFreshSearch{SearchPhrase: "alice"})
//	s = state.Fold(s, state.FreshResults{SearchPhrase: "alice", Profiles: page})
//
// A ViewState is complete: rendering it needs nothing else. ListItems
// derives the rows, including the trailing "loading more" or "no more
// results" sentinel.
package state
