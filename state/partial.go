package state

import (
	"fmt"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/profile"
)

// Partial is one discrete event of the search pipeline. The set of variants
// is closed: only this package can implement Partial.
type Partial interface {
	// Phrase is the search phrase the event applies to.
	Phrase() string
	fmt.Stringer

	accept(v visitor) ViewState
}

// visitor has one method per Partial variant. The reducer implements it,
// so a new variant does not compile until the reducer handles it.
type visitor interface {
	cancelled(Cancelled) ViewState
	loadingFresh(LoadingFreshSearch) ViewState
	loadingMore(LoadingMoreResults) ViewState
	fresh(FreshResults) ViewState
	more(MoreResults) ViewState
	endReached(EndReached) ViewState
	failed(Failed) ViewState
}

// Cancelled clears the search.
type Cancelled struct{}

func (Cancelled) Phrase() string               { return "" }
func (Cancelled) String() string               { return "Cancelled" }
func (p Cancelled) accept(v visitor) ViewState { return v.cancelled(p) }

// LoadingFreshSearch marks the start of a new search for SearchPhrase.
type LoadingFreshSearch struct {
	SearchPhrase string
}

func (p LoadingFreshSearch) Phrase() string { return p.SearchPhrase }
func (p LoadingFreshSearch) String() string {
	return fmt.Sprintf("LoadingFreshSearch(%q)", p.SearchPhrase)
}
func (p LoadingFreshSearch) accept(v visitor) ViewState { return v.loadingFresh(p) }

// LoadingMoreResults marks the start of a follow-up page fetch.
type LoadingMoreResults struct {
	SearchPhrase string
}

func (p LoadingMoreResults) Phrase() string { return p.SearchPhrase }
func (p LoadingMoreResults) String() string {
	return fmt.Sprintf("LoadingMoreResults(%q)", p.SearchPhrase)
}
func (p LoadingMoreResults) accept(v visitor) ViewState { return v.loadingMore(p) }

// FreshResults carries the first page of a search.
type FreshResults struct {
	SearchPhrase string
	Profiles     []profile.Profile
}

func (p FreshResults) Phrase() string { return p.SearchPhrase }
func (p FreshResults) String() string {
	return fmt.Sprintf("FreshResults(%q, %s)", p.SearchPhrase, log.Abbreviate(p.Profiles))
}
func (p FreshResults) accept(v visitor) ViewState { return v.fresh(p) }

// MoreResults carries a follow-up page.
type MoreResults struct {
	SearchPhrase string
	Profiles     []profile.Profile
}

func (p MoreResults) Phrase() string { return p.SearchPhrase }
func (p MoreResults) String() string {
	return fmt.Sprintf("MoreResults(%q, %s)", p.SearchPhrase, log.Abbreviate(p.Profiles))
}
func (p MoreResults) accept(v visitor) ViewState { return v.more(p) }

// EndReached reports an empty page: nothing more to load.
type EndReached struct {
	SearchPhrase string
}

func (p EndReached) Phrase() string { return p.SearchPhrase }
func (p EndReached) String() string {
	return fmt.Sprintf("EndReached(%q)", p.SearchPhrase)
}
func (p EndReached) accept(v visitor) ViewState { return v.endReached(p) }

// Failed carries a fetch failure.
type Failed struct {
	SearchPhrase string
	Err          error
}

func (p Failed) Phrase() string { return p.SearchPhrase }
func (p Failed) String() string {
	return fmt.Sprintf("Failed(%q, %v)", p.SearchPhrase, p.Err)
}
func (p Failed) accept(v visitor) ViewState { return v.failed(p) }
