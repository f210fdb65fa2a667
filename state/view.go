package state

import (
	"fmt"
	"slices"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/profile"
)

// ViewState fully describes what the search screen shows. Values are
// produced by Fold and never modified afterwards.
type ViewState struct {
	Phrase   string
	Status   LoadingStatus
	Profiles []profile.Profile
	// Err is set only after a failed fetch.
	Err error
}

// Blank is the state before any search: empty phrase, nothing loadable.
func Blank() ViewState {
	return ViewState{Status: IdleTerminal, Profiles: []profile.Profile{}}
}

// HasNoResults reports an idle search that found nothing.
func (s ViewState) HasNoResults() bool {
	return len(s.Profiles) == 0 && s.Status.Idle() && s.Phrase != ""
}

// HasResults reports whether the list has profiles to show.
func (s ViewState) HasResults() bool {
	return len(s.Profiles) > 0 && s.Status != LoadingFresh
}

// ErrorMessage returns the message of Err, or "".
func (s ViewState) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Equal compares two states; errors are compared by message.
func (s ViewState) Equal(o ViewState) bool {
	return s.Phrase == o.Phrase &&
		s.Status == o.Status &&
		slices.Equal(s.Profiles, o.Profiles) &&
		s.ErrorMessage() == o.ErrorMessage()
}

// String is a compact rendering for logs.
func (s ViewState) String() string {
	out := fmt.Sprintf("ViewState(phrase=%q, status=%s, profiles=%s", s.Phrase, s.Status, log.Abbreviate(s.Profiles))
	if s.Err != nil {
		out += fmt.Sprintf(", error=%q", s.Err.Error())
	}
	return out + ")"
}

// ListItems returns the rows to render: each profile with its 1-based
// ordinal, then a trailing sentinel while more results load, or once the
// end of a non-empty result set has been reached.
func (s ViewState) ListItems() []ListItem {
	items := make([]ListItem, 0, len(s.Profiles)+1)
	for i, p := range s.Profiles {
		items = append(items, ProfileItem{Ordinal: i + 1, Profile: p})
	}
	switch {
	case s.Status == LoadingMore:
		items = append(items, LoadingMoreItem{})
	case s.Status == IdleTerminal && len(s.Profiles) > 0:
		items = append(items, NoMoreResultsItem{})
	}
	return items
}

// ViewType identifies the kind of a list row.
type ViewType int

const (
	ProfileView ViewType = iota
	LoadingMoreView
	NoMoreResultsView
)

// ListItem is one rendered row.
type ListItem interface {
	ViewType() ViewType
}

// ProfileItem is a numbered profile row.
type ProfileItem struct {
	Ordinal int
	Profile profile.Profile
}

func (ProfileItem) ViewType() ViewType { return ProfileView }

// LoadingMoreItem is the trailing spinner row.
type LoadingMoreItem struct{}

func (LoadingMoreItem) ViewType() ViewType { return LoadingMoreView }

// NoMoreResultsItem is the trailing end-of-list row.
type NoMoreResultsItem struct{}

func (NoMoreResultsItem) ViewType() ViewType { return NoMoreResultsView }
