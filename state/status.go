package state

import "fmt"

// LoadingStatus says whether a fetch is in flight and whether more pages
// can be requested.
type LoadingStatus int

const (
	// IdleTerminal: not loading and nothing more can be loaded.
	IdleTerminal LoadingStatus = iota
	// IdleLoadable: not loading, more pages may be requested.
	IdleLoadable
	// LoadingFresh: the first page of a new search is in flight.
	LoadingFresh
	// LoadingMore: an additional page is in flight.
	LoadingMore
)

var statusNames = [...]string{
	IdleTerminal: "IDLE_TERMINAL",
	IdleLoadable: "IDLE_LOADABLE",
	LoadingFresh: "LOADING_FRESH",
	LoadingMore:  "LOADING_MORE",
}

// String returns the stable name used by persistence.
func (s LoadingStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("LoadingStatus(%d)", int(s))
	}
	return statusNames[s]
}

// Loading reports whether a fetch is in flight.
func (s LoadingStatus) Loading() bool {
	return s == LoadingFresh || s == LoadingMore
}

// Idle reports whether no fetch is in flight.
func (s LoadingStatus) Idle() bool {
	return s == IdleTerminal || s == IdleLoadable
}

// ParseLoadingStatus is the inverse of String. Unknown names are an error.
func ParseLoadingStatus(s string) (LoadingStatus, error) {
	for i, name := range statusNames {
		if name == s {
			return LoadingStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown loading status %q", s)
}
