// Package persist converts a view state to and from a flat Record so it can
// survive process death.
//
// The record layout is fixed:
//
//	version        "1"
//	searchPhrase   string, absent when nothing was saved
//	loadingStatus  IDLE_TERMINAL | IDLE_LOADABLE | LOADING_FRESH | LOADING_MORE
//	error          optional error message
//	names          []string
//	titles         []string, same length as names
//	links          []string, same length as names
//
// Deserialize downgrades in-flight statuses to IDLE_LOADABLE, because the
// fetch they describe is gone after a restart. A record whose profile
// columns disagree in length is corrupt; Deserialize reports ErrCorrupt
// and MustDeserialize panics.
package persist
