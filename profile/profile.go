package profile

import (
	"context"
	"errors"
	"fmt"
)

// Profile is one search hit. Values are compared field by field.
type Profile struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// String returns the profile name, which is what list logging shows.
func (p Profile) String() string {
	return p.Name
}

// Client fetches one page of profiles matching keyword.
//
// Pages are 1-based. A client must not retry internally: whatever a single
// call resolves to is final. An empty slice with a nil error means the page
// is past the end of the result set.
type Client interface {
	Search(ctx context.Context, keyword string, page, limit int) ([]Profile, error)
}

// ClientFunc adapts an ordinary function to the Client interface.
type ClientFunc func(ctx context.Context, keyword string, page, limit int) ([]Profile, error)

// Search calls f.
func (f ClientFunc) Search(ctx context.Context, keyword string, page, limit int) ([]Profile, error) {
	return f(ctx, keyword, page, limit)
}

var (
	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("profile: page must be positive")
	// ErrInvalidLimit is returned for page sizes below 1.
	ErrInvalidLimit = errors.New("profile: limit must be positive")
)

// SupportedLimits lists the page sizes the profile backend honors.
var SupportedLimits = []int{10, 20, 50}

// validate checks the page arguments shared by all clients.
func validate(page, limit int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if limit < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

// Names returns the names of profiles, in order.
func Names(profiles []Profile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
