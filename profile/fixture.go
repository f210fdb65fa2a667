package profile

import (
	"context"
	"fmt"
	"strings"
)

var fixtureNames = []string{"Alice", "Bob", "Charlie", "Dan", "Eve"}

// FixtureClient serves a generated, in-memory profile set. It is used by
// tests and by the CLI's offline mode.
type FixtureClient struct {
	// PageSize is the number of profiles returned per page regardless of
	// the requested limit.
	PageSize int

	profiles []Profile
}

var _ Client = (*FixtureClient)(nil)

// NewFixtureClient generates count profiles. Profile i (1-based) is named
// after fixtureNames[(i-1)%5] followed by i/5+1, so searching "alice"
// yields "Alice 1", "Alice 2", ... in order.
func NewFixtureClient(count int) *FixtureClient {
	profiles := make([]Profile, 0, count)
	for i := 1; i <= count; i++ {
		name := fmt.Sprintf("%s %d", fixtureNames[(i-1)%len(fixtureNames)], i/len(fixtureNames)+1)
		profiles = append(profiles, Profile{
			Name:  name,
			Title: fmt.Sprintf("Profile #%d", i),
			Link:  fmt.Sprintf("/profile/%d", i),
		})
	}
	return &FixtureClient{PageSize: 5, profiles: profiles}
}

// Search filters by case-insensitive substring match on the name.
func (c *FixtureClient) Search(ctx context.Context, keyword string, page, limit int) ([]Profile, error) {
	if err := validate(page, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	var matched []Profile
	for _, p := range c.profiles {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matched = append(matched, p)
		}
	}

	start := (page - 1) * c.PageSize
	if start >= len(matched) {
		return []Profile{}, nil
	}
	end := min(start+c.PageSize, len(matched))
	out := make([]Profile, end-start)
	copy(out, matched[start:end])
	return out, nil
}
