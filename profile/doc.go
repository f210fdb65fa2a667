// Package profile defines the Profile value and the Client contract used to
// fetch pages of search results.
//
// Two clients are provided. HTTPClient scrapes the HTML search page of the
// profile site with goquery and sanitizes every text field with bluemonday.
// FixtureClient serves a deterministic generated data set.
//
//	c := profile.NewHTTPClient(
//		profile.WithEndpoint("https://buddyschool.com"),
//		profile.WithRateLimit(2, 1),
//	)
//	page, err := c.Search(ctx, "alice", 1, 10)
//
// Clients never retry. A failed call is reported once and the caller decides
// what to do next.
package profile
