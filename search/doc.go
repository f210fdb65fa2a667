// Package search sequences an incremental, paginated search.
//
// An Orchestrator consumes two inputs: a channel of search phrases and a
// channel of end-of-list signals. For every new phrase it cancels the
// active search, publishes a loading state and fetches page 1; every
// accepted signal fetches one more page. Results are folded with
// state.Fold and published to subscribers as complete view states.
//
//	orch := search.New(client, search.WithLogger(logger))
//	sub := orch.Subscribe()
//	go render(sub.C())
//	err := orch.Run(ctx, search.Normalize(ctx, input), edges)
//
// # Cancellation
//
// Each phrase activation gets a session token and its own context. A new
// phrase cancels the previous context, and any result that still arrives
// for an old token is discarded without being folded. An empty phrase
// clears the screen.
//
// # Pagination
//
// At most one fetch is in flight per search. End-of-list signals are
// ignored while a fetch is pending, after the last page, and after a
// failure. Failures are never retried; typing a new phrase starts over.
//
// # Metrics
//
// NewMetrics registers request, outcome, cancellation and latency
// collectors on a Prometheus registerer. Pass them with WithMetrics.
package search
