// Package searchflow is an incremental, paginated, cancellable profile search.
//
// A stream of search phrases and a stream of "list end reached" signals go
// in; a stream of complete view states comes out. Every phrase replaces the
// previous search, an empty phrase clears it, and every end signal loads
// the next page of the current search unless a fetch is already in flight
// or the results are exhausted.
//
// # Packages
//
//   - profile: the search client contract, an HTML client for the remote
//     service and an in-memory fixture client
//   - state: loading statuses, the sealed set of partial states and the
//     pure Fold that turns them into view states
//   - paging: the per-phrase page counter with its autoload gate, and the
//     scroll-geometry edge detector
//   - stream: a replay-latest broadcast used to publish view states
//   - search: the orchestrator that sequences fetches, cancels stale ones
//     and folds results, plus phrase normalization and Prometheus metrics
//   - persist: a flat, versioned record format for saving a view state
//   - store: versioned snapshots of records with memory, file, redis,
//     sqlite and postgres backends, and a Checkpointer per session
//   - config: YAML configuration with validation
//   - log: the leveled logger used by every package
//
// # Quick Start
//
//	client := profile.NewHTTPClient(profile.WithEndpoint("https://buddyschool.com"))
//	orch := search.New(client, search.WithPageLimit(10))
//
//	sub := orch.Subscribe()
//	go func() {
//		for vs := range sub.C() {
//			fmt.Println(vs)
//		}
//	}()
//
//	phrases := make(chan string)
//	edges := make(chan struct{})
//	go func() {
//		phrases <- "alice"
//		edges <- struct{}{}
//	}()
//	_ = orch.Run(ctx, search.Normalize(ctx, phrases), edges)
//	orch.Close()
//
// The searchflow command in cmd/searchflow wires all of this to a terminal.
package searchflow
