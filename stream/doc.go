// Package stream provides Replay, a multi-subscriber broadcast that remembers
// its latest value.
//
// A subscriber that attaches late, or detaches and attaches again, first
// receives the latest value and then everything published afterwards, in
// order. Publishers are never blocked by slow subscribers; a subscriber
// that falls more than Config.BufferSize values behind loses the oldest
// ones, which Dropped reports.
//
//	states := stream.NewReplay[state.ViewState](stream.DefaultConfig())
//	sub := states.Subscribe()
//	defer sub.Unsubscribe()
//	for s := range sub.C() {
//		render(s)
//	}
package stream
