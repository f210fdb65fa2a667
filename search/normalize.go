package search

import (
	"context"
	"strings"
)

// Normalizer trims phrases and suppresses consecutive duplicates. The zero
// value is ready to use; it is not safe for concurrent use.
type Normalizer struct {
	last string
	seen bool
}

// Next returns the trimmed phrase and whether it differs from the
// previously accepted one.
func (n *Normalizer) Next(raw string) (string, bool) {
	phrase := strings.TrimSpace(raw)
	if n.seen && phrase == n.last {
		return "", false
	}
	n.last, n.seen = phrase, true
	return phrase, true
}

// Normalize applies a Normalizer to every phrase read from in. The
// returned channel is closed when in is closed or ctx is done.
func Normalize(ctx context.Context, in <-chan string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		var n Normalizer
		for {
			var raw string
			var ok bool
			select {
			case raw, ok = <-in:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}

			phrase, ok := n.Next(raw)
			if !ok {
				continue
			}

			select {
			case out <- phrase:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
