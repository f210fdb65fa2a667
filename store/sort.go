package store

import (
	"cmp"
	"slices"
)

// SortByVersion orders snapshots by ascending version, then timestamp.
func SortByVersion(snapshots []*Snapshot) {
	slices.SortStableFunc(snapshots, func(a, b *Snapshot) int {
		if c := cmp.Compare(a.Version, b.Version); c != 0 {
			return c
		}
		return a.Timestamp.Compare(b.Timestamp)
	})
}
