package paging

import (
	"errors"
	"fmt"
)

// DefaultDistanceTrigger fires once the last row becomes visible.
const DefaultDistanceTrigger = 1

// ErrNegativeDistance is returned for a distance trigger below zero.
var ErrNegativeDistance = errors.New("paging: distance trigger must be >= 0")

// EdgeDetector decides from scroll geometry whether the list is close
// enough to its end to ask for another page.
type EdgeDetector struct {
	// DistanceTrigger is how many rows before the end the signal fires.
	DistanceTrigger int
}

// NewEdgeDetector validates distance and returns a detector.
func NewEdgeDetector(distance int) (*EdgeDetector, error) {
	if distance < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDistance, distance)
	}
	return &EdgeDetector{DistanceTrigger: distance}, nil
}

// Reached reports whether at most DistanceTrigger rows remain below the
// visible window. total is the row count, firstVisible the index of the
// first visible row and visible the number of visible rows.
func (d *EdgeDetector) Reached(total, firstVisible, visible int) bool {
	return total-firstVisible-visible <= d.DistanceTrigger
}
