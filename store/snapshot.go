package store

import (
	"context"
	"errors"
	"time"

	"github.com/smallnest/searchflow/persist"
)

// ErrNotFound is wrapped by every backend when a snapshot ID is unknown.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one saved view state of a search session.
type Snapshot struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Record    *persist.Record `json:"record"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Version   int             `json:"version"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Record = s.Record.Clone()
	if s.Metadata != nil {
		c.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	// Save stores a snapshot, replacing one with the same ID
	Save(ctx context.Context, snapshot *Snapshot) error

	// Load retrieves a snapshot by ID
	Load(ctx context.Context, snapshotID string) (*Snapshot, error)

	// List returns all snapshots of a session ordered by ascending version
	List(ctx context.Context, sessionID string) ([]*Snapshot, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, snapshotID string) error

	// Clear removes all snapshots of a session
	Clear(ctx context.Context, sessionID string) error
}

// Latest returns the highest-version snapshot of a session, or nil when the
// session has none.
func Latest(ctx context.Context, s SnapshotStore, sessionID string) (*Snapshot, error) {
	list, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var latest *Snapshot
	for _, snap := range list {
		if latest == nil || snap.Version > latest.Version {
			latest = snap
		}
	}
	return latest, nil
}
