package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/persist"
	"github.com/smallnest/searchflow/state"
)

// DefaultMaxSnapshots is how many snapshots a session keeps by default.
const DefaultMaxSnapshots = 10

// Checkpointer saves and restores the view state of one session.
type Checkpointer struct {
	Store     SnapshotStore
	SessionID string
	// MaxSnapshots bounds the snapshots kept per session; older ones are
	// deleted after each save. Zero or less keeps everything.
	MaxSnapshots int
	Logger       log.Logger
}

// NewCheckpointer creates a checkpointer with DefaultMaxSnapshots.
func NewCheckpointer(s SnapshotStore, sessionID string) *Checkpointer {
	return &Checkpointer{
		Store:        s,
		SessionID:    sessionID,
		MaxSnapshots: DefaultMaxSnapshots,
		Logger:       log.GetDefaultLogger(),
	}
}

// Save stores vs as the next version of the session.
func (c *Checkpointer) Save(ctx context.Context, vs state.ViewState) (*Snapshot, error) {
	snapshots, err := c.Store.List(ctx, c.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	version := 1
	for _, s := range snapshots {
		if s.Version >= version {
			version = s.Version + 1
		}
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		SessionID: c.SessionID,
		Record:    persist.Serialize(vs),
		Metadata: map[string]any{
			"phrase":   vs.Phrase,
			"status":   vs.Status.String(),
			"profiles": len(vs.Profiles),
		},
		Timestamp: time.Now().UTC(),
		Version:   version,
	}
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	c.logger().Debug("saved snapshot %s v%d of session %s", snap.ID, snap.Version, c.SessionID)

	if c.MaxSnapshots > 0 {
		snapshots = append(snapshots, snap)
		if excess := len(snapshots) - c.MaxSnapshots; excess > 0 {
			for _, old := range oldest(snapshots, excess) {
				if err := c.Store.Delete(ctx, old.ID); err != nil {
					return snap, fmt.Errorf("failed to prune snapshot %s: %w", old.ID, err)
				}
			}
		}
	}
	return snap, nil
}

// Restore returns the latest saved state of the session. It returns false
// when the session has no snapshot. A snapshot that cannot be deserialized
// yields an error wrapping persist.ErrCorrupt.
func (c *Checkpointer) Restore(ctx context.Context) (state.ViewState, bool, error) {
	snap, err := Latest(ctx, c.Store, c.SessionID)
	if err != nil {
		return state.ViewState{}, false, err
	}
	if snap == nil {
		return state.ViewState{}, false, nil
	}
	vs, ok, err := persist.Deserialize(snap.Record)
	if err != nil {
		return state.ViewState{}, false, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	if ok {
		c.logger().Info("restored session %s from snapshot v%d", c.SessionID, snap.Version)
	}
	return vs, ok, nil
}

// Watch saves every idle state received from states until the channel is
// closed or ctx is done. Consecutive equal states are saved once.
func (c *Checkpointer) Watch(ctx context.Context, states <-chan state.ViewState) error {
	var last *state.ViewState
	for {
		select {
		case <-ctx.Done():
			return nil
		case vs, ok := <-states:
			if !ok {
				return nil
			}
			if !vs.Status.Idle() || (last != nil && last.Equal(vs)) {
				continue
			}
			if _, err := c.Save(ctx, vs); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			last = &vs
		}
	}
}

func (c *Checkpointer) logger() log.Logger {
	if c.Logger == nil {
		return log.GetDefaultLogger()
	}
	return c.Logger
}

// oldest returns the n lowest-version snapshots.
func oldest(snapshots []*Snapshot, n int) []*Snapshot {
	sorted := append([]*Snapshot{}, snapshots...)
	SortByVersion(sorted)
	return sorted[:n]
}
