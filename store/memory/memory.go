package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallnest/searchflow/store"
)

// MemorySnapshotStore keeps snapshots in process memory.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*store.Snapshot
}

var _ store.SnapshotStore = (*MemorySnapshotStore)(nil)

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[string]*store.Snapshot)}
}

// Save stores a copy of snapshot
func (m *MemorySnapshotStore) Save(_ context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.ID] = snapshot.Clone()
	return nil
}

// Load retrieves a snapshot by ID
func (m *MemorySnapshotStore) Load(_ context.Context, snapshotID string) (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[snapshotID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, snapshotID)
	}
	return snap.Clone(), nil
}

// List returns the snapshots of a session ordered by version
func (m *MemorySnapshotStore) List(_ context.Context, sessionID string) ([]*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*store.Snapshot
	for _, snap := range m.snapshots {
		if snap.SessionID == sessionID {
			out = append(out, snap.Clone())
		}
	}
	store.SortByVersion(out)
	return out, nil
}

// Delete removes a snapshot
func (m *MemorySnapshotStore) Delete(_ context.Context, snapshotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, snapshotID)
	return nil
}

// Clear removes all snapshots of a session
func (m *MemorySnapshotStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, snap := range m.snapshots {
		if snap.SessionID == sessionID {
			delete(m.snapshots, id)
		}
	}
	return nil
}
