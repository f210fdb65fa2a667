package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/smallnest/searchflow/store"
)

// FileSnapshotStore writes one JSON file per snapshot into a directory.
type FileSnapshotStore struct {
	mu   sync.RWMutex
	path string
}

var _ store.SnapshotStore = (*FileSnapshotStore)(nil)

// NewFileSnapshotStore creates the directory if needed.
func NewFileSnapshotStore(path string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSnapshotStore{path: path}, nil
}

// Path returns the snapshot directory.
func (f *FileSnapshotStore) Path() string {
	return f.path
}

func (f *FileSnapshotStore) filename(id string) string {
	return filepath.Join(f.path, id+".json")
}

// Save writes the snapshot atomically through a temporary file
func (f *FileSnapshotStore) Save(_ context.Context, snapshot *store.Snapshot) error {
	if snapshot.ID == "" || strings.ContainsAny(snapshot.ID, `/\`) {
		return fmt.Errorf("invalid snapshot id %q", snapshot.ID)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.path, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.filename(snapshot.ID)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID
func (f *FileSnapshotStore) Load(_ context.Context, snapshotID string) (*store.Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read(f.filename(snapshotID), snapshotID)
}

func (f *FileSnapshotStore) read(name, id string) (*store.Snapshot, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// List returns the snapshots of a session ordered by version
func (f *FileSnapshotStore) List(_ context.Context, sessionID string) ([]*store.Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var out []*store.Snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		snap, err := f.read(filepath.Join(f.path, name), strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		if snap.SessionID == sessionID {
			out = append(out, snap)
		}
	}
	store.SortByVersion(out)
	return out, nil
}

// Delete removes a snapshot
func (f *FileSnapshotStore) Delete(_ context.Context, snapshotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.filename(snapshotID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Clear removes all snapshots of a session
func (f *FileSnapshotStore) Clear(ctx context.Context, sessionID string) error {
	list, err := f.List(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, snap := range list {
		if err := f.Delete(ctx, snap.ID); err != nil {
			return err
		}
	}
	return nil
}
