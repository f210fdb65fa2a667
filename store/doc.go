// Package store persists search view states as versioned snapshots.
//
// A Snapshot wraps a persist.Record with the session it belongs to, a
// monotonically increasing version and a little metadata (phrase, status,
// number of profiles) so that listings can be shown without decoding the
// record.
//
// Backends implement SnapshotStore:
//
//	type SnapshotStore interface {
//	    Save(ctx context.Context, snapshot *Snapshot) error
//	    Load(ctx context.Context, snapshotID string) (*Snapshot, error)
//	    List(ctx context.Context, sessionID string) ([]*Snapshot, error)
//	    Delete(ctx context.Context, snapshotID string) error
//	    Clear(ctx context.Context, sessionID string) error
//	}
//
// Available implementations:
//   - store/memory: in-process map, for tests and one-shot runs
//   - store/file: one JSON document on disk
//   - store/redis: go-redis with a per-session index set and optional TTL
//   - store/sqlite: go-sqlite3 through database/sql
//   - store/postgres: pgx connection pool with JSONB columns
//
// Checkpointer sits on top of a store and handles one session: Save assigns
// the next version and prunes old snapshots, Restore decodes the latest one,
// and Watch saves each idle state coming out of the orchestrator.
//
//	cp := store.NewCheckpointer(memory.NewMemorySnapshotStore(), "default")
//	vs, ok, err := cp.Restore(ctx)
//	if errors.Is(err, persist.ErrCorrupt) {
//	    // refuse to start
//	}
package store
