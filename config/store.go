package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smallnest/searchflow/store"
	"github.com/smallnest/searchflow/store/file"
	"github.com/smallnest/searchflow/store/memory"
	"github.com/smallnest/searchflow/store/postgres"
	"github.com/smallnest/searchflow/store/redis"
	"github.com/smallnest/searchflow/store/sqlite"
)

// DefaultPath is the snapshot directory of the file backend when no path
// is set.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "searchflow", "snapshots")
}

// OpenStore builds the configured backend. The returned close function
// releases its connections and is never nil.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.SnapshotStore, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case BackendMemory:
		return memory.NewMemorySnapshotStore(), noop, nil

	case BackendFile, "":
		path := cfg.Path
		if path == "" {
			path = DefaultPath()
		}
		s, err := file.NewFileSnapshotStore(path)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case BackendRedis:
		s := redis.NewRedisSnapshotStore(redis.RedisOptions{
			Addr:   cfg.Addr,
			Prefix: cfg.Prefix,
		})
		return s, func() { _ = s.Close() }, nil

	case BackendSqlite:
		s, err := sqlite.NewSqliteSnapshotStore(sqlite.SqliteOptions{Path: cfg.Path})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case BackendPostgres:
		s, err := postgres.NewPostgresSnapshotStore(ctx, postgres.PostgresOptions{ConnString: cfg.DSN})
		if err != nil {
			return nil, noop, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// Checkpointer opens the configured store and binds it to the session.
func Checkpointer(ctx context.Context, cfg StoreConfig) (*store.Checkpointer, func(), error) {
	s, closeFn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}
	cp := store.NewCheckpointer(s, cfg.Session)
	cp.MaxSnapshots = cfg.MaxSnapshots
	return cp, closeFn, nil
}
