// Package redis provides Redis-backed storage for searchflow snapshots.
//
// Each snapshot is stored as a JSON string under "{prefix}snapshot:{id}" and
// indexed in the set "{prefix}session:{session}:snapshots". Writes go through
// a MULTI/EXEC pipeline so the value and its index entry change together.
//
// # Basic Usage
//
//	s := redis.NewRedisSnapshotStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "searchflow:",
//		TTL:    24 * time.Hour,
//	})
//	defer s.Close()
//
//	cp := store.NewCheckpointer(s, "default")
//	restored, ok, err := cp.Restore(ctx)
//
// # TTL
//
// With a non-zero TTL both the snapshot and the session index expire. List
// skips index entries whose snapshot has already expired.
package redis
