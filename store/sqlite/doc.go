// Package sqlite provides SQLite-backed storage for searchflow snapshots
// using github.com/mattn/go-sqlite3.
//
//	s, err := sqlite.NewSqliteSnapshotStore(sqlite.SqliteOptions{
//		Path: "./snapshots.db",
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
// The table is created on open. Saving an existing ID replaces the row.
package sqlite
