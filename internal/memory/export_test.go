package memory

import "database/sql"

// DB exposes the internal *sql.DB for test helpers in memory_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetOpenDB swaps the database opener and returns a func restoring it.
func SetOpenDB(fn func(driver, dsn string) (*sql.DB, error)) (restore func()) {
	prev := openDB
	openDB = fn
	return func() { openDB = prev }
}
