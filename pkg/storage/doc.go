// Package storage persists users and greeting history.
//
// Two backends implement Store:
//
//   - memory: maps guarded by a mutex, for tests and throwaway runs
//   - sqlite: a database/sql backend using either modernc.org/sqlite
//     (driver "sqlite", pure Go) or github.com/mattn/go-sqlite3 (driver
//     "sqlite3", cgo)
//
// Open picks the backend from config.StorageConfig. Every backend error is
// an *Error naming the backend and operation; missing rows and duplicate
// usernames unwrap to ErrNotFound and ErrDuplicate.
package storage
