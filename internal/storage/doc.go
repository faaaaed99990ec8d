// Package storage provides small key/value persistence backends.
//
// Drivers:
//   - "memory": process-local map, nothing survives a restart
//   - "file": a single JSON document rewritten atomically on every change
//   - "sqlite": a kv table in a SQLite database (modernc.org/sqlite, no cgo)
package storage
