// Package store persists user profiles, hydro system registrations, and
// credential hashes for hydro-gateway.
//
// # Overview
//
// The store is the directory collaborator the auth services consult: it maps
// an email to a user record, a uuid to a system record, and either to a
// one-way password hash. Raw secrets are never stored, only bcrypt hashes
// produced by the callers.
//
// # SQLite
//
// SQLiteStore implements every store interface using modernc.org/sqlite
// (pure Go, no cgo). The schema is created on open, WAL mode is enabled for
// concurrent readers, and timestamps are persisted as RFC3339 strings.
//
// # Errors
//
// Lookups for missing rows return ErrNotFound. Callers in the auth layer
// normalize credential-path ErrNotFound into an invalid-credentials failure
// so identifier existence is never leaked.
package store
