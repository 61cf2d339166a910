// internal/storage/storage.go
//
// Opaque key-value storage collaborator used for on-device persistence.
// The rest of the server treats it as an async get/set/remove interface;
// callers decide what failures mean (the leaderboard treats them all as
// best-effort).

package storage

import "context"

// Store is the persistence interface for string-keyed string values.
// Implementations may be backed by SQLite (sqlite.go), memory (memory.go),
// or any other durable medium.
type Store interface {
	// Get reads the value for key. The bool reports whether the key exists;
	// a missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
