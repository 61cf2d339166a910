// internal/session/session.go
//
// In-memory store for active and recently finished rounds.
// This is a lightweight persistence layer for ephemeral round sessions;
// the leaderboard is the only durable state, so rounds never touch disk.
//
// Characteristics:
//   - Stores Handle values (round snapshot + its owning session) keyed by
//     round ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing round IDs on Get().

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/guessnum/go-server/internal/game"
)

// ErrNotFound reports a round ID with no stored handle.
var ErrNotFound = errors.New("round not found")

// Handle couples a round snapshot with the session that owns it.
// Recorded flips once the round's win has been written to the leaderboard,
// so a win can never be submitted twice.
type Handle struct {
	Round    game.Round
	Owner    string // session ID that started the round
	Recorded bool
}

// Store defines the persistence interface for round sessions.
type Store interface {
	// Save persists or updates a round handle.
	Save(ctx context.Context, h Handle) error

	// Get retrieves a handle by round ID.
	// Returns ErrNotFound if the round is unknown.
	Get(ctx context.Context, id string) (Handle, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex      // guards rounds map
	rounds map[string]Handle // keyed by Round.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]Handle)}
}

// Save adds or updates the handle in the map.
func (m *memory) Save(ctx context.Context, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[h.Round.ID] = h
	return nil
}

// Get looks up a handle by round ID.
func (m *memory) Get(ctx context.Context, id string) (Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.rounds[id]; ok {
		return h, nil
	}
	return Handle{}, ErrNotFound
}
