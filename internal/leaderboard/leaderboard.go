// internal/leaderboard/leaderboard.go
//
// Leaderboard store: an ordered, capped collection of winning rounds.
// Responsibilities:
//   - Validate and insert win entries (blank names rejected).
//   - Apply the deterministic ranking rule and the 50-entry cap.
//   - Persist/restore the collection through the storage collaborator as a
//     JSON array under a single key, best-effort in both directions.
//
// Persistence is never allowed to break gameplay: a missing or corrupt
// persisted value loads as an empty collection, and a failed save keeps the
// change in memory and logs a warning.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/guessnum/go-server/internal/game"
	"github.com/guessnum/go-server/internal/storage"
)

// storageKey is the single key holding the serialized collection.
const storageKey = "guessnum:leaderboard"

// maxEntries caps the collection after every insert.
const maxEntries = 50

// ErrEmptyName is returned by RecordWin when the trimmed player name is empty.
var ErrEmptyName = errors.New("player name is empty")

// Entry is a persisted record of one completed winning round.
// Immutable after creation. JSON field names are the wire format.
type Entry struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"playerName"`
	Difficulty game.Key  `json:"difficulty"`
	Attempts   int       `json:"attempts"`
	RangeMax   int       `json:"rangeMax"`
	DateISO    time.Time `json:"dateISO"`
}

// Store owns the leaderboard collection. The UI side only ever sees
// snapshot copies from Entries.
type Store struct {
	mu      sync.RWMutex
	kv      storage.Store
	entries []Entry

	now   func() time.Time // test seam
	newID func() string    // test seam
}

// New constructs a Store over the given storage collaborator.
// Call Load once at startup to restore the persisted collection.
func New(kv storage.Store) *Store {
	return &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load restores the collection from storage. Best-effort: a read failure,
// missing key, or unparseable value yields an empty collection and never an
// error to the caller.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	raw, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard load failed; starting empty")
		return
	}
	if !ok {
		return
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warn().Err(err).Msg("leaderboard data unreadable; starting empty")
		return
	}
	rank(entries)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	s.entries = entries
}

// Entries returns a read-only snapshot copy of the ranked collection.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// RecordWin inserts a new entry for a winning round, re-ranks, truncates to
// the cap, and persists the collection. The trimmed name must be non-empty;
// otherwise the collection is left unchanged and ErrEmptyName is returned.
// Persistence failure does not fail the record: the entry is kept in memory.
func (s *Store) RecordWin(ctx context.Context, name string, difficulty game.Key, attempts, rangeMax int) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}

	e := Entry{
		ID:         s.newID(),
		PlayerName: name,
		Difficulty: difficulty,
		Attempts:   attempts,
		RangeMax:   rangeMax,
		DateISO:    s.now().UTC(),
	}

	s.mu.Lock()
	s.entries = append([]Entry{e}, s.entries...)
	rank(s.entries)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[:maxEntries]
	}
	s.mu.Unlock()

	s.persist(ctx)
	return e, nil
}

// Clear empties the collection and removes the persisted key.
// Both steps are unconditional; the removal is best-effort.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, storageKey); err != nil {
		log.Warn().Err(err).Msg("leaderboard clear: remove persisted key")
	}
}

// persist serializes the collection to storage. Failure is logged, never
// surfaced: gameplay must remain usable with storage unavailable.
func (s *Store) persist(ctx context.Context) {
	s.mu.RLock()
	raw, err := json.Marshal(s.entries)
	s.mu.RUnlock()
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard marshal")
		return
	}
	if err := s.kv.Set(ctx, storageKey, string(raw)); err != nil {
		log.Warn().Err(err).Msg("leaderboard persist failed; change kept in memory")
	}
}

// rank sorts entries by the fixed ranking rule:
//  1. difficulty severity ascending (easy < medium < hard); easier wins
//     rank above harder ones regardless of attempts;
//  2. within a tier, fewer attempts first;
//  3. ties broken by more recent wins first.
func rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if sa, sb := game.Severity(a.Difficulty), game.Severity(b.Difficulty); sa != sb {
			return sa < sb
		}
		if a.Attempts != b.Attempts {
			return a.Attempts < b.Attempts
		}
		return a.DateISO.After(b.DateISO)
	})
}
