// Package store provides storage backends for EpicChat persisted state.
//
// Only streak state, daily-quest completion, and the streak leaderboard are
// persisted; conversation turns and the media playlist are session-only and
// never reach a store. Backends: in-memory (tests, default), SQLite, and
// PostgreSQL.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/EpicTechAI/EpicChat/internal/models"
)

// StateStore is the persisted-state port injected into the engagement
// tracker and quest manager. Values are opaque strings keyed by a fixed
// storage key (callers add the calendar-date suffix where applicable).
type StateStore interface {
	// LoadState returns the value for key, with ok=false on a miss.
	LoadState(key string) (value string, ok bool, err error)

	// SaveState stores the value for key, replacing any previous value.
	SaveState(key, value string) error

	// DeleteState removes the value for key. Deleting a missing key is not an error.
	DeleteState(key string) error

	// TopStreaks returns up to limit leaderboard entries, highest streak first.
	TopStreaks(limit int) ([]models.LeaderboardEntry, error)

	// UpsertStreak records or updates a named streak on the leaderboard.
	UpsertStreak(entry models.LeaderboardEntry) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for persistent store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for a store backend.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite3" so callers can
// pick a backend without a separate driver flag.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// InMemoryStore is a non-durable StateStore used in tests and as the
// default when no DSN is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	state  map[string]string
	boards map[string]models.LeaderboardEntry
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		state:  make(map[string]string),
		boards: make(map[string]models.LeaderboardEntry),
	}
}

// LoadState returns the value for key, with ok=false on a miss.
func (s *InMemoryStore) LoadState(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok, nil
}

// SaveState stores the value for key.
func (s *InMemoryStore) SaveState(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
	return nil
}

// DeleteState removes the value for key.
func (s *InMemoryStore) DeleteState(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, key)
	return nil
}

// TopStreaks returns leaderboard entries, highest streak first.
func (s *InMemoryStore) TopStreaks(limit int) ([]models.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LeaderboardEntry, 0, len(s.boards))
	for _, e := range s.boards {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertStreak records or updates a named streak.
func (s *InMemoryStore) UpsertStreak(entry models.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[entry.Name] = entry
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
