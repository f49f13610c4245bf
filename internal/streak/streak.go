// Package streak derives the engagement streak counter from elapsed time
// since the last qualifying turn.
//
// The update rule is a pure function of (state, now); persistence goes
// through an injected store port rather than ambient storage so the tracker
// is testable without a real backend. The count never decreases: a missed
// cooldown window stops increments but does not reset.
package streak

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/store"
)

// Cooldown is the minimum elapsed time between qualifying turns.
const Cooldown = time.Hour

// StorageKey is the fixed persisted-state key for streak state.
const StorageKey = "epic-streak"

// Badge thresholds from the chat header.
const (
	goldThreshold   = 7
	silverThreshold = 3
)

// State is the streak counter plus the instant of the last qualifying turn.
type State struct {
	Count          int       `json:"count"`
	LastQualifying time.Time `json:"last_qualifying"`
}

// NewState returns the initial streak state: count 1, anchored at now.
func NewState(now time.Time) State {
	return State{Count: 1, LastQualifying: now}
}

// Update applies the streak rule: if now is more than a cooldown past the
// last qualifying instant, the count increments and the anchor moves to
// now; otherwise the state is returned unchanged. Idempotent for any now
// within the cooldown window.
func Update(s State, now time.Time) State {
	if s.Count < 1 {
		return NewState(now)
	}
	if now.Sub(s.LastQualifying) > Cooldown {
		return State{Count: s.Count + 1, LastQualifying: now}
	}
	return s
}

// Badge returns the header badge text for a streak count, or "" below the
// silver threshold.
func Badge(count int) string {
	switch {
	case count >= goldThreshold:
		return fmt.Sprintf("🔥 EPIC STREAK %d!", count)
	case count >= silverThreshold:
		return fmt.Sprintf("💥 Streak %d", count)
	default:
		return ""
	}
}

// Tracker owns the persisted streak state. Mutated only on successful
// AI-path turns; command-table and alternate-bot turns do not qualify.
type Tracker struct {
	mu    sync.Mutex
	store store.StateStore
	state State
}

// NewTracker loads streak state from the store, initializing it when absent
// or unreadable.
func NewTracker(st store.StateStore, now time.Time) (*Tracker, error) {
	t := &Tracker{store: st, state: NewState(now)}
	raw, ok, err := st.LoadState(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak state: %w", err)
	}
	if ok {
		var loaded State
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			slog.Warn("streak.NewTracker: discarding unreadable streak state", "error", err)
		} else if loaded.Count >= 1 {
			t.state = loaded
		}
	}
	slog.Debug("streak.NewTracker: tracker ready", "count", t.state.Count, "last_qualifying", t.state.LastQualifying)
	return t, nil
}

// State returns the current streak state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RecordQualifyingTurn applies the streak rule at now and persists the
// state when it changed. Returns the resulting state.
func (t *Tracker) RecordQualifyingTurn(now time.Time) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Update(t.state, now)
	if next == t.state {
		return t.state, nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return t.state, fmt.Errorf("failed to encode streak state: %w", err)
	}
	if err := t.store.SaveState(StorageKey, string(raw)); err != nil {
		slog.Error("Tracker.RecordQualifyingTurn: failed to persist streak", "error", err)
		return t.state, err
	}
	t.state = next
	slog.Info("Tracker.RecordQualifyingTurn: streak advanced", "count", next.Count)
	return next, nil
}
