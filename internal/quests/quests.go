// Package quests manages the rotating daily quest list.
//
// Three quests are drawn from the fixed catalog each calendar day and
// persisted keyed by the fixed storage key plus the local date, so a reload
// within the same day sees the same quests while a new day re-rolls them.
package quests

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/store"
)

// StorageKey is the fixed persisted-state key prefix for daily quests.
const StorageKey = "epic-daily-quests"

// DailyCount is how many quests are drawn per day.
const DailyCount = 3

// Quest is one daily challenge with its completion flag.
type Quest struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Reward string `json:"reward"`
	Done   bool   `json:"done"`
}

// Catalog returns the full quest catalog in declaration order.
func Catalog() []Quest {
	return []Quest{
		{ID: 1, Text: "Send a meme using /meme", Reward: "🎉"},
		{ID: 2, Text: "Win an emoji-battle", Reward: "🤖"},
		{ID: 3, Text: "Drop an image to the AI", Reward: "🖼️"},
		{ID: 4, Text: "Hit a 3-message streak!", Reward: "🔥"},
		{ID: 5, Text: "Try /joke or /quiz", Reward: "😹"},
	}
}

// dailySet is the persisted form: the local date plus the drawn quests.
type dailySet struct {
	Date   string  `json:"date"`
	Quests []Quest `json:"quests"`
}

// DateKey formats now as the local calendar date used in storage keys.
func DateKey(now time.Time) string {
	return now.Format("2006-01-02")
}

// Roll draws DailyCount shuffled quests from the catalog.
func Roll(rng *rand.Rand) []Quest {
	catalog := Catalog()
	if rng != nil {
		rng.Shuffle(len(catalog), func(i, j int) { catalog[i], catalog[j] = catalog[j], catalog[i] })
	} else {
		rand.Shuffle(len(catalog), func(i, j int) { catalog[i], catalog[j] = catalog[j], catalog[i] })
	}
	return catalog[:DailyCount]
}

// Manager owns today's quest set, persisted through the state store port.
type Manager struct {
	mu    sync.Mutex
	store store.StateStore
	rng   *rand.Rand
}

// NewManager creates a quest manager over the given store. rng may be nil
// to use the shared generator.
func NewManager(st store.StateStore, rng *rand.Rand) *Manager {
	return &Manager{store: st, rng: rng}
}

func (m *Manager) key(now time.Time) string {
	return StorageKey + ":" + DateKey(now)
}

// Today returns the quest set for now's local date, rolling and persisting
// a fresh set when none exists yet.
func (m *Manager) Today(now time.Time) ([]Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadOrRoll(now)
}

func (m *Manager) loadOrRoll(now time.Time) ([]Quest, error) {
	key := m.key(now)
	raw, ok, err := m.store.LoadState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily quests: %w", err)
	}
	if ok {
		var set dailySet
		if err := json.Unmarshal([]byte(raw), &set); err == nil && set.Date == DateKey(now) && len(set.Quests) > 0 {
			return set.Quests, nil
		}
		slog.Warn("quests.Manager: discarding stale or unreadable quest set", "key", key)
	}

	drawn := Roll(m.rng)
	if err := m.save(now, drawn); err != nil {
		return nil, err
	}
	slog.Info("quests.Manager: rolled fresh daily quests", "date", DateKey(now), "count", len(drawn))
	return drawn, nil
}

func (m *Manager) save(now time.Time, qs []Quest) error {
	raw, err := json.Marshal(dailySet{Date: DateKey(now), Quests: qs})
	if err != nil {
		return fmt.Errorf("failed to encode daily quests: %w", err)
	}
	if err := m.store.SaveState(m.key(now), string(raw)); err != nil {
		return fmt.Errorf("failed to persist daily quests: %w", err)
	}
	return nil
}

// Complete marks the quest at idx done for now's local date. Completing an
// already-done quest is a no-op. Returns the updated set.
func (m *Manager) Complete(now time.Time, idx int) ([]Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	qs, err := m.loadOrRoll(now)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(qs) {
		return nil, fmt.Errorf("quest index %d out of range", idx)
	}
	if qs[idx].Done {
		return qs, nil
	}
	qs[idx].Done = true
	if err := m.save(now, qs); err != nil {
		return nil, err
	}
	slog.Info("quests.Manager: quest completed", "date", DateKey(now), "quest", qs[idx].Text)
	return qs, nil
}

// Rotate rolls a fresh set for now's local date, replacing any existing
// set. Invoked by the daily scheduler at local midnight.
func (m *Manager) Rotate(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	drawn := Roll(m.rng)
	if err := m.save(now, drawn); err != nil {
		return err
	}
	slog.Info("quests.Manager: daily rotation complete", "date", DateKey(now))
	return nil
}
