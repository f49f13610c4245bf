// Package conversation provides the append-only turn log for EpicChat.
//
// The log is session-only state: it lives for the lifetime of one chat
// session and is never persisted. Ordering is enforced upstream by the
// dispatcher's single-outstanding-dispatch rule; the log guards itself with
// a mutex only because the HTTP surface reads it concurrently.
package conversation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/models"
	"github.com/google/uuid"
)

// Greeting is the fixed bot turn every new session starts with.
const Greeting = "Yo! I’m Epic Tech AI. Type, talk, /meme, drop images—let’s GO! 🔥"

// Log is an ordered, append-only record of exchanged turns.
type Log struct {
	mu    sync.RWMutex
	turns []models.Turn
}

// NewLog creates a log seeded with the fixed greeting turn.
func NewLog() *Log {
	l := &Log{}
	l.turns = append(l.turns, models.Turn{
		ID:        uuid.NewString(),
		Role:      models.RoleBot,
		Content:   Greeting,
		CreatedAt: time.Now(),
	})
	return l
}

// NewEmptyLog creates a log with no seeded turns.
func NewEmptyLog() *Log {
	return &Log{}
}

// NewTurn builds a turn with a fresh unique ID.
func NewTurn(role models.TurnRole, content string, origin models.Origin) models.Turn {
	return models.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Origin:    origin,
		CreatedAt: time.Now(),
	}
}

// Append adds a turn to the end of the log. Turns are immutable once
// appended and are never individually removed.
func (l *Log) Append(t models.Turn) error {
	if err := t.Validate(); err != nil {
		slog.Error("Log.Append: invalid turn rejected", "error", err)
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, t)
	slog.Debug("Log.Append: turn appended", "id", t.ID, "role", t.Role, "origin", t.Origin, "length", len(l.turns))
	return nil
}

// AppendExchange appends the user turn followed by the bot turn, never
// interleaved with another exchange.
func (l *Log) AppendExchange(user, bot models.Turn) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if err := bot.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, user, bot)
	slog.Debug("Log.AppendExchange: exchange appended", "userID", user.ID, "botID", bot.ID, "length", len(l.turns))
	return nil
}

// Turns returns a copy of all turns in append order.
func (l *Log) Turns() []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Window returns a copy of the most recent n turns in append order. It is a
// view of the log, not owned state.
func (l *Log) Window(n int) []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(l.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Turn, len(l.turns)-start)
	copy(out, l.turns[start:])
	return out
}

// Len returns the number of recorded turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
