// Package store provides storage backends for EpicChat persisted state.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/EpicTechAI/EpicChat/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a PostgreSQL-backed StateStore using lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("store.NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore migrations applied")

	return &PostgresStore{db: db}, nil
}

// LoadState returns the value for key, with ok=false on a miss.
func (s *PostgresStore) LoadState(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		slog.Error("PostgresStore LoadState failed", "error", err, "key", key)
		return "", false, fmt.Errorf("failed to load state for %s: %w", key, err)
	}
	return value, true, nil
}

// SaveState stores the value for key, replacing any previous value.
func (s *PostgresStore) SaveState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		slog.Error("PostgresStore SaveState failed", "error", err, "key", key)
		return fmt.Errorf("failed to save state for %s: %w", key, err)
	}
	return nil
}

// DeleteState removes the value for key.
func (s *PostgresStore) DeleteState(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE key = $1`, key)
	if err != nil {
		slog.Error("PostgresStore DeleteState failed", "error", err, "key", key)
		return fmt.Errorf("failed to delete state for %s: %w", key, err)
	}
	return nil
}

// TopStreaks returns up to limit leaderboard entries, highest streak first.
func (s *PostgresStore) TopStreaks(limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(`SELECT name, streak, emoji FROM leaderboard ORDER BY streak DESC, name ASC LIMIT $1`, limit)
	if err != nil {
		slog.Error("PostgresStore TopStreaks query failed", "error", err)
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Streak, &e.Emoji); err != nil {
			slog.Error("PostgresStore TopStreaks scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore TopStreaks rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate leaderboard rows: %w", err)
	}
	return entries, nil
}

// UpsertStreak records or updates a named streak on the leaderboard.
func (s *PostgresStore) UpsertStreak(entry models.LeaderboardEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO leaderboard (name, streak, emoji, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (name) DO UPDATE SET streak = EXCLUDED.streak, emoji = EXCLUDED.emoji, updated_at = NOW()`,
		entry.Name, entry.Streak, entry.Emoji)
	if err != nil {
		slog.Error("PostgresStore UpsertStreak failed", "error", err, "name", entry.Name)
		return fmt.Errorf("failed to upsert streak for %s: %w", entry.Name, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
