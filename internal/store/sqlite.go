// Package store provides storage backends for EpicChat persisted state.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/EpicTechAI/EpicChat/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a file-backed StateStore using mattn/go-sqlite3.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("store.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore migrations applied")

	return &SQLiteStore{db: db}, nil
}

// LoadState returns the value for key, with ok=false on a miss.
func (s *SQLiteStore) LoadState(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		slog.Error("SQLiteStore LoadState failed", "error", err, "key", key)
		return "", false, fmt.Errorf("failed to load state for %s: %w", key, err)
	}
	return value, true, nil
}

// SaveState stores the value for key, replacing any previous value.
func (s *SQLiteStore) SaveState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		slog.Error("SQLiteStore SaveState failed", "error", err, "key", key)
		return fmt.Errorf("failed to save state for %s: %w", key, err)
	}
	slog.Debug("SQLiteStore SaveState succeeded", "key", key)
	return nil
}

// DeleteState removes the value for key.
func (s *SQLiteStore) DeleteState(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, key)
	if err != nil {
		slog.Error("SQLiteStore DeleteState failed", "error", err, "key", key)
		return fmt.Errorf("failed to delete state for %s: %w", key, err)
	}
	return nil
}

// TopStreaks returns up to limit leaderboard entries, highest streak first.
func (s *SQLiteStore) TopStreaks(limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(`SELECT name, streak, emoji FROM leaderboard ORDER BY streak DESC, name ASC LIMIT ?`, limit)
	if err != nil {
		slog.Error("SQLiteStore TopStreaks query failed", "error", err)
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Streak, &e.Emoji); err != nil {
			slog.Error("SQLiteStore TopStreaks scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore TopStreaks rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate leaderboard rows: %w", err)
	}
	return entries, nil
}

// UpsertStreak records or updates a named streak on the leaderboard.
func (s *SQLiteStore) UpsertStreak(entry models.LeaderboardEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO leaderboard (name, streak, emoji, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET streak = excluded.streak, emoji = excluded.emoji, updated_at = CURRENT_TIMESTAMP`,
		entry.Name, entry.Streak, entry.Emoji)
	if err != nil {
		slog.Error("SQLiteStore UpsertStreak failed", "error", err, "name", entry.Name)
		return fmt.Errorf("failed to upsert streak for %s: %w", entry.Name, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
