// Package api provides HTTP handlers and the main API server logic for
// EpicChat.
//
// It exposes RESTful endpoints for chatting, command suggestions, the
// engagement streak, the leaderboard, and daily quests. The API
// integrates with the dispatch, commands, streak, quests, and store
// modules.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/commands"
	"github.com/EpicTechAI/EpicChat/internal/dispatch"
	"github.com/EpicTechAI/EpicChat/internal/media"
	"github.com/EpicTechAI/EpicChat/internal/quests"
	"github.com/EpicTechAI/EpicChat/internal/store"
	"github.com/EpicTechAI/EpicChat/internal/streak"
)

// Server timeouts.
const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr       string
	Dispatcher *dispatch.Dispatcher
	Table      *commands.Table
	Tracker    *streak.Tracker
	Quests     *quests.Manager
	Store      store.StateStore
	Media      *media.Controller
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithDispatcher sets the turn dispatcher.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(o *Opts) { o.Dispatcher = d }
}

// WithTable sets the command table backing the suggestion endpoint.
func WithTable(t *commands.Table) Option {
	return func(o *Opts) { o.Table = t }
}

// WithTracker sets the engagement tracker.
func WithTracker(t *streak.Tracker) Option {
	return func(o *Opts) { o.Tracker = t }
}

// WithQuests sets the daily quest manager.
func WithQuests(m *quests.Manager) Option {
	return func(o *Opts) { o.Quests = m }
}

// WithStore sets the state store backing the leaderboard.
func WithStore(st store.StateStore) Option {
	return func(o *Opts) { o.Store = st }
}

// WithMedia sets the playlist controller.
func WithMedia(c *media.Controller) Option {
	return func(o *Opts) { o.Media = c }
}

// Server holds the wired modules behind the HTTP surface.
type Server struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	table      *commands.Table
	tracker    *streak.Tracker
	quests     *quests.Manager
	store      store.StateStore
	media      *media.Controller
}

// NewServer creates an API server. The dispatcher is required; the other
// modules are optional and their endpoints return 503 when absent.
func NewServer(opts ...Option) (*Server, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher must be provided")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Table == nil {
		cfg.Table = commands.DefaultTable()
	}
	if cfg.Media == nil {
		cfg.Media = media.NewController()
	}
	return &Server{
		addr:       cfg.Addr,
		dispatcher: cfg.Dispatcher,
		table:      cfg.Table,
		tracker:    cfg.Tracker,
		quests:     cfg.Quests,
		store:      cfg.Store,
		media:      cfg.Media,
	}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/history", s.historyHandler)
	mux.HandleFunc("/mode", s.modeHandler)
	mux.HandleFunc("/suggestions", s.suggestionsHandler)
	mux.HandleFunc("/streak", s.streakHandler)
	mux.HandleFunc("/leaderboard", s.leaderboardHandler)
	mux.HandleFunc("/quests", s.questsHandler)
	mux.HandleFunc("/quests/complete", s.questCompleteHandler)
	mux.HandleFunc("/media", s.mediaHandler)
	mux.HandleFunc("/media/remove", s.mediaRemoveHandler)
	mux.HandleFunc("/media/control", s.mediaControlHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: EpicChat API listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	slog.Info("Server.Run: API server stopped")
	return nil
}
