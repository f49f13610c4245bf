// Package api provides HTTP handlers for EpicChat endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/dispatch"
	"github.com/EpicTechAI/EpicChat/internal/models"
	"github.com/EpicTechAI/EpicChat/internal/streak"
)

// chatRequest is one user submission. Input carries the raw text
// (commands included); ImagePayload is base64-encoded opaque bytes
// forwarded untouched.
type chatRequest struct {
	Input         string `json:"input"`
	ImageAttached bool   `json:"image_attached,omitempty"`
	ImagePayload  []byte `json:"image_payload,omitempty"`
}

// chatResult is the bot side of the exchange plus the updated streak.
type chatResult struct {
	Reply  models.Turn `json:"reply"`
	Streak int         `json:"streak,omitempty"`
	Badge  string      `json:"badge,omitempty"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatHandler: processing chat request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.chatHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	in, err := models.ParseInput(req.Input)
	if err != nil {
		slog.Warn("Server.chatHandler: input rejected", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if in.Kind == models.InputKindFreeform {
		in.ImageAttached = req.ImageAttached
		in.ImagePayload = req.ImagePayload
	}

	bot, err := s.dispatcher.Dispatch(r.Context(), in)
	if err != nil {
		if errors.Is(err, dispatch.ErrDispatchInFlight) {
			slog.Warn("Server.chatHandler: dispatch already in flight")
			writeJSONResponse(w, http.StatusConflict, models.Error("A dispatch is already in flight"))
			return
		}
		slog.Error("Server.chatHandler: dispatch failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to dispatch turn"))
		return
	}

	result := chatResult{Reply: bot}
	if s.tracker != nil {
		st := s.tracker.State()
		result.Streak = st.Count
		result.Badge = streak.Badge(st.Count)
	}
	slog.Info("Server.chatHandler: exchange complete", "origin", bot.Origin, "failed", bot.Failed)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.dispatcher.Log().Turns()))
}

type modeRequest struct {
	Mode models.BotMode `json:"mode"`
}

func (s *Server) modeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]models.BotMode{"mode": s.dispatcher.Mode()}))
	case http.MethodPost:
		var req modeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if err := s.dispatcher.SetMode(req.Mode); err != nil {
			slog.Warn("Server.modeHandler: mode rejected", "mode", req.Mode, "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Mode updated", map[string]models.BotMode{"mode": s.dispatcher.Mode()}))
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required parameter: prefix"))
		return
	}
	suggestions := s.table.Suggest(prefix)
	slog.Debug("Server.suggestionsHandler: computed suggestions", "prefix", prefix, "count", len(suggestions))
	writeJSONResponse(w, http.StatusOK, models.Success(suggestions))
}

// streakResult is the persisted engagement streak with its badge.
type streakResult struct {
	Count          int       `json:"count"`
	Badge          string    `json:"badge,omitempty"`
	LastQualifying time.Time `json:"last_qualifying"`
}

func (s *Server) streakHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.tracker == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Streak tracking not configured"))
		return
	}
	st := s.tracker.State()
	writeJSONResponse(w, http.StatusOK, models.Success(streakResult{
		Count:          st.Count,
		Badge:          streak.Badge(st.Count),
		LastQualifying: st.LastQualifying,
	}))
}

func (s *Server) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if s.store == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Leaderboard not configured"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid limit parameter"))
				return
			}
			limit = n
		}
		entries, err := s.store.TopStreaks(limit)
		if err != nil {
			slog.Error("Server.leaderboardHandler: failed to load leaderboard", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load leaderboard"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(entries))
	case http.MethodPost:
		var entry models.LeaderboardEntry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if entry.Name == "" {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: name"))
			return
		}
		if entry.Streak < 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Streak cannot be negative"))
			return
		}
		if err := s.store.UpsertStreak(entry); err != nil {
			slog.Error("Server.leaderboardHandler: failed to upsert entry", "name", entry.Name, "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save leaderboard entry"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Leaderboard entry saved", nil))
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) questsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.quests == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Quests not configured"))
		return
	}
	qs, err := s.quests.Today(time.Now())
	if err != nil {
		slog.Error("Server.questsHandler: failed to load quests", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load daily quests"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(qs))
}

type questCompleteRequest struct {
	Index int `json:"index"`
}

func (s *Server) questCompleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.quests == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Quests not configured"))
		return
	}
	var req questCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	qs, err := s.quests.Complete(time.Now(), req.Index)
	if err != nil {
		slog.Warn("Server.questCompleteHandler: completion rejected", "index", req.Index, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Quest completed", qs))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("EpicChat API is healthy", nil))
}
