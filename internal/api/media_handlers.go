package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/EpicTechAI/EpicChat/internal/media"
	"github.com/EpicTechAI/EpicChat/internal/models"
)

// mediaState is the playlist controller snapshot returned by GET /media.
type mediaState struct {
	Items    []media.Item   `json:"items"`
	Current  int            `json:"current"`
	State    media.State    `json:"state"`
	Volume   float64        `json:"volume"`
	Position float64        `json:"position"`
	Window   media.Position `json:"window"`
}

type mediaAddRequest struct {
	Name         string     `json:"name"`
	SourceHandle string     `json:"source_handle"`
	Kind         media.Kind `json:"kind"`
}

type mediaIndexRequest struct {
	Index int `json:"index"`
}

// mediaControlRequest carries one playback action: play, pause, complete,
// select, seek, volume, or window.
type mediaControlRequest struct {
	Action string          `json:"action"`
	Index  int             `json:"index,omitempty"`
	Seek   float64         `json:"seek,omitempty"`
	Volume float64         `json:"volume,omitempty"`
	Window *media.Position `json:"window,omitempty"`
}

func (s *Server) snapshotMedia() mediaState {
	return mediaState{
		Items:    s.media.Items(),
		Current:  s.media.CurrentIndex(),
		State:    s.media.PlaybackState(),
		Volume:   s.media.Volume(),
		Position: s.media.SeekPosition(),
		Window:   s.media.WindowPosition(),
	}
}

func (s *Server) mediaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		writeJSONResponse(w, http.StatusOK, models.Success(s.snapshotMedia()))
	case http.MethodPost:
		var req mediaAddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		item, err := s.media.Add(req.Name, req.SourceHandle, req.Kind)
		if err != nil {
			slog.Warn("Server.mediaHandler: add rejected", "name", req.Name, "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Info("Server.mediaHandler: item added", "id", item.ID, "kind", item.Kind)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Item added", item))
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) mediaRemoveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mediaIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.media.Remove(req.Index); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Item removed", s.snapshotMedia()))
}

func (s *Server) mediaControlHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mediaControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	var err error
	switch req.Action {
	case "play":
		err = s.media.Play()
	case "pause":
		s.media.Pause()
	case "complete":
		s.media.Complete()
	case "select":
		err = s.media.Select(req.Index)
	case "seek":
		s.media.Seek(req.Seek)
	case "volume":
		s.media.SetVolume(req.Volume)
	case "window":
		if req.Window == nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: window"))
			return
		}
		s.media.SetWindowPosition(*req.Window)
	default:
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown media action"))
		return
	}
	if err != nil {
		slog.Warn("Server.mediaControlHandler: action rejected", "action", req.Action, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.snapshotMedia()))
}
