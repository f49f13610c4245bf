package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/EpicTechAI/EpicChat/internal/media"
)

func decodeMediaState(t *testing.T, result interface{}) mediaState {
	t.Helper()
	raw, _ := json.Marshal(result)
	var state mediaState
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("failed to decode media state: %v", err)
	}
	return state
}

func TestMediaAddAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/media", mediaAddRequest{
		Name: "song.mp3", SourceHandle: "blob:1", Kind: media.KindAudio,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, resp := doJSON(t, h, http.MethodGet, "/media", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := decodeMediaState(t, resp.Result)
	if len(state.Items) != 1 || state.Current != 0 {
		t.Errorf("unexpected state %+v", state)
	}
	if state.State != media.StateLoaded {
		t.Errorf("expected loaded state, got %s", state.State)
	}
}

func TestMediaAddValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/media", mediaAddRequest{
		Name: "clip", SourceHandle: "blob:1", Kind: media.Kind("image"),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid kind, got %d", rec.Code)
	}
}

func TestMediaRemoveToIdle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/media", mediaAddRequest{Name: "a", SourceHandle: "blob:1", Kind: media.KindAudio})
	rec, resp := doJSON(t, h, http.MethodPost, "/media/remove", mediaIndexRequest{Index: 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := decodeMediaState(t, resp.Result)
	if state.State != media.StateIdle || state.Current != -1 {
		t.Errorf("expected idle empty state, got %+v", state)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/media/remove", mediaIndexRequest{Index: 5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range remove, got %d", rec.Code)
	}
}

func TestMediaControlActions(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/media", mediaAddRequest{Name: "a", SourceHandle: "blob:1", Kind: media.KindVideo})
	doJSON(t, h, http.MethodPost, "/media", mediaAddRequest{Name: "b", SourceHandle: "blob:2", Kind: media.KindVideo})

	rec, resp := doJSON(t, h, http.MethodPost, "/media/control", mediaControlRequest{Action: "play"})
	if rec.Code != http.StatusOK {
		t.Fatalf("play failed: %d", rec.Code)
	}
	if state := decodeMediaState(t, resp.Result); state.State != media.StatePlaying {
		t.Errorf("expected playing, got %s", state.State)
	}

	rec, resp = doJSON(t, h, http.MethodPost, "/media/control", mediaControlRequest{Action: "complete"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete failed: %d", rec.Code)
	}
	if state := decodeMediaState(t, resp.Result); state.Current != 1 {
		t.Errorf("expected auto-advance to 1, got %d", state.Current)
	}

	rec, resp = doJSON(t, h, http.MethodPost, "/media/control", mediaControlRequest{Action: "volume", Volume: 2.5})
	if rec.Code != http.StatusOK {
		t.Fatalf("volume failed: %d", rec.Code)
	}
	if state := decodeMediaState(t, resp.Result); state.Volume != 1 {
		t.Errorf("expected clamped volume 1, got %f", state.Volume)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/media/control", mediaControlRequest{Action: "warp"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestMediaPlayEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/media/control", mediaControlRequest{Action: "play"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for play on empty playlist, got %d", rec.Code)
	}
}
