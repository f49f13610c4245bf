// Package media implements the playlist controller: an ordered list of
// queued items with a current index and a small playback state machine.
// It is independent of the chat core.
package media

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/EpicTechAI/EpicChat/internal/util"
)

// Kind distinguishes audio and video items.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// State is the playback state of the controller.
type State string

const (
	StateIdle    State = "idle"
	StateLoaded  State = "loaded"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Common errors returned by playlist operations.
var (
	ErrEmptyPlaylist = errors.New("playlist is empty")
	ErrInvalidKind   = errors.New("item kind must be audio or video")
	ErrEmptyName     = errors.New("item name cannot be empty")
)

// Item is one queued media entry. SourceHandle is an opaque reference to
// the underlying source (object URL, file path); the controller never
// inspects it.
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SourceHandle string `json:"source_handle"`
	Kind         Kind   `json:"kind"`
}

// Position is the draggable player-window position. It is pure UI state,
// orthogonal to playback.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Controller owns the playlist, the current index, and playback state.
// The current index is always a valid index into a non-empty list; it is
// meaningless while the state is idle.
type Controller struct {
	mu      sync.Mutex
	items   []Item
	current int
	state   State
	volume  float64
	seekPos float64
	winPos  Position
}

// NewController creates an idle controller with full volume.
func NewController() *Controller {
	return &Controller{state: StateIdle, volume: 1.0}
}

// Add appends an item to the playlist. Adding to an idle controller makes
// the new item current and moves to loaded.
func (c *Controller) Add(name, sourceHandle string, kind Kind) (Item, error) {
	if name == "" {
		return Item{}, ErrEmptyName
	}
	if kind != KindAudio && kind != KindVideo {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item := Item{
		ID:           util.GenerateMediaItemID(),
		Name:         name,
		SourceHandle: sourceHandle,
		Kind:         kind,
	}
	c.items = append(c.items, item)
	if c.state == StateIdle {
		c.current = 0
		c.state = StateLoaded
		c.seekPos = 0
	}
	slog.Debug("media.Controller: item added", "id", item.ID, "name", item.Name, "kind", item.Kind, "count", len(c.items))
	return item, nil
}

// Remove deletes the item at idx. Removing the current item when current
// is greater than zero decrements current; removing the last remaining
// item returns the controller to idle.
func (c *Controller) Remove(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx < 0 || idx >= len(c.items) {
		return fmt.Errorf("item index %d out of range", idx)
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)

	if len(c.items) == 0 {
		c.current = 0
		c.state = StateIdle
		c.seekPos = 0
		slog.Debug("media.Controller: playlist emptied")
		return nil
	}

	switch {
	case idx == c.current && c.current > 0:
		c.current--
	case idx < c.current:
		c.current--
	case c.current >= len(c.items):
		c.current = len(c.items) - 1
	}
	return nil
}

// Select makes the item at idx current and resets the seek position.
// Playback state is preserved unless the controller was idle.
func (c *Controller) Select(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx < 0 || idx >= len(c.items) {
		return fmt.Errorf("item index %d out of range", idx)
	}
	c.current = idx
	c.seekPos = 0
	if c.state == StateIdle {
		c.state = StateLoaded
	}
	return nil
}

// Play starts playback of the current item.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return ErrEmptyPlaylist
	}
	c.state = StatePlaying
	return nil
}

// Pause pauses playback. Pausing while not playing is a no-op.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StatePlaying {
		c.state = StatePaused
	}
}

// Complete handles the platform's end-of-item signal: advance to the next
// item and keep playing, or stop on the last item (no loop).
func (c *Controller) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 || c.state != StatePlaying {
		return
	}
	if c.current+1 < len(c.items) {
		c.current++
		c.seekPos = 0
		slog.Debug("media.Controller: auto-advanced", "current", c.current)
		return
	}
	c.state = StateLoaded
	slog.Debug("media.Controller: reached end of playlist")
}

// Seek sets the playback position in seconds. Direct state write, no
// transition.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	c.seekPos = seconds
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
}

// SetWindowPosition records the dragged player-window position.
func (c *Controller) SetWindowPosition(p Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.winPos = p
}

// WindowPosition returns the player-window position.
func (c *Controller) WindowPosition() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winPos
}

// Volume returns the current volume.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// SeekPosition returns the current playback position in seconds.
func (c *Controller) SeekPosition() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekPos
}

// PlaybackState returns the playback state.
func (c *Controller) PlaybackState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of the playlist in order.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Current returns the current item. ok is false when the playlist is
// empty.
func (c *Controller) Current() (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return Item{}, false
	}
	return c.items[c.current], true
}

// CurrentIndex returns the current index, or -1 when the playlist is
// empty.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return -1
	}
	return c.current
}
