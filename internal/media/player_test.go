package media

import "testing"

func addN(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := c.Add("track", "blob:handle", KindAudio); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
}

func TestAddFromIdle(t *testing.T) {
	c := NewController()
	if c.PlaybackState() != StateIdle {
		t.Fatalf("expected idle, got %s", c.PlaybackState())
	}
	if _, ok := c.Current(); ok {
		t.Error("expected no current item while idle")
	}

	item, err := c.Add("song.mp3", "blob:1", KindAudio)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if item.ID == "" {
		t.Error("expected generated item ID")
	}
	if c.PlaybackState() != StateLoaded {
		t.Errorf("expected loaded after first add, got %s", c.PlaybackState())
	}
	if c.CurrentIndex() != 0 {
		t.Errorf("expected current index 0, got %d", c.CurrentIndex())
	}
}

func TestAddValidation(t *testing.T) {
	c := NewController()
	if _, err := c.Add("", "blob:1", KindAudio); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := c.Add("clip", "blob:1", Kind("image")); err == nil {
		t.Error("expected error for invalid kind")
	}
}

func TestRemoveCurrentDecrements(t *testing.T) {
	c := NewController()
	addN(t, c, 3)
	if err := c.Select(2); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if err := c.Remove(2); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := c.CurrentIndex(); got != 1 {
		t.Errorf("expected current 1 after removing current index 2, got %d", got)
	}
}

func TestRemoveBeforeCurrentShiftsDown(t *testing.T) {
	c := NewController()
	addN(t, c, 3)
	if err := c.Select(2); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if err := c.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := c.CurrentIndex(); got != 1 {
		t.Errorf("expected current 1 after removing earlier item, got %d", got)
	}
}

func TestRemoveLastItemGoesIdle(t *testing.T) {
	c := NewController()
	addN(t, c, 1)
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if err := c.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if c.PlaybackState() != StateIdle {
		t.Errorf("expected idle after emptying playlist, got %s", c.PlaybackState())
	}
	if c.CurrentIndex() != -1 {
		t.Errorf("expected index -1 when empty, got %d", c.CurrentIndex())
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	c := NewController()
	addN(t, c, 1)
	if err := c.Remove(5); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := c.Remove(-1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestCompleteAutoAdvances(t *testing.T) {
	c := NewController()
	addN(t, c, 2)
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	c.Complete()
	if c.CurrentIndex() != 1 {
		t.Errorf("expected advance to index 1, got %d", c.CurrentIndex())
	}
	if c.PlaybackState() != StatePlaying {
		t.Errorf("expected to keep playing, got %s", c.PlaybackState())
	}
}

func TestCompleteAtEndStopsWithoutLoop(t *testing.T) {
	c := NewController()
	addN(t, c, 2)
	if err := c.Select(1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	c.Complete()
	if c.CurrentIndex() != 1 {
		t.Errorf("expected to stay on last index, got %d", c.CurrentIndex())
	}
	if c.PlaybackState() != StateLoaded {
		t.Errorf("expected playback to stop at end, got %s", c.PlaybackState())
	}
}

func TestPlayOnEmptyPlaylist(t *testing.T) {
	c := NewController()
	if err := c.Play(); err != ErrEmptyPlaylist {
		t.Errorf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestPauseOnlyWhilePlaying(t *testing.T) {
	c := NewController()
	addN(t, c, 1)

	c.Pause()
	if c.PlaybackState() != StateLoaded {
		t.Errorf("pause while loaded should be a no-op, got %s", c.PlaybackState())
	}

	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	c.Pause()
	if c.PlaybackState() != StatePaused {
		t.Errorf("expected paused, got %s", c.PlaybackState())
	}
}

func TestVolumeClamped(t *testing.T) {
	c := NewController()
	c.SetVolume(1.7)
	if c.Volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %f", c.Volume())
	}
	c.SetVolume(-0.3)
	if c.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %f", c.Volume())
	}
	c.SetVolume(0.5)
	if c.Volume() != 0.5 {
		t.Errorf("expected volume 0.5, got %f", c.Volume())
	}
}

func TestSeekAndWindowPositionAreDirectWrites(t *testing.T) {
	c := NewController()
	addN(t, c, 1)
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	c.Seek(42.5)
	if c.SeekPosition() != 42.5 {
		t.Errorf("expected seek position 42.5, got %f", c.SeekPosition())
	}
	c.SetWindowPosition(Position{X: 100, Y: 60})
	if got := c.WindowPosition(); got.X != 100 || got.Y != 60 {
		t.Errorf("unexpected window position %+v", got)
	}
	if c.PlaybackState() != StatePlaying {
		t.Errorf("seek and drag must not change playback state, got %s", c.PlaybackState())
	}
	c.Seek(-3)
	if c.SeekPosition() != 0 {
		t.Errorf("expected negative seek clamped to 0, got %f", c.SeekPosition())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := NewController()
	addN(t, c, 2)
	items := c.Items()
	items[0].Name = "mutated"
	if fresh := c.Items(); fresh[0].Name == "mutated" {
		t.Error("Items must return a copy")
	}
}
