package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomHex_Length(t *testing.T) {
	for _, n := range []int{0, 1, 12, 32} {
		got := GenerateRandomHex(n)
		if len(got) != n && n > 0 {
			t.Errorf("expected length %d, got %d", n, len(got))
		}
		if n <= 0 && got != "" {
			t.Errorf("expected empty string for length %d, got %q", n, got)
		}
		for _, c := range got {
			if !strings.ContainsRune("0123456789abcdef", c) {
				t.Errorf("unexpected character %q in hex string", c)
			}
		}
	}
}

func TestGenerateRandomID_Prefix(t *testing.T) {
	id := GenerateRandomID("m_", 12)
	if !strings.HasPrefix(id, "m_") {
		t.Errorf("expected 'm_' prefix, got %q", id)
	}
	if len(id) != 2+12 {
		t.Errorf("expected total length 14, got %d", len(id))
	}
}

func TestGenerateMediaItemID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateMediaItemID()
		if seen[id] {
			t.Fatalf("duplicate media item ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestRollDie_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		face := RollDie(6)
		if face < 1 || face > 6 {
			t.Fatalf("die face out of range: %d", face)
		}
	}
	if RollDie(0) != 1 {
		t.Error("expected degenerate die to return 1")
	}
}

func TestFlipCoin_BothSides(t *testing.T) {
	heads, tails := false, false
	for i := 0; i < 500 && !(heads && tails); i++ {
		if FlipCoin() {
			heads = true
		} else {
			tails = true
		}
	}
	if !heads || !tails {
		t.Error("expected both coin faces within 500 flips")
	}
}
