package prompt

import (
	"strings"
	"testing"

	"github.com/EpicTechAI/EpicChat/internal/models"
)

func window(contents ...string) []models.Turn {
	turns := make([]models.Turn, 0, len(contents))
	role := models.RoleUser
	for _, c := range contents {
		turns = append(turns, models.Turn{ID: c, Role: role, Content: c})
		if role == models.RoleUser {
			role = models.RoleBot
		} else {
			role = models.RoleUser
		}
	}
	return turns
}

func TestAssemble_Layout(t *testing.T) {
	out := Assemble("persona block", window("hi", "yo"), false, "what's up?")

	want := "persona block\n" +
		"Conversation history:\n" +
		"user: hi\n" +
		"bot: yo\n" +
		"User: what's up?\n" +
		"Epic Tech AI:"
	if out != want {
		t.Errorf("unexpected prompt:\n%q\nwant:\n%q", out, want)
	}
}

func TestAssemble_ImageMarker(t *testing.T) {
	with := Assemble(DefaultPersona, nil, true, "look at this")
	without := Assemble(DefaultPersona, nil, false, "look at this")

	if !strings.Contains(with, ImageMarker) {
		t.Error("expected image marker when attached")
	}
	if strings.Contains(without, ImageMarker) {
		t.Error("did not expect image marker without attachment")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	w := window("a", "b", "c")
	first := Assemble(DefaultPersona, w, true, "x")
	second := Assemble(DefaultPersona, w, true, "x")
	if first != second {
		t.Error("assembly must be deterministic")
	}
}

func TestAssemble_EndsWithCue(t *testing.T) {
	out := Assemble(DefaultPersona, window("hello"), false, "next")
	if !strings.HasSuffix(out, AssistantCue) {
		t.Errorf("expected prompt to end with assistant cue, got tail %q", out[len(out)-30:])
	}
}

func TestAssemble_NoTruncationOfLongContent(t *testing.T) {
	long := strings.Repeat("x", 20000)
	out := Assemble(DefaultPersona, window(long), false, "q")
	if !strings.Contains(out, long) {
		t.Error("window content must not be truncated by the assembler")
	}
}
