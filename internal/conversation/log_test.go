package conversation

import (
	"fmt"
	"testing"

	"github.com/EpicTechAI/EpicChat/internal/models"
)

func TestNewLog_SeedsGreeting(t *testing.T) {
	l := NewLog()
	turns := l.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 seeded turn, got %d", len(turns))
	}
	if turns[0].Role != models.RoleBot {
		t.Errorf("expected bot greeting, got role %q", turns[0].Role)
	}
	if turns[0].Content != Greeting {
		t.Errorf("expected greeting content, got %q", turns[0].Content)
	}
}

func TestAppendExchange_LengthAndOrder(t *testing.T) {
	l := NewEmptyLog()
	const k = 7
	for i := 0; i < k; i++ {
		user := NewTurn(models.RoleUser, fmt.Sprintf("q%d", i), "")
		bot := NewTurn(models.RoleBot, fmt.Sprintf("a%d", i), models.OriginAI)
		if err := l.AppendExchange(user, bot); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	turns := l.Turns()
	if len(turns) != 2*k {
		t.Fatalf("expected %d turns after %d exchanges, got %d", 2*k, k, len(turns))
	}
	for i := 0; i < k; i++ {
		if turns[2*i].Role != models.RoleUser || turns[2*i+1].Role != models.RoleBot {
			t.Fatalf("exchange %d out of order: %q then %q", i, turns[2*i].Role, turns[2*i+1].Role)
		}
		if turns[2*i].Content != fmt.Sprintf("q%d", i) {
			t.Errorf("exchange %d user content mismatch: %q", i, turns[2*i].Content)
		}
	}
}

func TestAppend_RejectsInvalidTurn(t *testing.T) {
	l := NewEmptyLog()
	if err := l.Append(models.Turn{Role: models.RoleUser}); err == nil {
		t.Error("expected error appending turn without ID")
	}
	if l.Len() != 0 {
		t.Errorf("expected log unchanged, got length %d", l.Len())
	}
}

func TestTurnIDs_Unique(t *testing.T) {
	l := NewEmptyLog()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		turn := NewTurn(models.RoleUser, "x", "")
		if seen[turn.ID] {
			t.Fatalf("duplicate turn ID %s", turn.ID)
		}
		seen[turn.ID] = true
		if err := l.Append(turn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestWindow_CapsAtN(t *testing.T) {
	l := NewEmptyLog()
	for i := 0; i < 30; i++ {
		if err := l.Append(NewTurn(models.RoleUser, fmt.Sprintf("m%d", i), "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	w := l.Window(models.ConversationWindowSize)
	if len(w) != models.ConversationWindowSize {
		t.Fatalf("expected window of %d, got %d", models.ConversationWindowSize, len(w))
	}
	// Window holds the most recent turns in append order.
	if w[0].Content != "m20" || w[len(w)-1].Content != "m29" {
		t.Errorf("window slice wrong: first=%q last=%q", w[0].Content, w[len(w)-1].Content)
	}
}

func TestWindow_ShorterLog(t *testing.T) {
	l := NewEmptyLog()
	if err := l.Append(NewTurn(models.RoleBot, "only", models.OriginAI)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(l.Window(10)); got != 1 {
		t.Errorf("expected window of 1, got %d", got)
	}
	if got := len(l.Window(0)); got != 0 {
		t.Errorf("expected empty window for n=0, got %d", got)
	}
}

func TestTurns_ReturnsCopy(t *testing.T) {
	l := NewEmptyLog()
	if err := l.Append(NewTurn(models.RoleUser, "original", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	turns := l.Turns()
	turns[0].Content = "mutated"
	if l.Turns()[0].Content != "original" {
		t.Error("mutating the returned slice must not affect the log")
	}
}
