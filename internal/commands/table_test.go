package commands

import (
	"regexp"
	"strings"
	"testing"
)

func TestDefaultTable_RollPattern(t *testing.T) {
	table := DefaultTable()
	pattern := regexp.MustCompile(`^You rolled a [1-6]!$`)
	for i := 0; i < 50; i++ {
		reply, matched := table.Execute("/roll", "")
		if !matched {
			t.Fatal("expected /roll to match")
		}
		if !pattern.MatchString(reply) {
			t.Fatalf("unexpected /roll reply: %q", reply)
		}
	}
}

func TestDefaultTable_FlipReplies(t *testing.T) {
	table := DefaultTable()
	seen := make(map[string]bool)
	for i := 0; i < 200 && len(seen) < 2; i++ {
		reply, _ := table.Execute("/flip", "")
		seen[reply] = true
	}
	if !seen["Heads 🍀"] || !seen["Tails 🎲"] {
		t.Errorf("expected both flip outcomes, got %v", seen)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	table := DefaultTable()
	reply, matched := table.Execute("/unknowncmd", "")
	if matched {
		t.Error("expected no match for unknown command")
	}
	if reply != UnknownCommandReply {
		t.Errorf("expected fixed unknown-command reply, got %q", reply)
	}
}

func TestExecute_CaseSensitiveToken(t *testing.T) {
	table := DefaultTable()
	if _, matched := table.Execute("/JOKE", ""); matched {
		t.Error("execution must be case-sensitive; /JOKE should not match")
	}
}

func TestExecute_RemainderPassedVerbatim(t *testing.T) {
	table := DefaultTable()
	reply, matched := table.Execute("/remind", "water the plants  at 9")
	if !matched {
		t.Fatal("expected /remind to match")
	}
	if !strings.Contains(reply, "water the plants  at 9") {
		t.Errorf("expected remainder passed through, got %q", reply)
	}
}

func TestDefaultTable_MemeEncodesArgument(t *testing.T) {
	table := DefaultTable()
	reply, _ := table.Execute("/meme", "when it compiles")
	if !strings.HasPrefix(reply, "![meme](https://api.memegen.link/images/custom/_/") {
		t.Errorf("unexpected meme reply shape: %q", reply)
	}
	if strings.Contains(reply, "when it compiles") {
		t.Errorf("expected argument to be escaped, got %q", reply)
	}

	reply, _ = table.Execute("/meme", "")
	if !strings.Contains(reply, "epic_tech_chat") {
		t.Errorf("expected default meme text, got %q", reply)
	}
}

func TestDefaultTable_WeatherDefaultsLocation(t *testing.T) {
	table := DefaultTable()
	reply, _ := table.Execute("/weather", "")
	if !strings.Contains(reply, "your location") {
		t.Errorf("expected default location, got %q", reply)
	}
	reply, _ = table.Execute("/weather", "Brussels")
	if !strings.Contains(reply, "Brussels") {
		t.Errorf("expected named location, got %q", reply)
	}
}

func TestNewTable_RejectsBadDescriptors(t *testing.T) {
	noop := func(string) string { return "" }
	if _, err := NewTable(Descriptor{Token: "joke", Description: "no marker", Handler: noop}); err == nil {
		t.Error("expected error for token without marker")
	}
	if _, err := NewTable(Descriptor{Token: "/a", Description: "x", Handler: nil}); err == nil {
		t.Error("expected error for nil handler")
	}
	if _, err := NewTable(
		Descriptor{Token: "/a", Description: "x", Handler: noop},
		Descriptor{Token: "/a", Description: "y", Handler: noop},
	); err == nil {
		t.Error("expected error for duplicate token")
	}
}

func TestLookup(t *testing.T) {
	table := DefaultTable()
	d, ok := table.Lookup("/joke")
	if !ok || d.Token != "/joke" {
		t.Errorf("expected /joke descriptor, got %+v ok=%v", d, ok)
	}
	if _, ok := table.Lookup("/nope"); ok {
		t.Error("expected miss for unregistered token")
	}
}
