package commands

import (
	"strings"
	"testing"
)

func TestSuggest_PrefixMatch(t *testing.T) {
	table := DefaultTable()
	got := table.Suggest("/jo")

	found := false
	for _, d := range got {
		if d.Token == "/joke" {
			found = true
		}
		tokenOK := strings.HasPrefix(d.Token, "/jo")
		descOK := strings.Contains(strings.ToLower(d.Description), "jo")
		if !tokenOK && !descOK {
			t.Errorf("descriptor %q matches neither token prefix nor description", d.Token)
		}
	}
	if !found {
		t.Error("expected /joke in suggestions for '/jo'")
	}
}

func TestSuggest_CaseInsensitivePrefix(t *testing.T) {
	table := DefaultTable()
	got := table.Suggest("/JO")
	if len(got) == 0 || got[0].Token != "/joke" {
		t.Errorf("expected /joke for upper-cased prefix, got %+v", got)
	}
}

func TestSuggest_CapAndDeclarationOrder(t *testing.T) {
	table := DefaultTable()
	got := table.Suggest("/")
	if len(got) != MaxSuggestions {
		t.Fatalf("expected cap of %d, got %d", MaxSuggestions, len(got))
	}
	// "/" matches every token; the first K in declaration order win.
	want := []string{"/joke", "/meme", "/gif", "/aiart", "/weather"}
	for i, d := range got {
		if d.Token != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], d.Token)
		}
	}
}

func TestSuggest_DescriptionSubstring(t *testing.T) {
	table := DefaultTable()
	got := table.Suggest("/coin")
	found := false
	for _, d := range got {
		if d.Token == "/flip" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /flip via description match for '/coin', got %+v", got)
	}
}

func TestSuggest_EmptyPrefix(t *testing.T) {
	table := DefaultTable()
	if got := table.Suggest("   "); got != nil {
		t.Errorf("expected nil for blank prefix, got %+v", got)
	}
}

func TestSuggest_Idempotent(t *testing.T) {
	table := DefaultTable()
	first := table.Suggest("/r")
	second := table.Suggest("/r")
	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Token != second[i].Token {
			t.Errorf("position %d differs: %s vs %s", i, first[i].Token, second[i].Token)
		}
	}
}
