package models

import (
	"errors"
	"strings"
	"testing"
)

func TestParseInput_Command(t *testing.T) {
	in, err := ParseInput("/meme epic tech chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind != InputKindCommand {
		t.Errorf("expected command kind, got %q", in.Kind)
	}
	if in.Token != "/meme" {
		t.Errorf("expected token '/meme', got %q", in.Token)
	}
	if in.Remainder != "epic tech chat" {
		t.Errorf("expected verbatim remainder, got %q", in.Remainder)
	}
}

func TestParseInput_CommandWithoutRemainder(t *testing.T) {
	in, err := ParseInput("/roll")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Token != "/roll" || in.Remainder != "" {
		t.Errorf("expected bare token, got token=%q remainder=%q", in.Token, in.Remainder)
	}
}

func TestParseInput_Freeform(t *testing.T) {
	in, err := ParseInput("  hello there  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind != InputKindFreeform {
		t.Errorf("expected freeform kind, got %q", in.Kind)
	}
	if in.Text != "hello there" {
		t.Errorf("expected trimmed text, got %q", in.Text)
	}
}

func TestParseInput_Empty(t *testing.T) {
	if _, err := ParseInput("   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestParseInput_TooLong(t *testing.T) {
	long := strings.Repeat("a", MaxInputLength+1)
	if _, err := ParseInput(long); !errors.Is(err, ErrInputTooLong) {
		t.Errorf("expected ErrInputTooLong, got %v", err)
	}
}

func TestTurnInput_DisplayText(t *testing.T) {
	cases := []struct {
		name string
		in   TurnInput
		want string
	}{
		{"command with remainder", TurnInput{Kind: InputKindCommand, Token: "/define", Remainder: "recursion"}, "/define recursion"},
		{"bare command", TurnInput{Kind: InputKindCommand, Token: "/flip"}, "/flip"},
		{"freeform", TurnInput{Kind: InputKindFreeform, Text: "hello"}, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.DisplayText(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTurnValidate(t *testing.T) {
	if err := (&Turn{Role: RoleUser}).Validate(); !errors.Is(err, ErrEmptyTurnID) {
		t.Errorf("expected ErrEmptyTurnID, got %v", err)
	}
	if err := (&Turn{ID: "t1"}).Validate(); !errors.Is(err, ErrEmptyTurnRole) {
		t.Errorf("expected ErrEmptyTurnRole, got %v", err)
	}
	if err := (&Turn{ID: "t1", Role: RoleBot}).Validate(); err != nil {
		t.Errorf("expected valid turn, got %v", err)
	}
}

func TestIsValidBotMode(t *testing.T) {
	if !IsValidBotMode(ModeAI) || !IsValidBotMode(ModeAlternateBot) {
		t.Error("expected built-in modes to validate")
	}
	if IsValidBotMode(BotMode("pigeon")) {
		t.Error("expected unknown mode to be invalid")
	}
}
