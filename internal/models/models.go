// Package models defines the core data structures for EpicChat.
//
// It includes turn and dispatch types shared across modules, plus the
// standard API response envelope.
package models

import (
	"errors"
	"strings"
	"time"
)

// TurnRole identifies which side of the conversation produced a turn.
type TurnRole string

const (
	// RoleUser marks a turn submitted by the user.
	RoleUser TurnRole = "user"
	// RoleBot marks a turn produced by a responder.
	RoleBot TurnRole = "bot"
)

// Origin identifies the responder backend that produced a reply.
type Origin string

const (
	// OriginAI marks replies generated by the AI backend.
	OriginAI Origin = "ai"
	// OriginCommandTable marks replies produced by the command table.
	OriginCommandTable Origin = "command-table"
	// OriginAlternateBot marks acknowledgments from the alternate-bot bridge.
	OriginAlternateBot Origin = "alternate-bot"
)

// BotMode selects which backend handles freeform input.
type BotMode string

const (
	// ModeAI routes freeform input to the AI backend.
	ModeAI BotMode = "ai"
	// ModeAlternateBot routes freeform input to the alternate-bot bridge.
	ModeAlternateBot BotMode = "alternate-bot"
)

// IsValidBotMode checks if the given bot mode is supported.
func IsValidBotMode(m BotMode) bool {
	switch m {
	case ModeAI, ModeAlternateBot:
		return true
	default:
		return false
	}
}

// CommandMarker is the leading character sequence that identifies input as
// a command rather than freeform text.
const CommandMarker = "/"

// ConversationWindowSize is the maximum number of prior turns included as
// context for the AI backend. The window caps turns, not tokens.
const ConversationWindowSize = 10

// Validation constants for dispatch input.
const (
	// MaxInputLength defines the maximum allowed length for user input text.
	MaxInputLength = 4096
)

// Error variables for better error handling and testability.
var (
	ErrEmptyInput    = errors.New("input cannot be empty")
	ErrInputTooLong  = errors.New("input exceeds maximum length")
	ErrInvalidMode   = errors.New("invalid bot mode")
	ErrEmptyTurnID   = errors.New("turn id cannot be empty")
	ErrEmptyTurnRole = errors.New("turn role cannot be empty")
)

// Turn represents one recorded message in the conversation log. Turns are
// immutable once appended; identity is the ID.
type Turn struct {
	ID        string    `json:"id"`
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Origin    Origin    `json:"origin,omitempty"`
	Failed    bool      `json:"failed,omitempty"` // responder failure surfaced as an ordinary reply
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks structural requirements on a turn before it is appended.
func (t *Turn) Validate() error {
	if t.ID == "" {
		return ErrEmptyTurnID
	}
	if t.Role == "" {
		return ErrEmptyTurnRole
	}
	return nil
}

// InputKind distinguishes command input from freeform text.
type InputKind string

const (
	// InputKindCommand marks input beginning with the command marker.
	InputKindCommand InputKind = "command"
	// InputKindFreeform marks plain conversational input.
	InputKindFreeform InputKind = "freeform"
)

// TurnInput is the parsed form of one user submission. Exactly one of the
// command fields (Token, Remainder) or the freeform fields (Text,
// ImageAttached, ImagePayload) is meaningful depending on Kind.
type TurnInput struct {
	Kind InputKind

	// Command input: token including the marker, plus the verbatim remainder.
	Token     string
	Remainder string

	// Freeform input. ImagePayload is opaque and forwarded untouched to the
	// vision collaborator; only the presence flag reaches the prompt.
	Text          string
	ImageAttached bool
	ImagePayload  []byte
}

// Validate checks a TurnInput for dispatch.
func (in *TurnInput) Validate() error {
	switch in.Kind {
	case InputKindCommand:
		if in.Token == "" {
			return ErrEmptyInput
		}
	case InputKindFreeform:
		if in.Text == "" {
			return ErrEmptyInput
		}
		if len(in.Text) > MaxInputLength {
			return ErrInputTooLong
		}
	default:
		return ErrEmptyInput
	}
	return nil
}

// DisplayText returns the content recorded for the user-side turn of this
// input: the raw command line for commands, the text otherwise.
func (in *TurnInput) DisplayText() string {
	if in.Kind == InputKindCommand {
		if in.Remainder == "" {
			return in.Token
		}
		return in.Token + " " + in.Remainder
	}
	return in.Text
}

// ParseInput classifies raw user text as command or freeform input. Text
// beginning with the command marker splits into marker+token followed by a
// single whitespace-delimited remainder passed verbatim to the handler.
func ParseInput(raw string) (TurnInput, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TurnInput{}, ErrEmptyInput
	}
	if strings.HasPrefix(trimmed, CommandMarker) {
		token, remainder, _ := strings.Cut(trimmed, " ")
		return TurnInput{
			Kind:      InputKindCommand,
			Token:     token,
			Remainder: remainder,
		}, nil
	}
	if len(trimmed) > MaxInputLength {
		return TurnInput{}, ErrInputTooLong
	}
	return TurnInput{Kind: InputKindFreeform, Text: trimmed}, nil
}

// ReplyOutcome is the uniform result of one responder invocation.
type ReplyOutcome struct {
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
	Failed bool   `json:"failed,omitempty"`
}

// LeaderboardEntry is one named streak on the public leaderboard.
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Streak int    `json:"streak"`
	Emoji  string `json:"emoji"`
}
