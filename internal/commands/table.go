// Package commands provides the slash command table and suggestion index for EpicChat.
//
// The table maps a command token to a static or lightly randomized reply. It
// is immutable process-wide configuration, declared at startup.
package commands

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/EpicTechAI/EpicChat/internal/models"
	"github.com/EpicTechAI/EpicChat/internal/util"
	"github.com/armon/go-radix"
)

// UnknownCommandReply is returned for a token with no table entry. A table
// miss is a normal reply, not an error.
const UnknownCommandReply = "❓ Unknown command! Try /joke, /weather, /meme, /aiart, and more."

// HandlerFunc produces the reply text for a command given the verbatim
// remainder of the input line.
type HandlerFunc func(remainder string) string

// Descriptor describes one slash command.
type Descriptor struct {
	Token       string      `json:"token"`       // command token including the marker, e.g. "/joke"
	Description string      `json:"description"` // short help text shown in suggestions
	Handler     HandlerFunc `json:"-"`
}

// Table holds the immutable command set in declaration order.
type Table struct {
	descriptors []Descriptor
	byToken     map[string]int
	prefixes    *radix.Tree // token -> declaration index
}

// NewTable builds a table from descriptors, preserving declaration order.
func NewTable(descriptors ...Descriptor) (*Table, error) {
	t := &Table{
		descriptors: descriptors,
		byToken:     make(map[string]int, len(descriptors)),
		prefixes:    radix.New(),
	}
	for i, d := range descriptors {
		if !strings.HasPrefix(d.Token, models.CommandMarker) {
			return nil, fmt.Errorf("command token %q missing marker %q", d.Token, models.CommandMarker)
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("command %q has no handler", d.Token)
		}
		if _, dup := t.byToken[d.Token]; dup {
			return nil, fmt.Errorf("duplicate command token %q", d.Token)
		}
		t.byToken[d.Token] = i
		t.prefixes.Insert(strings.ToLower(d.Token), i)
	}
	slog.Debug("commands.NewTable: table built", "commands", len(descriptors))
	return t, nil
}

// Descriptors returns the command set in declaration order.
func (t *Table) Descriptors() []Descriptor {
	out := make([]Descriptor, len(t.descriptors))
	copy(out, t.descriptors)
	return out
}

// Lookup finds a descriptor by exact, case-sensitive token match.
func (t *Table) Lookup(token string) (Descriptor, bool) {
	i, ok := t.byToken[token]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[i], true
}

// Execute runs the handler for token with the verbatim remainder. Matching
// is case-sensitive and exact. An unknown token yields the fixed
// unknown-command reply and matched=false.
func (t *Table) Execute(token, remainder string) (reply string, matched bool) {
	d, ok := t.Lookup(token)
	if !ok {
		slog.Debug("Table.Execute: unknown command", "token", token)
		return UnknownCommandReply, false
	}
	reply = d.Handler(remainder)
	slog.Debug("Table.Execute: command handled", "token", token, "reply_length", len(reply))
	return reply, true
}

// DefaultTable returns the built-in EpicChat command set.
func DefaultTable() *Table {
	t, err := NewTable(
		Descriptor{Token: "/joke", Description: "Tell an AI joke", Handler: func(string) string {
			return "What's an AI's favorite genre? Algo-rhythm!"
		}},
		Descriptor{Token: "/meme", Description: "Generate a custom meme image", Handler: func(rest string) string {
			arg := strings.TrimSpace(rest)
			if arg == "" {
				arg = "epic_tech_chat"
			}
			return fmt.Sprintf("![meme](https://api.memegen.link/images/custom/_/%s.png?background=none)", url.PathEscape(arg))
		}},
		Descriptor{Token: "/gif", Description: "Search for a trending GIF", Handler: func(rest string) string {
			return fmt.Sprintf("Here's a trending GIF for %q [Giphy integration preview]", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/aiart", Description: "Create AI art from a prompt", Handler: func(rest string) string {
			return fmt.Sprintf("Here's your AI art for %q [AI art API integration preview]", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/weather", Description: "Check the weather anywhere", Handler: func(rest string) string {
			arg := strings.TrimSpace(rest)
			if arg == "" {
				arg = "your location"
			}
			return fmt.Sprintf("Weather for %s: 22°C, chance of bangers.", arg)
		}},
		Descriptor{Token: "/remind", Description: "Set a reminder", Handler: func(rest string) string {
			return fmt.Sprintf("Reminder set for: %s [Real reminders coming soon!]", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/tweet", Description: "Pretend-post to X", Handler: func(rest string) string {
			return fmt.Sprintf("Pretend I just tweeted: %q (connect your X for real tweets!)", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/roll", Description: "Roll a six-sided die", Handler: func(string) string {
			return fmt.Sprintf("You rolled a %d!", util.RollDie(6))
		}},
		Descriptor{Token: "/flip", Description: "Flip a coin", Handler: func(string) string {
			if util.FlipCoin() {
				return "Heads 🍀"
			}
			return "Tails 🎲"
		}},
		Descriptor{Token: "/define", Description: "Look up a definition", Handler: func(rest string) string {
			return fmt.Sprintf("Definition of %q: [Dictionary API integration preview]", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/vote", Description: "Start a quick vote", Handler: func(rest string) string {
			return fmt.Sprintf("Vote started: %q (polling and buttons coming soon!)", strings.TrimSpace(rest))
		}},
		Descriptor{Token: "/riddle", Description: "Get a riddle", Handler: func(string) string {
			return "I have keys but can't open locks. What am I? (A piano!)"
		}},
		Descriptor{Token: "/quiz", Description: "Take a quick quiz", Handler: func(string) string {
			return "Quick quiz! What's the capital of Belgium? (Brussels)"
		}},
		Descriptor{Token: "/emoji-battle", Description: "Start an emoji battle", Handler: func(string) string {
			return "🔥 vs 🤖 — which one wins? React below!"
		}},
		Descriptor{Token: "/streak", Description: "See your streak hype", Handler: func(string) string {
			return "You're on an Epic Streak! 🔥 Show up every day for surprises."
		}},
		Descriptor{Token: "/randomfact", Description: "Learn a random fact", Handler: func(string) string {
			return "Random fact: A group of flamingos is called a 'flamboyance.'"
		}},
		Descriptor{Token: "/roastme", Description: "Get roasted", Handler: func(string) string {
			return "You're so extra, even Stack Overflow gave up!"
		}},
		Descriptor{Token: "/konami", Description: "Enter the secret code", Handler: func(string) string {
			return "🕹️ Secret code unlocked! (Up, up, down, down...)"
		}},
		Descriptor{Token: "/matrix", Description: "Take the red pill", Handler: func(string) string {
			return "Wake up, Neo. You're in Epic Tech Chat now."
		}},
	)
	if err != nil {
		// The built-in table is static; a construction failure is a programming error.
		panic(fmt.Sprintf("commands.DefaultTable: %v", err))
	}
	return t
}
