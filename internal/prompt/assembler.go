// Package prompt assembles the text sent to the AI backend.
//
// Assembly is deterministic string concatenation: persona block, optional
// image-presence marker, a bounded trailing window of prior turns, the new
// user line, and a fixed assistant cue. The window is capped at a number of
// turns, never tokens.
package prompt

import (
	"strings"

	"github.com/EpicTechAI/EpicChat/internal/models"
)

// DefaultPersona is the fixed persona preamble for the Epic Tech AI backend.
const DefaultPersona = `You are Epic Tech AI: ultra-human, playful, inventive, and never boring.
You speak, listen, see images, and can take actions. Slash commands, emoji, memes, games—always welcome.
Remember user preferences and surprise them with details, fun facts, jokes, and daily challenges.
Celebrate user streaks, drop badges, and offer wild, funny responses. Be creative, clever, and real.
Respond in an ultra-conversational tone—animated avatar cues, sound effects, and Easter eggs included.`

// ImageMarker is the fixed line inserted when an image is attached. The
// image bytes themselves never reach the prompt.
const ImageMarker = "[Image uploaded. Vision analysis coming soon!]"

// AssistantCue is the fixed trailing marker that cues the backend to reply.
const AssistantCue = "Epic Tech AI:"

// historyHeader introduces the rendered conversation window.
const historyHeader = "Conversation history:"

// Assemble builds the prompt text for one AI dispatch. The window must
// already be bounded by the caller (models.ConversationWindowSize).
func Assemble(persona string, window []models.Turn, imageAttached bool, userText string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n")
	if imageAttached {
		b.WriteString(ImageMarker)
		b.WriteString("\n")
	}
	b.WriteString(historyHeader)
	b.WriteString("\n")
	for _, turn := range window {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(userText)
	b.WriteString("\n")
	b.WriteString(AssistantCue)
	return b.String()
}
