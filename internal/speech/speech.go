// Package speech defines the narrow capability interfaces for
// speech-to-text and text-to-speech. The chat core depends only on these
// interfaces; when the platform provides no engine the Noop
// implementations make every speech action a silent no-op.
package speech

import (
	"context"
	"regexp"
	"strings"
)

// Transcriber converts microphone audio to text. Start yields a finite
// stream of partial transcripts; the channel is closed when the utterance
// ends or Stop is called. A transcription is not restartable
// mid-utterance.
type Transcriber interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop() error
}

// Speaker renders text to audio. Speak fires and forgets; it never
// reports playback completion.
type Speaker interface {
	Speak(text string)
}

// NoopTranscriber is the unsupported-capability fallback. Start returns
// an already-closed channel so callers that range over partials finish
// immediately with no error and no user-visible message.
type NoopTranscriber struct{}

func (NoopTranscriber) Start(_ context.Context) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func (NoopTranscriber) Stop() error { return nil }

// NoopSpeaker discards all text.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(_ string) {}

var memeMarkdownRe = regexp.MustCompile(`!\[meme\]\([^)]+\)`)

// SanitizeForSpeech strips inline meme markdown from a reply so the
// speech engine does not read out raw URLs.
func SanitizeForSpeech(text string) string {
	return strings.TrimSpace(memeMarkdownRe.ReplaceAllString(text, ""))
}
