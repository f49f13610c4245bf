// Package dispatch routes each user turn to exactly one responder (command
// table, AI backend, or alternate-bot bridge), appends the resulting
// exchange to the conversation log, and advances the engagement streak on
// successful AI turns.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/bridge"
	"github.com/EpicTechAI/EpicChat/internal/commands"
	"github.com/EpicTechAI/EpicChat/internal/conversation"
	"github.com/EpicTechAI/EpicChat/internal/genai"
	"github.com/EpicTechAI/EpicChat/internal/models"
	"github.com/EpicTechAI/EpicChat/internal/prompt"
	"github.com/EpicTechAI/EpicChat/internal/speech"
	"github.com/EpicTechAI/EpicChat/internal/streak"
)

// FallbackReply is the fixed user-visible bot turn substituted for any
// responder failure. Failures never surface as errors to the user; they
// look like an ordinary reply, distinguishable by the turn's Failed flag.
const FallbackReply = "Network error. Try again?"

// Common errors returned by Dispatch.
var (
	// ErrDispatchInFlight is returned while another dispatch is
	// outstanding. Only one dispatch may be in flight at a time.
	ErrDispatchInFlight = errors.New("a dispatch is already in flight")
	// ErrNoResponder is returned when the active mode has no backend
	// configured.
	ErrNoResponder = errors.New("no responder configured for active mode")
)

// Responder produces a reply for one turn input. window is the bounded
// trailing slice of prior turns, snapshotted before the new exchange is
// appended.
type Responder interface {
	Respond(ctx context.Context, in models.TurnInput, window []models.Turn) (models.ReplyOutcome, error)
	Origin() models.Origin
}

// CommandTableResponder resolves command tokens against the table. An
// unknown token is not an error; it yields the fixed unknown-command
// reply.
type CommandTableResponder struct {
	table *commands.Table
}

func NewCommandTableResponder(t *commands.Table) *CommandTableResponder {
	return &CommandTableResponder{table: t}
}

func (r *CommandTableResponder) Respond(_ context.Context, in models.TurnInput, _ []models.Turn) (models.ReplyOutcome, error) {
	reply, matched := r.table.Execute(in.Token, in.Remainder)
	if !matched {
		slog.Debug("CommandTableResponder.Respond: unknown token", "token", in.Token)
	}
	return models.ReplyOutcome{Text: reply, Origin: models.OriginCommandTable}, nil
}

func (r *CommandTableResponder) Origin() models.Origin { return models.OriginCommandTable }

// AIResponder assembles a prompt from the persona, the conversation
// window and the new input, and sends it to the text-completion backend.
type AIResponder struct {
	client  genai.ClientInterface
	persona string
}

func NewAIResponder(client genai.ClientInterface, persona string) *AIResponder {
	if persona == "" {
		persona = prompt.DefaultPersona
	}
	return &AIResponder{client: client, persona: persona}
}

func (r *AIResponder) Respond(ctx context.Context, in models.TurnInput, window []models.Turn) (models.ReplyOutcome, error) {
	assembled := prompt.Assemble(r.persona, window, in.ImageAttached, in.Text)
	reply, err := r.client.Complete(ctx, assembled)
	if err != nil {
		return models.ReplyOutcome{}, fmt.Errorf("AI backend dispatch failed: %w", err)
	}
	return models.ReplyOutcome{Text: reply, Origin: models.OriginAI}, nil
}

func (r *AIResponder) Origin() models.Origin { return models.OriginAI }

// AlternateBotResponder forwards the text to a remote bot bridge. The
// reply shown to the user is the bridge's fixed acknowledgment; the
// remote bot's actual reply arrives out-of-band and is never consumed.
type AlternateBotResponder struct {
	bridge  bridge.Bridge
	channel string
}

func NewAlternateBotResponder(b bridge.Bridge, channel string) *AlternateBotResponder {
	return &AlternateBotResponder{bridge: b, channel: channel}
}

func (r *AlternateBotResponder) Respond(ctx context.Context, in models.TurnInput, _ []models.Turn) (models.ReplyOutcome, error) {
	if err := r.bridge.Send(ctx, in.Text, r.channel); err != nil {
		return models.ReplyOutcome{}, fmt.Errorf("alternate bot dispatch failed: %w", err)
	}
	return models.ReplyOutcome{Text: r.bridge.Ack(), Origin: models.OriginAlternateBot}, nil
}

func (r *AlternateBotResponder) Origin() models.Origin { return models.OriginAlternateBot }

// Opts holds configuration options for the Dispatcher.
type Opts struct {
	Log     *conversation.Log
	Table   *commands.Table
	AI      Responder
	Alt     Responder
	Mode    models.BotMode
	Tracker *streak.Tracker
	Speaker speech.Speaker
	Now     func() time.Time
}

// Option defines a configuration option for the Dispatcher.
type Option func(*Opts)

// WithLog sets the conversation log.
func WithLog(l *conversation.Log) Option {
	return func(o *Opts) { o.Log = l }
}

// WithTable sets the command table.
func WithTable(t *commands.Table) Option {
	return func(o *Opts) { o.Table = t }
}

// WithAIResponder sets the freeform responder used in AI mode.
func WithAIResponder(r Responder) Option {
	return func(o *Opts) { o.AI = r }
}

// WithAlternateResponder sets the freeform responder used in
// alternate-bot mode.
func WithAlternateResponder(r Responder) Option {
	return func(o *Opts) { o.Alt = r }
}

// WithMode sets the initial bot mode.
func WithMode(m models.BotMode) Option {
	return func(o *Opts) { o.Mode = m }
}

// WithTracker sets the engagement tracker advanced on successful AI
// turns.
func WithTracker(t *streak.Tracker) Option {
	return func(o *Opts) { o.Tracker = t }
}

// WithSpeaker sets the text-to-speech capability for successful replies.
func WithSpeaker(s speech.Speaker) Option {
	return func(o *Opts) { o.Speaker = s }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Dispatcher owns the single-outstanding-dispatch discipline: the mutex
// is held for the whole dispatch, and a second caller gets
// ErrDispatchInFlight instead of blocking. Turns are therefore appended
// strictly in dispatch-completion order with no further sequencing.
type Dispatcher struct {
	mu sync.Mutex

	modeMu sync.RWMutex
	mode   models.BotMode

	log     *conversation.Log
	command Responder
	ai      Responder
	alt     Responder
	tracker *streak.Tracker
	speaker speech.Speaker
	now     func() time.Time
}

// NewDispatcher creates a dispatcher, defaulting to a fresh greeting log,
// the built-in command table, AI mode, a silent speaker and the wall
// clock.
func NewDispatcher(opts ...Option) *Dispatcher {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Log == nil {
		cfg.Log = conversation.NewLog()
	}
	if cfg.Table == nil {
		cfg.Table = commands.DefaultTable()
	}
	if cfg.Mode == "" {
		cfg.Mode = models.ModeAI
	}
	if cfg.Speaker == nil {
		cfg.Speaker = speech.NoopSpeaker{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		mode:    cfg.Mode,
		log:     cfg.Log,
		command: NewCommandTableResponder(cfg.Table),
		ai:      cfg.AI,
		alt:     cfg.Alt,
		tracker: cfg.Tracker,
		speaker: cfg.Speaker,
		now:     cfg.Now,
	}
}

// Mode returns the active bot mode.
func (d *Dispatcher) Mode() models.BotMode {
	d.modeMu.RLock()
	defer d.modeMu.RUnlock()
	return d.mode
}

// SetMode switches the freeform responder path.
func (d *Dispatcher) SetMode(m models.BotMode) error {
	if !models.IsValidBotMode(m) {
		return models.ErrInvalidMode
	}
	d.modeMu.Lock()
	defer d.modeMu.Unlock()
	d.mode = m
	slog.Info("Dispatcher.SetMode: mode switched", "mode", m)
	return nil
}

// Log exposes the conversation log for rendering.
func (d *Dispatcher) Log() *conversation.Log {
	return d.log
}

// responderFor selects the single responder for this input.
func (d *Dispatcher) responderFor(in models.TurnInput) (Responder, error) {
	if in.Kind == models.InputKindCommand {
		return d.command, nil
	}
	switch d.Mode() {
	case models.ModeAI:
		if d.ai == nil {
			return nil, ErrNoResponder
		}
		return d.ai, nil
	case models.ModeAlternateBot:
		if d.alt == nil {
			return nil, ErrNoResponder
		}
		return d.alt, nil
	}
	return nil, models.ErrInvalidMode
}

// Listen consumes transcripts from the transcriber and dispatches each
// one as ordinary input until the stream closes or the context is
// cancelled. A transcript that fails to parse is skipped; a dispatch
// failure is logged and listening continues.
func (d *Dispatcher) Listen(ctx context.Context, tr speech.Transcriber) error {
	transcripts, err := tr.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transcription: %w", err)
	}
	defer tr.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-transcripts:
			if !ok {
				return nil
			}
			in, err := models.ParseInput(text)
			if err != nil {
				slog.Debug("Dispatcher.Listen: skipping unusable transcript", "error", err)
				continue
			}
			if _, err := d.Dispatch(ctx, in); err != nil {
				slog.Error("Dispatcher.Listen: dispatch failed", "error", err)
			}
		}
	}
}

// Dispatch routes one input to its responder and appends the exchange.
// The user turn is always appended, even when the responder fails; a
// failure is recorded as a bot turn carrying FallbackReply with the
// Failed flag set. The returned turn is the bot side of the exchange.
func (d *Dispatcher) Dispatch(ctx context.Context, in models.TurnInput) (models.Turn, error) {
	if err := in.Validate(); err != nil {
		return models.Turn{}, err
	}
	if !d.mu.TryLock() {
		return models.Turn{}, ErrDispatchInFlight
	}
	defer d.mu.Unlock()

	responder, err := d.responderFor(in)
	if err != nil {
		return models.Turn{}, err
	}

	window := d.log.Window(models.ConversationWindowSize)
	outcome, rerr := responder.Respond(ctx, in, window)
	if rerr != nil {
		slog.Error("Dispatcher.Dispatch: responder failed", "origin", responder.Origin(), "error", rerr)
		outcome = models.ReplyOutcome{
			Text:   FallbackReply,
			Origin: responder.Origin(),
			Failed: true,
		}
	}

	userTurn := conversation.NewTurn(models.RoleUser, in.DisplayText(), outcome.Origin)
	botTurn := conversation.NewTurn(models.RoleBot, outcome.Text, outcome.Origin)
	botTurn.Failed = outcome.Failed
	if err := d.log.AppendExchange(userTurn, botTurn); err != nil {
		return models.Turn{}, fmt.Errorf("failed to append exchange: %w", err)
	}

	if !outcome.Failed {
		if outcome.Origin == models.OriginAI && d.tracker != nil {
			if _, err := d.tracker.RecordQualifyingTurn(d.now()); err != nil {
				slog.Error("Dispatcher.Dispatch: streak update failed", "error", err)
			}
		}
		if spoken := speech.SanitizeForSpeech(outcome.Text); spoken != "" {
			d.speaker.Speak(spoken)
		}
	}

	slog.Debug("Dispatcher.Dispatch: exchange complete", "origin", outcome.Origin, "failed", outcome.Failed, "log_length", d.log.Len())
	return botTurn, nil
}
