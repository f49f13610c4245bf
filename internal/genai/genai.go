// Package genai provides the opaque text-completion collaborator for EpicChat.
//
// It wraps an OpenAI-compatible chat completions endpoint (Groq by default)
// behind a narrow interface: one assembled prompt string in, one reply text
// out. The only timeout on a completion call is the network-level HTTP
// client timeout; when it fires it surfaces as an ordinary error.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default configuration for the Groq completion endpoint.
const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "mixtral-8x7b-32768"
	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 1024
	// DefaultTimeout is the network-level timeout for a completion call.
	DefaultTimeout = 30 * time.Second
)

// Error variables for better error handling and testability.
var (
	ErrMissingAPIKey = errors.New("GROQ_API_KEY not set")
	ErrNoChoices     = errors.New("no choices returned")
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
)

// ClientInterface is the completion contract consumed by the dispatcher.
type ClientInterface interface {
	// Complete sends the assembled prompt and returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// chatService defines the minimal interface for chat completions, allowing
// the real endpoint to be swapped for a mock in tests.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key, overriding $GROQ_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithMaxTokens bounds the completion length in tokens.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// WithTimeout sets the network-level HTTP timeout for completion calls.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the chat completion service for generating replies.
type Client struct {
	chat      chatService
	model     string
	maxTokens int64
}

// openaiChatService adapts the openai-go client to the chatService interface.
type openaiChatService struct {
	client openai.Client
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// NewClient initializes a GenAI client. The API key falls back to the
// GROQ_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL:   DefaultBaseURL,
		Model:     DefaultModel,
		MaxTokens: DefaultMaxTokens,
		Timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("genai.NewClient: API key not configured")
		return nil, ErrMissingAPIKey
	}
	slog.Debug("genai.NewClient: creating client", "base_url", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)

	cli := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	return &Client{
		chat:      &openaiChatService{client: cli},
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete sends the assembled prompt as a single user message and returns
// the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	slog.Debug("genai.Complete: sending completion request", "model", c.model, "prompt_length", len(prompt))

	resp, err := c.chat.Create(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Error("genai.Complete: completion request failed", "error", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.Complete: response contained no choices")
		return "", ErrNoChoices
	}
	out := resp.Choices[0].Message.Content
	slog.Debug("genai.Complete: completion received", "reply_length", len(out))
	return out, nil
}
