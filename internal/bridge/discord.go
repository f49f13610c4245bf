package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Discord bridge defaults.
const (
	DiscordAck         = "Message sent to the Discord server. Check Discord for response!"
	discordHTTPTimeout = 15 * time.Second
)

// DiscordOpts holds configuration options for the Discord bridge.
type DiscordOpts struct {
	WebhookURL string
	HTTPClient *http.Client
}

// DiscordOption defines a configuration option for the Discord bridge.
type DiscordOption func(*DiscordOpts)

// WithDiscordWebhookURL sets the target webhook.
func WithDiscordWebhookURL(url string) DiscordOption {
	return func(o *DiscordOpts) { o.WebhookURL = url }
}

// WithDiscordHTTPClient injects a custom HTTP client.
func WithDiscordHTTPClient(c *http.Client) DiscordOption {
	return func(o *DiscordOpts) { o.HTTPClient = c }
}

// DiscordBridge posts messages to a Discord channel webhook.
type DiscordBridge struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordBridge creates a Discord bridge, falling back to
// DISCORD_WEBHOOK_URL when no option is provided.
func NewDiscordBridge(opts ...DiscordOption) (*DiscordBridge, error) {
	var cfg DiscordOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: discordHTTPTimeout}
	}
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL must be provided")
	}

	return &DiscordBridge{webhookURL: cfg.WebhookURL, client: cfg.HTTPClient}, nil
}

type discordWebhookRequest struct {
	Content string `json:"content"`
}

// Send posts text to the webhook. channel overrides the configured
// webhook URL when non-empty.
func (b *DiscordBridge) Send(ctx context.Context, text, channel string) error {
	if text == "" {
		return ErrEmptyText
	}
	url := b.webhookURL
	if channel != "" {
		url = channel
	}

	payload, err := json.Marshal(discordWebhookRequest{Content: text})
	if err != nil {
		return fmt.Errorf("failed to encode discord request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		slog.Error("DiscordBridge.Send request failed", "error", err)
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("DiscordBridge.Send rejected", "status", resp.StatusCode)
		return fmt.Errorf("discord webhook rejected message: status %d", resp.StatusCode)
	}

	slog.Debug("DiscordBridge.Send delivered", "text_length", len(text))
	return nil
}

// Ack returns the fixed Discord acknowledgment line.
func (b *DiscordBridge) Ack() string { return DiscordAck }

// Name identifies the bridge in logs.
func (b *DiscordBridge) Name() string { return "discord" }
