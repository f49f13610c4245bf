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

// Telegram bridge defaults.
const (
	TelegramAck         = "Message sent to @EPICTHE_BOT. Check Telegram for response!"
	telegramAPIBase     = "https://api.telegram.org"
	telegramHTTPTimeout = 15 * time.Second
)

// TelegramOpts holds configuration options for the Telegram bridge.
type TelegramOpts struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	HTTPClient *http.Client
}

// TelegramOption defines a configuration option for the Telegram bridge.
type TelegramOption func(*TelegramOpts)

// WithTelegramBotToken sets the bot API token.
func WithTelegramBotToken(token string) TelegramOption {
	return func(o *TelegramOpts) { o.BotToken = token }
}

// WithTelegramChatID sets the default target chat.
func WithTelegramChatID(id string) TelegramOption {
	return func(o *TelegramOpts) { o.ChatID = id }
}

// WithTelegramBaseURL overrides the Bot API base URL, mainly for tests.
func WithTelegramBaseURL(base string) TelegramOption {
	return func(o *TelegramOpts) { o.BaseURL = base }
}

// WithTelegramHTTPClient injects a custom HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(o *TelegramOpts) { o.HTTPClient = c }
}

// TelegramBridge sends messages through the Telegram Bot API sendMessage
// endpoint.
type TelegramBridge struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// NewTelegramBridge creates a Telegram bridge, falling back to
// TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID when options are not provided.
func NewTelegramBridge(opts ...TelegramOption) (*TelegramBridge, error) {
	var cfg TelegramOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BotToken == "" {
		cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.ChatID == "" {
		cfg.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = telegramAPIBase
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: telegramHTTPTimeout}
	}
	slog.Debug("TelegramBridge config loaded", "token_set", cfg.BotToken != "", "chat_id_set", cfg.ChatID != "")

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token must be provided")
	}

	return &TelegramBridge{
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}, nil
}

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramSendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts text to the sendMessage endpoint. channel overrides the
// default chat ID when non-empty.
func (b *TelegramBridge) Send(ctx context.Context, text, channel string) error {
	if text == "" {
		return ErrEmptyText
	}
	chatID := b.chatID
	if channel != "" {
		chatID = channel
	}
	if chatID == "" {
		return ErrMissingTarget
	}

	payload, err := json.Marshal(telegramSendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", b.baseURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		slog.Error("TelegramBridge.Send request failed", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiResp telegramSendResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || !apiResp.OK {
		slog.Error("TelegramBridge.Send rejected", "status", resp.StatusCode, "description", apiResp.Description)
		return fmt.Errorf("telegram API rejected message (status %d): %s", resp.StatusCode, apiResp.Description)
	}

	slog.Debug("TelegramBridge.Send delivered", "chat_id", chatID, "text_length", len(text))
	return nil
}

// Ack returns the fixed Telegram acknowledgment line.
func (b *TelegramBridge) Ack() string { return TelegramAck }

// Name identifies the bridge in logs.
func (b *TelegramBridge) Name() string { return "telegram" }
