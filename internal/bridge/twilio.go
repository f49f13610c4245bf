package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSAck is the fixed acknowledgment line for the SMS bridge.
const SMSAck = "Message sent via SMS. Check your phone for response!"

// twilioMessageCreator is the slice of the Twilio REST API the bridge
// uses, extracted for tests.
type twilioMessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioOpts holds configuration options for the Twilio SMS bridge.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
	api        twilioMessageCreator
}

// TwilioOption defines a configuration option for the Twilio SMS bridge.
type TwilioOption func(*TwilioOpts)

// WithTwilioAccountSID sets the account SID.
func WithTwilioAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithTwilioAuthToken sets the auth token.
func WithTwilioAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithTwilioFromNumber sets the sending number.
func WithTwilioFromNumber(from string) TwilioOption {
	return func(o *TwilioOpts) { o.FromNumber = from }
}

// WithTwilioToNumber sets the default recipient number.
func WithTwilioToNumber(to string) TwilioOption {
	return func(o *TwilioOpts) { o.ToNumber = to }
}

// withTwilioAPI injects a message-creation backend, for tests.
func withTwilioAPI(api twilioMessageCreator) TwilioOption {
	return func(o *TwilioOpts) { o.api = api }
}

// TwilioBridge sends the user's text as an SMS through the Twilio REST
// API.
type TwilioBridge struct {
	api  twilioMessageCreator
	from string
	to   string
}

// NewTwilioBridge creates an SMS bridge. Credentials fall back to
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and
// TWILIO_TO_NUMBER.
func NewTwilioBridge(opts ...TwilioOption) (*TwilioBridge, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.ToNumber == "" {
		cfg.ToNumber = os.Getenv("TWILIO_TO_NUMBER")
	}
	slog.Debug("TwilioBridge config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "")

	if cfg.api == nil {
		if cfg.AccountSID == "" || cfg.AuthToken == "" {
			return nil, fmt.Errorf("account SID and auth token must be provided")
		}
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		cfg.api = client.Api
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	return &TwilioBridge{api: cfg.api, from: cfg.FromNumber, to: cfg.ToNumber}, nil
}

// Send delivers text as an SMS. channel overrides the default recipient
// number when non-empty.
func (b *TwilioBridge) Send(ctx context.Context, text, channel string) error {
	if text == "" {
		return ErrEmptyText
	}
	to := b.to
	if channel != "" {
		to = channel
	}
	if to == "" {
		return ErrMissingTarget
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(b.from)
	params.SetBody(text)

	if _, err := b.api.CreateMessage(params); err != nil {
		slog.Error("TwilioBridge.Send failed", "to", to, "error", err)
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}

	slog.Debug("TwilioBridge.Send delivered", "to", to)
	return nil
}

// Ack returns the fixed SMS acknowledgment line.
func (b *TwilioBridge) Ack() string { return SMSAck }

// Name identifies the bridge in logs.
func (b *TwilioBridge) Name() string { return "twilio-sms" }
