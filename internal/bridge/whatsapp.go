package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/EpicTechAI/EpicChat/internal/store"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// WhatsApp bridge defaults.
const (
	WhatsAppAck = "Message sent via WhatsApp. Check WhatsApp for response!"

	// DefaultWhatsAppDBPath is the default whatsmeow session database path.
	DefaultWhatsAppDBPath = "/var/lib/epicchat/whatsmeow.db"
	// jidSuffix is the WhatsApp JID suffix for regular users.
	jidSuffix = "s.whatsapp.net"
)

// WhatsAppOpts holds configuration options for the WhatsApp bridge.
type WhatsAppOpts struct {
	DBDSN       string // whatsmeow session database connection string
	ToNumber    string // default recipient phone number
	QRPath      string // path to write the login QR code
	NumericCode bool   // use a numeric login code instead of a QR code
}

// WhatsAppOption defines a configuration option for the WhatsApp bridge.
type WhatsAppOption func(*WhatsAppOpts)

// WithWhatsAppDBDSN sets the whatsmeow session database connection string.
func WithWhatsAppDBDSN(dsn string) WhatsAppOption {
	return func(o *WhatsAppOpts) { o.DBDSN = dsn }
}

// WithWhatsAppToNumber sets the default recipient phone number.
func WithWhatsAppToNumber(to string) WhatsAppOption {
	return func(o *WhatsAppOpts) { o.ToNumber = to }
}

// WithWhatsAppQRCodeOutput writes the login QR code to the given path
// instead of stdout.
func WithWhatsAppQRCodeOutput(path string) WhatsAppOption {
	return func(o *WhatsAppOpts) { o.QRPath = path }
}

// WithWhatsAppNumericCode uses a numeric login code instead of a QR code.
func WithWhatsAppNumericCode() WhatsAppOption {
	return func(o *WhatsAppOpts) { o.NumericCode = true }
}

// WhatsAppBridge is a send-only wrapper over the whatsmeow client.
type WhatsAppBridge struct {
	waClient *whatsmeow.Client
	to       string
}

// NewWhatsAppBridge connects (and if needed logs in over QR) a whatsmeow
// client backed by the configured session database.
func NewWhatsAppBridge(opts ...WhatsAppOption) (*WhatsAppBridge, error) {
	var cfg WhatsAppOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("WhatsAppBridge options set", "DBDSN_set", cfg.DBDSN != "", "QRPath_set", cfg.QRPath != "", "NumericCode", cfg.NumericCode)

	dbDSN := cfg.DBDSN
	if dbDSN == "" {
		dbDSN = DefaultWhatsAppDBPath
		slog.Debug("No WhatsApp database DSN provided, using default SQLite path", "default_path", dbDSN)
	}

	var dbDriver string
	if store.DetectDSNType(dbDSN) == "postgres" {
		dbDriver = "postgres"
	} else {
		dbDriver = "sqlite3"
		if !strings.Contains(dbDSN, "foreign_keys") {
			slog.Warn("SQLite database for WhatsApp does not appear to have foreign keys enabled. "+
				"The whatsmeow library strongly recommends enabling foreign keys for data integrity.",
				"dsn_example", "file:"+dbDSN+"?_foreign_keys=on")
		}
	}

	ctx := context.Background()
	container, err := sqlstore.New(ctx, dbDriver, dbDSN, waLog.Stdout("Database", "INFO", true))
	if err != nil {
		slog.Error("Failed to initialize WhatsApp session store", "error", err)
		return nil, fmt.Errorf("failed to initialize WhatsApp session store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		slog.Error("Failed to get device from WhatsApp session store", "error", err)
		return nil, fmt.Errorf("failed to get device from WhatsApp session store: %w", err)
	}

	waClient := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	if waClient.Store.ID == nil {
		slog.Info("WhatsApp login required; starting QR code flow")
		qrChan, _ := waClient.GetQRChannel(ctx)
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp during login", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp during login: %w", err)
		}
		writer := io.Writer(os.Stdout)
		if cfg.QRPath != "" {
			f, ferr := os.Create(cfg.QRPath)
			if ferr != nil {
				return nil, fmt.Errorf("failed to create QR file: %w", ferr)
			}
			defer f.Close()
			writer = f
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				if cfg.NumericCode {
					fmt.Fprintln(writer, evt.Code)
				} else {
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, writer)
				}
			} else {
				slog.Debug("WhatsApp login event", "event", evt.Event)
			}
		}
	} else {
		slog.Debug("WhatsApp already logged in, connecting to server")
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp server", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp server: %w", err)
		}
	}

	slog.Info("WhatsAppBridge connected")
	return &WhatsAppBridge{waClient: waClient, to: cfg.ToNumber}, nil
}

// Send delivers text to the recipient. channel overrides the default
// phone number when non-empty.
func (b *WhatsAppBridge) Send(ctx context.Context, text, channel string) error {
	if b.waClient == nil {
		return ErrBridgeDisabled
	}
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

	jid := types.NewJID(to, jidSuffix)
	msg := &waE2E.Message{Conversation: &text}
	if _, err := b.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("WhatsAppBridge.Send failed", "to", to, "error", err)
		return fmt.Errorf("failed to send WhatsApp message to %s: %w", to, err)
	}

	slog.Debug("WhatsAppBridge.Send delivered", "to", to)
	return nil
}

// Ack returns the fixed WhatsApp acknowledgment line.
func (b *WhatsAppBridge) Ack() string { return WhatsAppAck }

// Name identifies the bridge in logs.
func (b *WhatsAppBridge) Name() string { return "whatsapp" }
