package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/EpicTechAI/EpicChat/internal/api"
	"github.com/EpicTechAI/EpicChat/internal/bridge"
	"github.com/EpicTechAI/EpicChat/internal/dispatch"
	"github.com/EpicTechAI/EpicChat/internal/genai"
	"github.com/EpicTechAI/EpicChat/internal/lockfile"
	"github.com/EpicTechAI/EpicChat/internal/models"
	"github.com/EpicTechAI/EpicChat/internal/quests"
	"github.com/EpicTechAI/EpicChat/internal/scheduler"
	"github.com/EpicTechAI/EpicChat/internal/speech"
	"github.com/EpicTechAI/EpicChat/internal/store"
	"github.com/EpicTechAI/EpicChat/internal/streak"
	"github.com/EpicTechAI/EpicChat/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for EpicChat state data
	DefaultStateDir = "/var/lib/epicchat"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "epicchat.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping EpicChat with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "bridge", *flags.bridgeKind)
	if err := run(flags); err != nil {
		slog.Error("EpicChat failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("EpicChat exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	GroqKey     string
	Model       string
	APIAddr     string
	Mode        string
	BridgeKind  string
	BridgeChan  string
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	groqKey    *string
	model      *string
	apiAddr    *string
	mode       *string
	bridgeKind *string
	bridgeChan *string
	qrOutput   *string
	numeric    *bool
}

// initializeLogger sets up structured logging. Debug level is the
// default; set EPICCHAT_DEBUG=false to quiet it down to info.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("EPICCHAT_DEBUG", true) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("EPICCHAT_STATE_DIR"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		Model:       os.Getenv("GROQ_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
		Mode:        os.Getenv("EPICCHAT_MODE"),
		BridgeKind:  os.Getenv("EPICCHAT_BRIDGE"),
		BridgeChan:  os.Getenv("EPICCHAT_BRIDGE_CHANNEL"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No EPICCHAT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	if config.Mode == "" {
		config.Mode = string(models.ModeAI)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"EPICCHAT_STATE_DIR", config.StateDir,
		"GROQ_API_KEY_SET", config.GroqKey != "",
		"API_ADDR", config.APIAddr,
		"EPICCHAT_MODE", config.Mode,
		"EPICCHAT_BRIDGE", config.BridgeKind)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for EpicChat data (overrides $EPICCHAT_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the state store (overrides $DATABASE_URL)"),
		groqKey:    flag.String("groq-api-key", config.GroqKey, "Groq API key (overrides $GROQ_API_KEY)"),
		model:      flag.String("model", config.Model, "chat completion model (overrides $GROQ_MODEL)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		mode:       flag.String("mode", config.Mode, "initial bot mode: ai or alternate-bot (overrides $EPICCHAT_MODE)"),
		bridgeKind: flag.String("bridge", config.BridgeKind, "alternate bot bridge: telegram, discord, twilio or whatsapp (overrides $EPICCHAT_BRIDGE)"),
		bridgeChan: flag.String("bridge-channel", config.BridgeChan, "alternate bot target channel (overrides $EPICCHAT_BRIDGE_CHANNEL)"),
		qrOutput:   flag.String("qr-output", "", "path to write WhatsApp login QR code"),
		numeric:    flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"groqKeySet", *flags.groqKey != "",
		"apiAddr", *flags.apiAddr,
		"mode", *flags.mode,
		"bridge", *flags.bridgeKind)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) != "postgres" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStateStore selects the state store backend from the DSN.
func buildStateStore(flags Flags) (store.StateStore, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// resolveBotMode validates the configured initial mode string.
func resolveBotMode(raw string) (models.BotMode, error) {
	m := models.BotMode(raw)
	if !models.IsValidBotMode(m) {
		return "", fmt.Errorf("unrecognized bot mode %q (valid: %s, %s): %w", raw, models.ModeAI, models.ModeAlternateBot, models.ErrInvalidMode)
	}
	return m, nil
}

// buildBridge constructs the configured alternate-bot bridge, or nil when
// none is configured.
func buildBridge(flags Flags) (bridge.Bridge, error) {
	switch *flags.bridgeKind {
	case "", "none":
		return nil, nil
	case "telegram":
		return bridge.NewTelegramBridge()
	case "discord":
		return bridge.NewDiscordBridge()
	case "twilio":
		return bridge.NewTwilioBridge()
	case "whatsapp":
		var waOpts []bridge.WhatsAppOption
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, bridge.WithWhatsAppQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, bridge.WithWhatsAppNumericCode())
		}
		return bridge.NewWhatsAppBridge(waOpts...)
	}
	return nil, bridge.ErrBridgeDisabled
}

// run wires the modules together and serves the API until interrupted.
func run(flags Flags) error {
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := buildStateStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	var genaiOpts []genai.Option
	if *flags.groqKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.groqKey))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	aiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return err
	}

	tracker, err := streak.NewTracker(st, time.Now())
	if err != nil {
		return err
	}
	questMgr := quests.NewManager(st, nil)

	dispatchOpts := []dispatch.Option{
		dispatch.WithAIResponder(dispatch.NewAIResponder(aiClient, "")),
		dispatch.WithTracker(tracker),
		dispatch.WithSpeaker(speech.NoopSpeaker{}),
	}
	br, err := buildBridge(flags)
	if err != nil {
		return err
	}
	if br != nil {
		slog.Info("Alternate bot bridge configured", "bridge", br.Name())
		dispatchOpts = append(dispatchOpts, dispatch.WithAlternateResponder(dispatch.NewAlternateBotResponder(br, *flags.bridgeChan)))
	}
	mode, err := resolveBotMode(*flags.mode)
	if err != nil {
		return err
	}
	dispatchOpts = append(dispatchOpts, dispatch.WithMode(mode))
	dispatcher := dispatch.NewDispatcher(dispatchOpts...)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.ScheduleQuestRotation(questMgr); err != nil {
		return err
	}

	var apiOpts []api.Option
	apiOpts = append(apiOpts,
		api.WithDispatcher(dispatcher),
		api.WithTracker(tracker),
		api.WithQuests(questMgr),
		api.WithStore(st),
	)
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	server, err := api.NewServer(apiOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Voice input loop. The noop transcriber yields no transcripts, so
	// this returns immediately until a real engine is plugged in.
	go func() {
		if err := dispatcher.Listen(ctx, speech.NoopTranscriber{}); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Voice input loop exited", "error", err)
		}
	}()

	return server.Run(ctx)
}
