package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tcmlookup"

	// DefaultEngine is the browser automation engine.
	// chromedp needs only a Chrome or Chromium binary; playwright also
	// needs the Playwright driver installed.
	DefaultEngine = "chromedp"

	// DefaultListenAddress is the HTTP API listen address.
	DefaultListenAddress = ":5001"

	// DefaultMaxSessions bounds concurrent browser sessions.
	// Each session is a full Chromium process, typically 150-300MB.
	DefaultMaxSessions = 2

	// DefaultLookupsPerMinute limits how often a new lookup may start.
	// The portal is a public government site; keep the load modest.
	DefaultLookupsPerMinute = 30

	// DefaultLogFormat is the log output format.
	DefaultLogFormat = "text"

	// DefaultHistoryLimit is the number of journal entries shown by history.
	DefaultHistoryLimit = 20

	// DefaultShutdownTimeout is how long serve waits for in-flight
	// requests on shutdown, and then again for running lookups to dispose
	// of their browsers. It matches the HTTP write timeout, which covers
	// a full lookup.
	DefaultShutdownTimeout = 5 * time.Minute
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Engine is "chromedp" or "playwright".
	Engine string

	// BrowserPath is the Chrome/Chromium executable.
	// Empty means search PATH.
	BrowserPath string

	// DriverPath is the Playwright driver directory.
	// Empty means the Playwright default location.
	DriverPath string

	// ListenAddress is the HTTP API address in "host:port" form.
	ListenAddress string

	// AllowedOrigins are the CORS origins accepted by the HTTP API.
	// "*" allows any origin.
	AllowedOrigins []string

	// MaxSessions is the maximum number of concurrent browser sessions.
	MaxSessions int

	// LookupsPerMinute limits lookup starts. Zero disables the limit.
	LookupsPerMinute int

	// JournalDir is the directory of the lookup journal database.
	// Defaults to the XDG data directory.
	JournalDir string

	// SaveToJournal enables the lookup journal.
	SaveToJournal bool

	// LogFormat is "text" or "json".
	LogFormat string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file given on the command line.
	// Empty means search the default locations.
	ConfigFilePath string

	// JSONOutput selects JSON output for one-shot commands.
	// Mutually exclusive with MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput selects Markdown output for one-shot commands.
	// Mutually exclusive with JSONOutput.
	MarkdownOutput bool

	// OutputFile is where one-shot commands write their output.
	// Empty means stdout.
	OutputFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Engine:           DefaultEngine,
		ListenAddress:    DefaultListenAddress,
		AllowedOrigins:   []string{"*"},
		MaxSessions:      DefaultMaxSessions,
		LookupsPerMinute: DefaultLookupsPerMinute,
		JournalDir:       XDGDataDir(),
		SaveToJournal:    true,
		LogFormat:        DefaultLogFormat,
	}
}

// XDGDataDir returns the XDG data directory, e.g. ~/.local/share/tcmlookup.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory, e.g. ~/.config/tcmlookup.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Engine {
	case "chromedp", "playwright":
	default:
		return ErrInvalidEngine
	}

	if c.MaxSessions <= 0 {
		return ErrInvalidMaxSessions
	}

	if c.LookupsPerMinute < 0 {
		return ErrInvalidLookupRate
	}

	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return ErrInvalidLogFormat
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}

	if c.SaveToJournal && c.JournalDir == "" {
		return ErrNoJournalDir
	}

	return nil
}
