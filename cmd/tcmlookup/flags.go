package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/browser"
	"github.com/nao1215/tcmlookup/internal/config"
	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/log"
	"github.com/nao1215/tcmlookup/internal/report"
)

// dotEnvFile is loaded into the environment before configuration is built.
const dotEnvFile = ".env"

func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("engine", "E", "",
		"Browser engine: chromedp or playwright (default chromedp)")
	cmd.Flags().String("browser", "",
		"Chrome/Chromium executable (default: search PATH)")
	cmd.Flags().String("driver", "",
		"Playwright driver directory (playwright engine only)")
}

func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("journal-dir", "",
		"Lookup journal directory (default: XDG data directory)")
	cmd.Flags().Bool("no-journal", false,
		"Do not record lookups in the journal")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the given file (creates directories if needed)")
}

// buildConfig resolves the configuration for cmd: defaults, then the
// configuration file, then the environment, then flags the user set.
func buildConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.ConfigFilePath, err = stringFlag(cmd, "config"); err != nil {
		return nil, err
	}

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		f.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	config.ApplyEnv(cfg, lookupEnv)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies the flags the user set onto cfg. Flags a command
// does not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"engine", &cfg.Engine},
		{"browser", &cfg.BrowserPath},
		{"driver", &cfg.DriverPath},
		{"listen", &cfg.ListenAddress},
		{"journal-dir", &cfg.JournalDir},
		{"log-format", &cfg.LogFormat},
		{"output", &cfg.OutputFile},
	}
	for _, f := range strs {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	cfg.Engine = strings.ToLower(cfg.Engine)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	ints := []struct {
		name string
		dst  *int
	}{
		{"max-sessions", &cfg.MaxSessions},
		{"rate", &cfg.LookupsPerMinute},
	}
	for _, f := range ints {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetInt(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if cmd.Flags().Changed("origin") {
		v, err := cmd.Flags().GetStringSlice("origin")
		if err != nil {
			return err
		}
		cfg.AllowedOrigins = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"verbose", &cfg.Verbose},
		{"json", &cfg.JSONOutput},
		{"markdown", &cfg.MarkdownOutput},
	}
	for _, f := range bools {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if cmd.Flags().Changed("no-journal") {
		off, err := cmd.Flags().GetBool("no-journal")
		if err != nil {
			return err
		}
		cfg.SaveToJournal = !off
	}
	return nil
}

// stringFlag returns a string flag, or "" if cmd does not define it.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}

// loadConfig loads .env, builds and validates the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, err)
	}
	cfg, err := buildConfig(cmd, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newLogger creates the secure logger for a command. base is the level
// used without --verbose.
func newLogger(cmd *cobra.Command, cfg *config.Config, base slog.Level) *slog.Logger {
	return log.NewSecureLogger(cmd.ErrOrStderr(), cfg.LogFormat, log.LevelFor(cfg.Verbose, base))
}

// browserOptions converts the configuration to browser session options.
func browserOptions(cfg *config.Config, logger *slog.Logger) (browser.Options, error) {
	engine, err := browser.ParseEngine(cfg.Engine)
	if err != nil {
		return browser.Options{}, err
	}
	return browser.Options{
		Engine:      engine,
		BrowserPath: cfg.BrowserPath,
		DriverPath:  cfg.DriverPath,
		Logger:      logger,
	}, nil
}

// openJournal opens the lookup journal, creating it if needed. It
// returns nil when the journal is disabled.
func openJournal(cfg *config.Config) (*database.Journal, error) {
	if !cfg.SaveToJournal {
		return nil, nil
	}
	j, err := database.Open(cfg.JournalDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// openOutput returns the destination for command output: the configured
// file (mode 0600) or stdout. The returned close function is never nil.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.OutputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newWriter picks the report writer for the configured output format.
func newWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONOutput:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownOutput:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// closeWith closes c and joins its error into *errp.
func closeWith(errp *error, c func() error) {
	*errp = errors.Join(*errp, c())
}
