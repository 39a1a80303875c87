package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/config"
	"github.com/nao1215/tcmlookup/internal/lookup"
	"github.com/nao1215/tcmlookup/internal/model"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <search-key>",
		Short: "Look up one admission record",
		Long: `Lookup runs a single search on the portal and prints the first record
whose contract type is Admissao or Concursado.

The search key is typed into the portal exactly as given.

Examples:
  # Print the record as text
  tcmlookup lookup 123.456.789-00

  # Write JSON to a file
  tcmlookup lookup --json -o result.json 123.456.789-00

  # Do not record the lookup in the journal
  tcmlookup lookup --no-journal 123.456.789-00`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}

	addBrowserFlags(cmd)
	addJournalFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg, slog.LevelWarn)
	slog.SetDefault(logger)

	opts, err := browserOptions(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runLookup(ctx, cmd, cfg, logger, lookup.BrowserAcquirer(opts), model.SearchKey(args[0]))
}

// runLookup performs one lookup with sessions from acquire and writes
// the result.
func runLookup(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, acquire lookup.AcquireFunc, key model.SearchKey) (err error) {
	svcOpts := []lookup.Option{
		lookup.WithLogger(logger),
		lookup.WithMaxSessions(1),
	}

	journal, err := openJournal(cfg)
	if err != nil {
		logger.Warn("continuing without journal", "error", err)
	}
	if journal != nil {
		defer closeWith(&err, journal.Close)
		svcOpts = append(svcOpts, lookup.WithJournal(journal))
	}

	result, err := lookup.New(acquire, svcOpts...).Lookup(ctx, key)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeWith(&err, closeOut)

	if _, err := newWriter(cfg, out).Write(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
