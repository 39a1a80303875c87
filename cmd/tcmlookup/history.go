package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/config"
	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

// defaultHistoryLimit is the default for --limit.
const defaultHistoryLimit = config.DefaultHistoryLimit

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lookups from the journal",
		Long: `History lists recent lookups recorded in the journal, newest first.

The journal keeps a keyed digest of each search key, never the key
itself, so entries for the same key share a digest.

Examples:
  # Show the last 20 lookups
  tcmlookup history

  # Show the lookups for one key
  tcmlookup history --key 123.456.789-00

  # Show outcome totals
  tcmlookup history --summary`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of entries to show")
	cmd.Flags().String("key", "",
		"Only show lookups for this search key")
	cmd.Flags().Bool("summary", false,
		"Show the number of lookups per outcome instead of entries")
	cmd.Flags().String("journal-dir", "",
		"Lookup journal directory (default: XDG data directory)")
	addOutputFlags(cmd)

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	key, err := cmd.Flags().GetString("key")
	if err != nil {
		return err
	}
	summary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeWith(&err, closeOut)

	dbPath := filepath.Join(cfg.JournalDir, database.FileName)
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		if summary {
			_, err := fmt.Fprintln(out, "No lookups recorded.")
			return err
		}
		_, err := newWriter(cfg, out).WriteHistory(nil)
		return err
	}

	journal, err := database.Open(cfg.JournalDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer closeWith(&err, journal.Close)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if summary {
		counts, err := journal.CountByOutcome(ctx)
		if err != nil {
			return err
		}
		return writeSummary(out, counts)
	}

	var entries []database.Entry
	if key != "" {
		entries, err = journal.ForKey(ctx, model.SearchKey(key), limit)
	} else {
		entries, err = journal.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	_, err = newWriter(cfg, out).WriteHistory(entries)
	return err
}

// writeSummary prints one "outcome count" line per outcome, sorted by label.
func writeSummary(w io.Writer, counts map[string]int) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No lookups recorded.")
		return err
	}
	total := 0
	for _, outcome := range slices.Sorted(maps.Keys(counts)) {
		total += counts[outcome]
		if _, err := fmt.Fprintf(w, "%-12s %d\n", outcome, counts[outcome]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%-12s %d\n", "total", total)
	return err
}
