package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

// seedJournal creates a journal in a temporary directory holding one
// entry per outcome, keyed by the outcome label.
func seedJournal(t *testing.T, outcomes ...string) string {
	t.Helper()

	dir := t.TempDir()
	j, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer j.Close()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, outcome := range outcomes {
		e := &database.Entry{
			ID:        "lookup-" + outcome,
			KeyDigest: j.Digest(model.SearchKey(outcome)),
			StartedAt: start.Add(time.Duration(i) * time.Minute),
			Duration:  2 * time.Second,
			Outcome:   outcome,
		}
		if err := j.Append(context.Background(), e); err != nil {
			t.Fatalf("failed to append entry: %v", err)
		}
	}
	return dir
}

func runHistory(t *testing.T, args ...string) string {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"history", "--config", writeConfigFile(t, "log_format: text\n")}, args...))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	return buf.String()
}

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	flag := cmd.Flags().Lookup("limit")
	if flag == nil {
		t.Fatal("expected limit flag")
	}
	if flag.Shorthand != "n" || flag.DefValue != "20" {
		t.Errorf("unexpected limit flag: -%s default %s", flag.Shorthand, flag.DefValue)
	}
	for _, name := range []string{"key", "summary", "journal-dir", "json", "markdown", "output"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing journal prints empty history", func(t *testing.T) {
		t.Parallel()

		out := runHistory(t, "--journal-dir", t.TempDir())
		if !strings.Contains(out, "No lookups recorded") {
			t.Errorf("expected empty history, got:\n%s", out)
		}
	})

	t.Run("lists recent entries as JSON newest first", func(t *testing.T) {
		t.Parallel()

		dir := seedJournal(t, "found", "no_match", "no_records")
		out := runHistory(t, "--journal-dir", dir, "--json", "-n", "2")

		var entries []struct {
			ID      string `json:"id"`
			Outcome string `json:"outcome"`
		}
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, out)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Outcome != "no_records" || entries[1].Outcome != "no_match" {
			t.Errorf("unexpected order: %+v", entries)
		}
	})

	t.Run("filters by key", func(t *testing.T) {
		t.Parallel()

		dir := seedJournal(t, "found", "no_match")
		out := runHistory(t, "--journal-dir", dir, "--json", "--key", "found")

		var entries []struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, out)
		}
		if len(entries) != 1 || entries[0].ID != "lookup-found" {
			t.Errorf("expected only lookup-found, got %+v", entries)
		}
	})

	t.Run("summary counts outcomes", func(t *testing.T) {
		t.Parallel()

		dir := seedJournal(t, "found", "no_match")
		out := runHistory(t, "--journal-dir", dir, "--summary")

		for _, want := range []string{"found        1", "no_match     1", "total        2"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in summary, got:\n%s", want, out)
			}
		}
	})
}
