package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/config"
	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/lookup"
	"github.com/nao1215/tcmlookup/internal/model"
)

const admissionMarkup = `<div id="panelGroup"><table>
<thead><tr><th>Nome</th><th>Tipo de Contrato</th></tr></thead>
<tbody>
<tr><td>Maria</td><td>Temporario</td></tr>
<tr><td>Maria</td><td>Admissao</td></tr>
</tbody></table></div>`

const emptyResultMarkup = `<div id="panelGroup"><table>
<thead><tr><th>Nome</th></tr></thead>
<tbody><tr><td>Nenhum registro encontrado</td></tr></tbody></table></div>`

// stubSession renders fixed markup for every query.
type stubSession struct {
	markup string
}

func (stubSession) Navigate(context.Context, string) error { return nil }
func (stubSession) EnterFrame(context.Context, string) error { return nil }
func (stubSession) ExitFrame(context.Context) error { return nil }
func (stubSession) WaitPresent(context.Context, string) error { return nil }
func (stubSession) SendKeys(context.Context, string, string) error { return nil }
func (stubSession) Click(context.Context, string) error { return nil }
func (stubSession) Dispose() error { return nil }
func (s stubSession) OuterHTML(context.Context, string) (string, error) { return s.markup, nil }

func stubAcquirer(markup string) lookup.AcquireFunc {
	return func(context.Context) (lookup.Session, error) {
		return stubSession{markup: markup}, nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLookupCmd(t *testing.T) {
	t.Parallel()

	cmd := NewLookupCmd()
	for _, name := range []string{"engine", "browser", "driver", "journal-dir", "no-journal", "json", "markdown", "output"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected error without a search key")
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("expected error for two search keys")
	}
}

func TestRunLookup(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON and journals the lookup", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JournalDir = t.TempDir()
		cfg.JSONOutput = true

		var buf bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&buf)

		err := runLookup(context.Background(), cmd, cfg, discardLogger(), stubAcquirer(admissionMarkup), "123.456.789-00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Outcome string            `json:"outcome"`
			Record  map[string]string `json:"record"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if got.Outcome != "found" {
			t.Errorf("expected outcome found, got %q", got.Outcome)
		}
		if got.Record["Tipo de Contrato"] != "Admissao" {
			t.Errorf("expected the Admissao row, got %v", got.Record)
		}
		if strings.Contains(buf.String(), "123.456.789-00") {
			t.Error("output must not contain the search key")
		}

		j, err := database.Open(cfg.JournalDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		entries, err := j.ForKey(context.Background(), "123.456.789-00", 10)
		if err != nil {
			t.Fatalf("failed to read journal: %v", err)
		}
		if len(entries) != 1 || entries[0].Outcome != "found" {
			t.Errorf("expected one found entry, got %+v", entries)
		}
	})

	t.Run("writes text to a file without journal", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := config.NewConfig()
		cfg.SaveToJournal = false
		cfg.JournalDir = filepath.Join(dir, "journal")
		cfg.OutputFile = filepath.Join(dir, "out", "result.txt")

		err := runLookup(context.Background(), &cobra.Command{}, cfg, discardLogger(), stubAcquirer(emptyResultMarkup), "00000000000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("failed to read output file: %v", err)
		}
		if !strings.Contains(string(content), "no_records") {
			t.Errorf("expected no_records outcome, got:\n%s", content)
		}
		if _, err := os.Stat(cfg.JournalDir); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("journal directory should not be created, stat error: %v", err)
		}
	})

	t.Run("returns classified session failures", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SaveToJournal = false
		acquire := func(context.Context) (lookup.Session, error) {
			return nil, errors.New("no chromium")
		}

		err := runLookup(context.Background(), &cobra.Command{}, cfg, discardLogger(), acquire, "00000000000")
		if !errors.Is(err, model.ErrDriverInit) {
			t.Errorf("expected ErrDriverInit, got %v", err)
		}
	})

	t.Run("rejects an empty key", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SaveToJournal = false

		err := runLookup(context.Background(), &cobra.Command{}, cfg, discardLogger(), stubAcquirer(admissionMarkup), "")
		if !errors.Is(err, model.ErrEmptySearchKey) {
			t.Errorf("expected ErrEmptySearchKey, got %v", err)
		}
	})
}
