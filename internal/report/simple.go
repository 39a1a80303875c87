package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the lookup ID and timing to result output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result.
func (w *SimpleWriter) Write(result *model.LookupResult) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "EMPLOYMENT CONTRACT LOOKUP")

	if w.verbose {
		fmt.Fprintf(&sb, "Lookup ID:  %s\n", result.ID)
		fmt.Fprintf(&sb, "Date:       %s\n", result.StartedAt.Format(timeLayout))
		fmt.Fprintf(&sb, "Duration:   %s\n", formatDuration(result.Duration))
	}
	fmt.Fprintf(&sb, "Outcome:    %s\n", result.OutcomeLabel)
	fmt.Fprintf(&sb, "Records:    %d\n\n", result.Candidates)

	if result.Found() {
		rows := recordRows(result.Record)
		width := 0
		for _, r := range rows {
			width = max(width, len([]rune(r[0])))
		}
		for _, r := range rows {
			fmt.Fprintf(&sb, "  %s%s  %s\n", r[0], strings.Repeat(" ", width-len([]rune(r[0]))), r[1])
		}
	} else {
		fmt.Fprintf(&sb, "  %s\n", result.Outcome.Message())
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs one line per entry.
func (w *SimpleWriter) WriteHistory(entries []database.Entry) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "LOOKUP HISTORY")

	if len(entries) == 0 {
		sb.WriteString("  No lookups recorded\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&sb, "  %s  %-12s  %-10s  %3d  %s\n",
			e.StartedAt.Format(timeLayout),
			shortDigest(e.KeyDigest),
			formatDuration(e.Duration),
			e.Candidates,
			entryStatus(e),
		)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func writeBanner(sb *strings.Builder, title string) {
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}
