package report

import (
	"io"

	"github.com/nao1215/markdown"

	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

// MarkdownWriter outputs lookup results as Markdown for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the result.
func (w *MarkdownWriter) Write(result *model.LookupResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Employment Contract Lookup")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Lookup ID", "`" + result.ID + "`"},
			{"Date", result.StartedAt.Format(timeLayout)},
			{"Outcome", result.OutcomeLabel},
			{"Records Returned", itoa(result.Candidates)},
			{"Duration", formatDuration(result.Duration)},
		},
	})
	md.PlainText("")

	if result.Found() {
		md.H2("Admission Record")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Field", "Value"},
			Rows:   recordRows(result.Record),
		})
		md.PlainText("")
	} else {
		md.Note(result.Outcome.Message())
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteHistory outputs the entries as a table.
func (w *MarkdownWriter) WriteHistory(entries []database.Entry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Lookup History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No lookups recorded.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.StartedAt.Format(timeLayout),
				"`" + shortDigest(e.KeyDigest) + "`",
				entryStatus(e),
				itoa(e.Candidates),
				formatDuration(e.Duration),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Key", "Outcome", "Records", "Duration"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by tcmlookup from the TCM-GO transparency portal*")
}
