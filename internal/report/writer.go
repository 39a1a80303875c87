package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

// timeLayout is used for every timestamp a writer renders.
const timeLayout = "2006-01-02 15:04:05 MST"

// Writer renders lookup results and journal history.
type Writer interface {
	// Write outputs one lookup result.
	Write(result *model.LookupResult) (int, error)

	// WriteHistory outputs journal entries in the order given.
	WriteHistory(entries []database.Entry) (int, error)
}

// MultiWriter writes to several Writers in turn and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all Writers.
func (m *MultiWriter) Write(result *model.LookupResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the entries to all Writers.
func (m *MultiWriter) WriteHistory(entries []database.Entry) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// recordRows returns label/value pairs of rec ordered by label.
func recordRows(rec model.Record) [][]string {
	keys := rec.Keys()
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, rec[k]}
	}
	return rows
}

// entryStatus is the outcome column of a history row.
func entryStatus(e database.Entry) string {
	if e.Outcome != database.OutcomeError {
		return e.Outcome
	}
	if e.FailedStep == "" {
		return "error (" + e.ErrorKind + ")"
	}
	return "error (" + e.ErrorKind + " at " + e.FailedStep + ")"
}

// shortDigest abbreviates a key digest for display.
func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
