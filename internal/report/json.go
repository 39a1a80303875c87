package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/model"
)

// JSONWriter outputs lookup results as JSON for scripts.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonResult is the serialized form of a lookup result.
type jsonResult struct {
	ID         string       `json:"id"`
	Outcome    string       `json:"outcome"`
	Message    string       `json:"message,omitempty"`
	Record     model.Record `json:"record,omitempty"`
	Candidates int          `json:"candidates"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
}

// jsonEntry is the serialized form of a journal entry.
type jsonEntry struct {
	ID         string    `json:"id"`
	KeyDigest  string    `json:"key_digest"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	FailedStep string    `json:"failed_step,omitempty"`
	Candidates int       `json:"candidates"`
}

// Write outputs the result as one JSON object.
func (w *JSONWriter) Write(result *model.LookupResult) (int, error) {
	return w.writeJSON(jsonResult{
		ID:         result.ID,
		Outcome:    result.OutcomeLabel,
		Message:    result.Outcome.Message(),
		Record:     result.Record,
		Candidates: result.Candidates,
		StartedAt:  result.StartedAt,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// WriteHistory outputs the entries as a JSON array.
func (w *JSONWriter) WriteHistory(entries []database.Entry) (int, error) {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{
			ID:         e.ID,
			KeyDigest:  e.KeyDigest,
			StartedAt:  e.StartedAt,
			DurationMS: e.Duration.Milliseconds(),
			Outcome:    e.Outcome,
			ErrorKind:  e.ErrorKind,
			FailedStep: e.FailedStep,
			Candidates: e.Candidates,
		}
	}
	return w.writeJSON(out)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
