package model

import "time"

// Outcome is how a lookup that did not fail ended.
type Outcome int

const (
	// OutcomeFound means a record in the allowed categories was selected.
	OutcomeFound Outcome = iota

	// OutcomeNoMatch means the portal returned records but none was in an
	// allowed category.
	OutcomeNoMatch

	// OutcomeNoRecords means the portal returned an empty table or the
	// "no records" sentinel row.
	OutcomeNoRecords

	// OutcomeNoContent means the results container was present but its
	// markup came back empty.
	OutcomeNoContent
)

// String returns the outcome label used in logs, metrics and the journal.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeNoRecords:
		return "no_records"
	case OutcomeNoContent:
		return "no_content"
	default:
		return "unknown"
	}
}

// Message describes the outcome for people. Found has no message.
func (o Outcome) Message() string {
	switch o {
	case OutcomeNoMatch:
		return "no admission record of type 'Admissao' or 'Concursado' was found"
	case OutcomeNoRecords:
		return "no records found for the given search key"
	case OutcomeNoContent:
		return "no HTML content was returned by the search"
	default:
		return ""
	}
}

// ParseOutcome converts a label produced by String back to an Outcome.
// Unknown labels return false.
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range []Outcome{OutcomeFound, OutcomeNoMatch, OutcomeNoRecords, OutcomeNoContent} {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

// LookupResult is the result of one completed lookup.
type LookupResult struct {
	// ID identifies the lookup in logs and in the journal.
	ID string `json:"id"`

	// SearchKey is never serialized.
	SearchKey SearchKey `json:"-"`

	// Outcome is how the lookup ended.
	Outcome Outcome `json:"-"`

	// OutcomeLabel mirrors Outcome for serialized output.
	OutcomeLabel string `json:"outcome"`

	// Record is the selected record. Nil unless Outcome is OutcomeFound.
	Record Record `json:"record,omitempty"`

	// Candidates is the number of records extracted before filtering.
	Candidates int `json:"candidates"`

	// StartedAt is when the lookup began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the lookup took.
	Duration time.Duration `json:"duration"`
}

// NewLookupResult creates a result with the outcome label filled in.
func NewLookupResult(id string, key SearchKey, outcome Outcome) *LookupResult {
	return &LookupResult{
		ID:           id,
		SearchKey:    key,
		Outcome:      outcome,
		OutcomeLabel: outcome.String(),
	}
}

// Found reports whether a record was selected.
func (r *LookupResult) Found() bool {
	return r.Outcome == OutcomeFound
}
