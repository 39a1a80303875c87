// Package selector picks the record a lookup reports from an extracted
// result set.
package selector

import (
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/tcmlookup/internal/model"
)

// DefaultCategoryField is the portal column holding the contract category.
const DefaultCategoryField = "Tipo de Contrato"

// DefaultCategories are the contract categories that count as an admission.
var DefaultCategories = []string{"Admissao", "Concursado"}

// Selector filters records by an allow-list of category values.
// The zero value matches nothing.
type Selector struct {
	field   string
	allowed map[string]struct{}
	labels  []string
}

// New returns a Selector reading the category from field and accepting
// the given values. Values are compared after NFC normalization so that
// composed and decomposed accents are treated alike.
func New(field string, allowed ...string) *Selector {
	s := &Selector{
		field:   norm.NFC.String(field),
		allowed: make(map[string]struct{}, len(allowed)),
		labels:  make([]string, 0, len(allowed)),
	}
	for _, v := range allowed {
		s.allowed[norm.NFC.String(v)] = struct{}{}
		s.labels = append(s.labels, v)
	}
	return s
}

// Default returns the Selector for admission records.
func Default() *Selector {
	return New(DefaultCategoryField, DefaultCategories...)
}

// Field returns the category column name.
func (s *Selector) Field() string {
	return s.field
}

// Allowed returns the accepted category values in the order given to New.
func (s *Selector) Allowed() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Match reports whether rec's category is in the allow-list.
func (s *Selector) Match(rec model.Record) bool {
	if s == nil || len(s.allowed) == 0 {
		return false
	}
	v, ok := s.lookup(rec)
	if !ok {
		return false
	}
	_, ok = s.allowed[norm.NFC.String(v)]
	return ok
}

// Select returns the first record in rs, by document order, whose category
// is allowed. It returns false when rs is empty or nothing matches.
func (s *Selector) Select(rs model.ResultSet) (model.Record, bool) {
	for _, rec := range rs {
		if s.Match(rec) {
			return rec, true
		}
	}
	return nil, false
}

// lookup finds the category value, falling back to a normalized key
// comparison when the record's label uses a different Unicode form.
func (s *Selector) lookup(rec model.Record) (string, bool) {
	if v, ok := rec[s.field]; ok {
		return v, true
	}
	for k, v := range rec {
		if norm.NFC.String(k) == s.field {
			return v, true
		}
	}
	return "", false
}
