package model

import (
	"fmt"
	"sort"
)

// HeaderLabel is the ordered list of column names read from a results table.
type HeaderLabel []string

// placeholderFormat names columns whose header cell is empty.
const placeholderFormat = "Column_%d"

// PlaceholderLabel returns the synthesized label for the column at the
// given zero-based index. Labels are 1-based: index 0 yields "Column_1".
func PlaceholderLabel(index int) string {
	return fmt.Sprintf(placeholderFormat, index+1)
}

// Normalize returns a copy of the header in which every empty label is
// replaced by its placeholder. The receiver is not modified.
func (h HeaderLabel) Normalize() HeaderLabel {
	out := make(HeaderLabel, len(h))
	for i, label := range h {
		if label == "" {
			label = PlaceholderLabel(i)
		}
		out[i] = label
	}
	return out
}

// Record maps a column label to the trimmed text of one data cell.
// Serialized as a flat JSON object.
type Record map[string]string

// Keys returns the record's labels in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value for label and whether it was present.
func (r Record) Get(label string) (string, bool) {
	v, ok := r[label]
	return v, ok
}

// ResultSet is the ordered list of records extracted from one results
// table, in document order.
type ResultSet []Record

// Len returns the number of records.
func (rs ResultSet) Len() int {
	return len(rs)
}

// IsEmpty reports whether the set holds no records.
func (rs ResultSet) IsEmpty() bool {
	return len(rs) == 0
}
