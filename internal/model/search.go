package model

import (
	"errors"
	"strings"
)

// ErrEmptySearchKey is returned when a lookup is requested without a search key.
var ErrEmptySearchKey = errors.New("search key is empty")

// SearchKey is the value typed into the portal's search field, usually a
// national taxpayer ID (CPF). It is treated as an opaque token: nothing
// here parses, reformats or normalizes it. The only check performed is
// non-emptiness, and the key is always inserted exactly as received.
type SearchKey string

// Validate reports ErrEmptySearchKey when the key is the empty string.
// Whitespace is a key like any other and is sent to the portal as is.
func (k SearchKey) Validate() error {
	if k == "" {
		return ErrEmptySearchKey
	}
	return nil
}

// String returns the key verbatim.
func (k SearchKey) String() string {
	return string(k)
}

// RawResultMarkup is the outer HTML of the portal's results container,
// captured at the moment at least one result row was present.
// It is produced once per navigation and consumed once by the extractor.
type RawResultMarkup string

// IsEmpty reports whether no markup was captured.
func (m RawResultMarkup) IsEmpty() bool {
	return strings.TrimSpace(string(m)) == ""
}
