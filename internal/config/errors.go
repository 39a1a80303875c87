package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidEngine is returned for an engine other than chromedp or playwright.
	ErrInvalidEngine = errors.New("invalid engine: must be chromedp or playwright")

	// ErrInvalidMaxSessions is returned when the session limit is not positive.
	ErrInvalidMaxSessions = errors.New("invalid max sessions: must be positive")

	// ErrInvalidLookupRate is returned when the lookup rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidLookupRate = errors.New("invalid lookups per minute: must be non-negative")

	// ErrInvalidListenAddress is returned when the listen address is empty.
	ErrInvalidListenAddress = errors.New("invalid listen address: must not be empty")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConflictingOutputFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")

	// ErrNoJournalDir is returned when the journal is enabled without a directory.
	ErrNoJournalDir = errors.New("journal enabled but no journal directory configured")
)
