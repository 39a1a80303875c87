package model

import "errors"

// Lookup failure classes. A *LookupError matches exactly one of these
// through errors.Is, so callers can branch on the class without a type
// assertion.
var (
	// ErrDriverInit means the browser process could not be launched or
	// attached to. It is an environment problem, not a lookup problem.
	ErrDriverInit = errors.New("driver initialization failed")

	// ErrTimeout means an element the page script waits for did not appear
	// within the wait budget.
	ErrTimeout = errors.New("timed out waiting for the portal")

	// ErrUnexpectedScrape covers any other failure while driving the page.
	ErrUnexpectedScrape = errors.New("unexpected scrape failure")

	// ErrExtraction means the captured markup did not have the expected shape.
	ErrExtraction = errors.New("result extraction failed")
)

// ErrorKind classifies a lookup failure.
type ErrorKind int

const (
	// KindUnexpectedScrape is the zero value so unclassified errors fall
	// into the generic bucket.
	KindUnexpectedScrape ErrorKind = iota

	// KindDriverInit is a browser launch or attach failure.
	KindDriverInit

	// KindTimeout is a wait that exceeded its budget.
	KindTimeout

	// KindExtraction is a markup shape violation.
	KindExtraction
)

// String returns the short name of the kind, used as a metrics label.
func (k ErrorKind) String() string {
	switch k {
	case KindDriverInit:
		return "driver_init"
	case KindTimeout:
		return "timeout"
	case KindUnexpectedScrape:
		return "unexpected_scrape"
	case KindExtraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// sentinel returns the package-level error matching this kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindDriverInit:
		return ErrDriverInit
	case KindTimeout:
		return ErrTimeout
	case KindExtraction:
		return ErrExtraction
	default:
		return ErrUnexpectedScrape
	}
}

// LookupError is a classified failure carrying a human-readable diagnostic.
type LookupError struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Step names the operation that failed (for example "enter_frame").
	// Empty when the failure is not tied to a navigation step.
	Step string

	// Message is the diagnostic returned to callers unchanged.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// NewLookupError builds a LookupError of the given kind.
func NewLookupError(kind ErrorKind, step, message string, err error) *LookupError {
	return &LookupError{Kind: kind, Step: step, Message: message, Err: err}
}

// Error returns the diagnostic message.
func (e *LookupError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.sentinel().Error()
}

// Unwrap returns the underlying cause.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *LookupError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf classifies err. Errors that are not a *LookupError are reported
// as KindUnexpectedScrape.
func KindOf(err error) ErrorKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnexpectedScrape
}
