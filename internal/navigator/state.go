package navigator

// State is a position in the page script.
type State int

const (
	// StateStart is the state before anything was loaded.
	StateStart State = iota

	// StatePageLoaded means the portal page was requested.
	StatePageLoaded

	// StateFrameEntered means queries now target the search iframe.
	StateFrameEntered

	// StateQuerySubmitted means the key was typed and the search submitted.
	StateQuerySubmitted

	// StateResultsReady means at least one result row is present.
	StateResultsReady

	// StateResultsEmpty means the results container had no markup.
	StateResultsEmpty

	// StateResultsFound means the results container markup was captured.
	StateResultsFound

	// StateFrameExited means queries target the top-level page again.
	StateFrameExited
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePageLoaded:
		return "page_loaded"
	case StateFrameEntered:
		return "frame_entered"
	case StateQuerySubmitted:
		return "query_submitted"
	case StateResultsReady:
		return "results_ready"
	case StateResultsEmpty:
		return "results_empty"
	case StateResultsFound:
		return "results_found"
	case StateFrameExited:
		return "frame_exited"
	default:
		return "unknown"
	}
}
