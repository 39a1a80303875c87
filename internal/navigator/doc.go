// Package navigator drives the TCM-GO personnel contract search page.
//
// The page script is a fixed sequence of transitions:
//
//	Start -> PageLoaded -> FrameEntered -> QuerySubmitted -> ResultsReady
//	      -> ResultsFound | ResultsEmpty
//
// followed in every case, including failures, by FrameExited.
//
// Each transition is a Step with its own 30 second wait budget. A step
// that runs out of time fails with a model.KindTimeout error; any other
// failure is a model.KindUnexpectedScrape error. Both carry the name of
// the failing step.
//
// The search form lives inside an iframe served from a different path of
// the portal. Failing to find the iframe and failing to find the form
// inside it are both reported as timeouts with the same message; the two
// cases cannot be told apart from the error alone.
//
// Navigation is not cancellable. Once started it runs until it completes
// or a wait budget is exhausted, whatever happens to the caller's context.
package navigator
