// Package lookup sequences one employment-contract lookup: it acquires a
// browser session, runs the page script, extracts the results table,
// selects the admission record and always disposes of the session.
//
// Service adds admission control around that sequence. A weighted
// semaphore bounds concurrent browser sessions and a token-bucket limiter
// spaces out session starts. Neither ever retries a lookup.
package lookup
