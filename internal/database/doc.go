// Package database provides the SQLite lookup journal.
//
// The journal records one row per lookup: when it ran, how long it took,
// how it ended, and which step failed if it did. The search key is stored
// only as a BLAKE2b digest keyed with a random per-journal secret, so the
// journal can answer "how often was this key looked up" without holding
// the key itself. Records returned by the portal are never stored.
//
// The journal uses modernc.org/sqlite, which needs no cgo, and opens a
// single connection in WAL mode.
package database
