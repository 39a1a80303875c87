// Package report renders lookup results and journal history.
//
// Writers:
//   - SimpleWriter: aligned text for the terminal
//   - JSONWriter: JSON for scripts
//   - MarkdownWriter: Markdown tables for sharing
//
// Writers never render the search key. History rows show only the
// journal's key digest.
package report
