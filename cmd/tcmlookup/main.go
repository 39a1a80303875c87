// Package main provides the entry point for the tcmlookup CLI.
//
// tcmlookup looks up employment-contract records on the TCM-GO
// transparency portal by driving a headless browser through the
// portal's search form.
//
// Usage:
//
//	tcmlookup serve
//	tcmlookup lookup <search-key>
//	tcmlookup history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
