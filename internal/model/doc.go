// Package model defines the types shared by the lookup packages.
//
// This package contains the following main types:
//   - SearchKey: The value typed into the portal's search field
//   - RawResultMarkup: The captured HTML of the results container
//   - Record and ResultSet: Rows read from the results table
//   - LookupResult and Outcome: The result of one lookup
//   - LookupError and ErrorKind: Classified lookup failures
//
// The types carry no behavior beyond validation and classification, so
// the browser, extraction, selection and reporting packages can share
// them without import cycles.
package model
