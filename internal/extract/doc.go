// Package extract turns the portal's results markup into records.
//
// The results container holds a single HTML table whose header cells name
// the columns and whose body rows carry one contract each. The markup is
// not guaranteed to be tidy: header cells can be blank, footer rows can
// have a different number of cells, and an empty search is reported with
// a single "Nenhum registro encontrado" row instead of an empty body.
//
// Extract tolerates all of those. Blank headers get a Column_N label,
// rows whose cell count does not match the header are skipped, and the
// "no records" row yields an empty result rather than an error. Only a
// missing table or a missing table body are treated as failures.
package extract
