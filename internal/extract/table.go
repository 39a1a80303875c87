package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/tcmlookup/internal/model"
)

// NoRecordsSentinel is the text the portal renders in the only body row
// when a search matches nothing.
const NoRecordsSentinel = "Nenhum registro encontrado"

// Diagnostics attached to extraction failures.
const (
	MsgNoTable = "no results table in processed markup"
	MsgNoBody  = "table body not found"
)

// Extract parses markup and returns the records of its first table in
// document order.
//
// An empty ResultSet with a nil error is returned when the body has no
// rows or only the "no records" row. A *model.LookupError of kind
// model.KindExtraction is returned when there is no table or the table
// has no body. Extract is deterministic and does not retain markup.
func Extract(markup model.RawResultMarkup) (model.ResultSet, error) {
	root, err := html.Parse(strings.NewReader(string(markup)))
	if err != nil {
		return nil, model.NewLookupError(model.KindExtraction, "", "failed to parse result markup: "+err.Error(), err)
	}
	doc := goquery.NewDocumentFromNode(root)

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, model.NewLookupError(model.KindExtraction, "", MsgNoTable, nil)
	}

	header := readHeader(table)

	body := table.ChildrenFiltered("tbody").First()
	if body.Length() == 0 || !declaresBody(markup) {
		return nil, model.NewLookupError(model.KindExtraction, "", MsgNoBody, nil)
	}

	rows := body.ChildrenFiltered("tr")
	if isEmptyBody(rows) {
		return model.ResultSet{}, nil
	}

	results := make(model.ResultSet, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		if rec, ok := readRow(row, header); ok {
			results = append(results, rec)
		}
	})

	return results, nil
}

// declaresBody reports whether the first table in markup has a tbody
// start tag of its own. The parser inserts a tbody around bare rows, so
// the parsed tree cannot answer this.
func declaresBody(markup model.RawResultMarkup) bool {
	z := html.NewTokenizer(strings.NewReader(string(markup)))
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "table":
				depth++
			case tag == "tbody" && depth == 1:
				return true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "table" && depth > 0 {
				depth--
				if depth == 0 {
					return false
				}
			}
		}
	}
}

// readHeader collects the header cells of table in document order and
// substitutes placeholders for blank labels.
func readHeader(table *goquery.Selection) model.HeaderLabel {
	cells := table.Find("th")
	header := make(model.HeaderLabel, 0, cells.Length())
	cells.Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.TrimSpace(th.Text()))
	})
	return header.Normalize()
}

// isEmptyBody reports whether rows is the portal's representation of an
// empty result.
func isEmptyBody(rows *goquery.Selection) bool {
	switch rows.Length() {
	case 0:
		return true
	case 1:
		return strings.Contains(rows.First().Text(), NoRecordsSentinel)
	default:
		return false
	}
}

// readRow zips the row's cells with header. Rows whose cell count differs
// from the header, and every row of a table without headers, are skipped.
func readRow(row *goquery.Selection, header model.HeaderLabel) (model.Record, bool) {
	cells := row.ChildrenFiltered("td")
	if len(header) == 0 || cells.Length() != len(header) {
		return nil, false
	}

	rec := make(model.Record, len(header))
	cells.Each(func(i int, td *goquery.Selection) {
		rec[header[i]] = strings.TrimSpace(td.Text())
	})
	return rec, true
}
