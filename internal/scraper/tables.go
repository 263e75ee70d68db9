package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
)

// ParseDocument parses an HTML page
func ParseDocument(page string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// CountTables returns the number of <table> elements on the page
func CountTables(doc *goquery.Document) int {
	return doc.Find("table").Length()
}

// FindPrintLink returns the first anchor pointing at the printable stats page,
// resolved against base.
func FindPrintLink(doc *goquery.Document, base string) (string, bool) {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, PrintPath) {
			link = href
			return false
		}
		return true
	})
	if link == "" {
		return "", false
	}

	baseURL, err := url.Parse(base + "/")
	if err != nil {
		return link, true
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link, true
	}
	return baseURL.ResolveReference(ref).String(), true
}

// ParseTables extracts every table on the page. The first row of a table is its
// header; summary rows are filtered out. Tables with no remaining body rows are
// skipped. A table that cannot be turned into a RawTable is reported in errs and
// does not affect the others.
func ParseTables(doc *goquery.Document) (tables []stats.RawTable, errs []error) {
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			errs = append(errs, fmt.Errorf("table %d: %w", i, stats.ErrNoHeader))
			return
		}

		header := cellTexts(rows.First())
		var body [][]string
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			if cells := cellTexts(row); len(cells) > 0 {
				body = append(body, cells)
			}
		})

		raw, err := stats.NewRawTable(header, stats.FilterSummaryRows(header, body))
		if err != nil {
			errs = append(errs, fmt.Errorf("table %d: %w", i, err))
			return
		}
		if raw.Empty() {
			return
		}
		tables = append(tables, raw)
	})

	return tables, errs
}

// cellTexts returns the trimmed text of a row's th and td cells
func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}
