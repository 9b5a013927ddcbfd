package engine

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/yokatlas/normalize"
)

var (
	matchHeaderCell = cascadia.MustCompile("thead tr th")
	matchBodyRow    = cascadia.MustCompile("tbody tr")
	matchCell       = cascadia.MustCompile("td")
	matchPageLink   = cascadia.MustCompile("li a, a.paginate_button")
)

// parseTable turns rendered listing markup into labeled rows. Each cell is
// keyed by the canonical label of the header at the same position; cells
// past the last header are dropped. DataTables' "no data" placeholder row
// yields no rows.
func parseTable(markup string) ([]normalize.ScrapedRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	var labels []string
	doc.FindMatcher(matchHeaderCell).Each(func(_ int, th *goquery.Selection) {
		labels = append(labels, normalize.Label(th.Text()))
	})
	if len(labels) == 0 {
		return nil, errors.New("table has no header cells")
	}

	var rows []normalize.ScrapedRow
	doc.FindMatcher(matchBodyRow).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.FindMatcher(matchCell)
		if cells.Length() == 1 && cells.HasClass("dataTables_empty") {
			return
		}
		row := make(normalize.ScrapedRow, len(labels))
		cells.Each(func(i int, td *goquery.Selection) {
			if i < len(labels) {
				row[labels[i]] = strings.Join(strings.Fields(td.Text()), " ")
			}
		})
		rows = append(rows, row)
	})
	return rows, nil
}

// parsePageCount returns the highest page number shown in a pagination
// control. Non-numeric links ("Önceki", "Sonraki", "…") are ignored.
func parsePageCount(markup string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return 0, err
	}

	highest := 0
	doc.FindMatcher(matchPageLink).Each(func(_ int, a *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(a.Text()))
		if err == nil && n > highest {
			highest = n
		}
	})
	if highest == 0 {
		return 0, errors.New("no page numbers in pagination control")
	}
	return highest, nil
}
