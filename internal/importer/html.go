package importer

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// readHTML returns one table per <table>, named after its caption when present
func readHTML(content []byte) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	tables := make([]Table, 0)
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		name := normalizeSpaces(table.Find("caption").First().Text())
		if name == "" {
			name = fmt.Sprintf("Tabela %d", i+1)
		}

		rows := make([][]string, 0)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := make([]string, 0)
			tr.Find("th,td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, normalizeSpaces(td.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > 1 {
			tables = append(tables, Table{Name: name, Rows: rows})
		}
	})
	return tables, nil
}
