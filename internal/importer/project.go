package importer

import (
	"strings"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/pricediff"
)

// Projection is the effect of an imported table on a stored catalog
type Projection struct {
	Changes []pricediff.AtomicChange `json:"changes"`
	Summary pricediff.Summary        `json:"summary"`
	// Unmatched lists imported models with no counterpart in the catalog
	Unmatched []string `json:"unmatched"`
}

// Project matches imported rows to the current catalog by model name and turns price
// columns into changes of the price group with the same name (case-insensitive). Rows
// catalogs match on MODEL; categorized and flat catalogs on product name.
func Project(current, imported *catalog.Document) Projection {
	changes := make([]pricediff.AtomicChange, 0)
	unmatched := make([]string, 0)

	for _, sheet := range imported.Sheets {
		for _, row := range sheet.Rows {
			matched := false
			if current.Layout == catalog.LayoutRows {
				if target, sheetName, ok := findRow(current, sheet.Name, row.Model); ok {
					matched = true
					changes = appendCells(changes, pricediff.AtomicChange{Category: sheetName, Product: target.Model}, target.Cells, row.Cells)
				}
			} else if p, category, ok := current.FindProduct(row.Model); ok {
				matched = true
				changes = appendCells(changes, pricediff.AtomicChange{Category: category, Product: p.Name}, p.Prices, row.Cells)
			}
			if !matched {
				unmatched = append(unmatched, row.Model)
			}
		}
	}

	changes = pricediff.FromChanges(changes)
	return Projection{Changes: changes, Summary: pricediff.Summarize(changes), Unmatched: unmatched}
}

// findRow prefers the sheet of the same name, then the first sheet containing the model
func findRow(doc *catalog.Document, sheetName, model string) (*catalog.Row, string, bool) {
	if s, ok := doc.Sheet(sheetName); ok {
		if r, ok := s.Row(model); ok {
			return r, s.Name, true
		}
	}
	for i := range doc.Sheets {
		if r, ok := doc.Sheets[i].Row(model); ok {
			return r, doc.Sheets[i].Name, true
		}
	}
	return nil, "", false
}

func appendCells(changes []pricediff.AtomicChange, base pricediff.AtomicChange, current, imported []catalog.Cell) []pricediff.AtomicChange {
	for _, in := range imported {
		for _, cur := range current {
			if !strings.EqualFold(cur.Key, in.Key) || cur.Value == in.Value {
				continue
			}
			c := base
			c.PriceGroup = cur.Key
			c.OldPrice, c.NewPrice = cur.Value, in.Value
			changes = append(changes, c)
			break
		}
	}
	return changes
}
