package pricediff

import (
	"github.com/cenniki/pricelist-service/internal/catalog"
)

// ProductRef identifies a product, or a row in row tables
type ProductRef struct {
	Category string `json:"category,omitempty"`
	Product  string `json:"product"`
}

// Structural lists products present on one side only. It is informational and never
// replayed.
type Structural struct {
	Added   []ProductRef `json:"added"`
	Removed []ProductRef `json:"removed"`
}

// Result is the outcome of Diff
type Result struct {
	Changes    []AtomicChange `json:"changes"`
	Summary    Summary        `json:"summary"`
	Structural Structural     `json:"structural"`
}

// Diff compares two versions of a catalog and reports every modified price cell in the
// document order of newDoc. Branches missing on either side yield no changes; documents
// of different layouts are compared best-effort and never fail.
func Diff(oldDoc, newDoc *catalog.Document) Result {
	d := differ{
		changes:    []AtomicChange{},
		structural: Structural{Added: []ProductRef{}, Removed: []ProductRef{}},
	}

	if oldDoc != nil && newDoc != nil {
		switch {
		case newDoc.Layout.IsCategorized():
			d.categories(oldDoc, newDoc)
		case newDoc.Layout == catalog.LayoutFlat:
			d.flat(oldDoc, newDoc)
		case newDoc.Layout == catalog.LayoutRows:
			d.rows(oldDoc, newDoc)
		}
	}

	return Result{
		Changes:    d.changes,
		Summary:    Summarize(d.changes),
		Structural: d.structural,
	}
}

type differ struct {
	changes    []AtomicChange
	structural Structural
}

func (d *differ) add(c AtomicChange) {
	if c.OldPrice == c.NewPrice {
		return
	}
	d.changes = append(d.changes, NewChange(c))
}

func (d *differ) categories(oldDoc, newDoc *catalog.Document) {
	for ci := range newDoc.Categories {
		newCat := &newDoc.Categories[ci]
		oldCat, hasCat := oldDoc.Category(newCat.Name)
		for pi := range newCat.Products {
			np := &newCat.Products[pi]
			var op *catalog.Product
			if hasCat {
				op, _ = oldCat.Product(np.Name)
			}
			if op == nil {
				d.structural.Added = append(d.structural.Added, ProductRef{Category: newCat.Name, Product: np.Name})
				continue
			}
			d.product(newCat.Name, op, np, true)
		}
	}

	for ci := range oldDoc.Categories {
		oldCat := &oldDoc.Categories[ci]
		newCat, hasCat := newDoc.Category(oldCat.Name)
		for _, op := range oldCat.Products {
			if hasCat {
				if _, ok := newCat.Product(op.Name); ok {
					continue
				}
			}
			d.structural.Removed = append(d.structural.Removed, ProductRef{Category: oldCat.Name, Product: op.Name})
		}
	}
}

func (d *differ) flat(oldDoc, newDoc *catalog.Document) {
	for i := range newDoc.Products {
		np := &newDoc.Products[i]
		op := findFlat(oldDoc, np.Name)
		if op == nil {
			d.structural.Added = append(d.structural.Added, ProductRef{Product: np.Name})
			continue
		}
		d.product("", op, np, false)
	}
	for i := range oldDoc.Products {
		if findFlat(newDoc, oldDoc.Products[i].Name) == nil {
			d.structural.Removed = append(d.structural.Removed, ProductRef{Product: oldDoc.Products[i].Name})
		}
	}
}

func findFlat(doc *catalog.Document, name string) *catalog.Product {
	for i := range doc.Products {
		if doc.Products[i].Name == name {
			return &doc.Products[i]
		}
	}
	return nil
}

// product compares two matched product records
func (d *differ) product(category string, op, np *catalog.Product, categorized bool) {
	base := AtomicChange{Category: category, Product: np.Name}

	for _, cell := range np.Prices {
		if oldValue, ok := op.Price(cell.Key); ok {
			c := base
			c.PriceGroup = cell.Key
			c.OldPrice, c.NewPrice = oldValue, cell.Value
			d.add(c)
		}
	}

	if categorized {
		for _, ns := range np.Sizes {
			os, ok := op.Size(ns.Dimension)
			if !ok || !os.Scalar || !ns.Scalar {
				continue
			}
			c := base
			c.Dimension = ns.Dimension
			c.OldPrice, c.NewPrice = os.Price, ns.Price
			d.add(c)
		}
	}

	for ei := range np.Elements {
		ne := &np.Elements[ei]
		oe, ok := op.Element(ne.Code)
		if !ok {
			continue
		}
		d.element(base, oe, ne)
	}
}

func (d *differ) element(base AtomicChange, oe, ne *catalog.Element) {
	base.Element = ne.Code

	if oe.HasPrice && ne.HasPrice {
		c := base
		c.OldPrice, c.NewPrice = oe.Price, ne.Price
		d.add(c)
	}

	if oe.HasPrices && ne.HasPrices {
		for _, cell := range ne.Prices {
			if oldValue, ok := oe.GroupPrice(cell.Key); ok {
				c := base
				c.PriceGroup = cell.Key
				c.OldPrice, c.NewPrice = oldValue, cell.Value
				d.add(c)
			}
		}
	}

	for _, group := range ne.Classes {
		for _, cell := range group.Classes {
			if oldValue, ok := oe.ClassPrice(group.Group, cell.Key); ok {
				c := base
				c.PriceGroup = group.Group
				c.PriceClass = cell.Key
				c.OldPrice, c.NewPrice = oldValue, cell.Value
				d.add(c)
			}
		}
	}
}

// rows matches rows by MODEL within sheets of the same name; the sheet is carried as the
// change's category.
func (d *differ) rows(oldDoc, newDoc *catalog.Document) {
	for si := range newDoc.Sheets {
		newSheet := &newDoc.Sheets[si]
		oldSheet, hasSheet := oldDoc.Sheet(newSheet.Name)
		for ri := range newSheet.Rows {
			nr := &newSheet.Rows[ri]
			var or *catalog.Row
			if hasSheet {
				or, _ = oldSheet.Row(nr.Model)
			}
			if or == nil {
				d.structural.Added = append(d.structural.Added, ProductRef{Category: newSheet.Name, Product: nr.Model})
				continue
			}
			for _, cell := range nr.Cells {
				if oldValue, ok := or.Price(cell.Key); ok {
					d.add(AtomicChange{
						Category:   newSheet.Name,
						Product:    nr.Model,
						PriceGroup: cell.Key,
						OldPrice:   oldValue,
						NewPrice:   cell.Value,
					})
				}
			}
		}
	}

	for si := range oldDoc.Sheets {
		oldSheet := &oldDoc.Sheets[si]
		newSheet, hasSheet := newDoc.Sheet(oldSheet.Name)
		for _, or := range oldSheet.Rows {
			if hasSheet {
				if _, ok := newSheet.Row(or.Model); ok {
					continue
				}
			}
			d.structural.Removed = append(d.structural.Removed, ProductRef{Category: oldSheet.Name, Product: or.Model})
		}
	}
}
