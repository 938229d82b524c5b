package reconcile

import (
	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/pricediff"
)

type target struct {
	path  []string
	value float64
}

// locate finds the cell a change addresses using the same identity rules as the diff
func locate(doc *catalog.Document, c pricediff.AtomicChange) (target, bool) {
	switch {
	case doc.Layout.IsCategorized():
		return locateCategorized(doc, c)
	case doc.Layout == catalog.LayoutFlat:
		return locateFlat(doc, c)
	case doc.Layout == catalog.LayoutRows:
		return locateRow(doc, c)
	}
	return target{}, false
}

func findProduct(doc *catalog.Document, c pricediff.AtomicChange) (*catalog.Product, string, bool) {
	if c.Category == "" {
		return doc.FindProduct(c.Product)
	}
	cat, ok := doc.Category(c.Category)
	if !ok {
		return nil, "", false
	}
	p, ok := cat.Product(c.Product)
	return p, cat.Name, ok
}

func locateCategorized(doc *catalog.Document, c pricediff.AtomicChange) (target, bool) {
	p, category, ok := findProduct(doc, c)
	if !ok {
		return target{}, false
	}

	switch {
	case c.Dimension != "":
		s, ok := p.Size(c.Dimension)
		if !ok || !s.Scalar {
			return target{}, false
		}
		return target{path: doc.SizePath(category, p, s), value: s.Price}, true

	case c.Element != "":
		el, ok := p.Element(c.Element)
		if !ok || c.PriceGroup == "" {
			return target{}, false
		}
		if c.PriceClass != "" {
			v, ok := el.ClassPrice(c.PriceGroup, c.PriceClass)
			if !ok {
				return target{}, false
			}
			return target{path: doc.ElementClassPath(category, p, el, c.PriceGroup, c.PriceClass), value: v}, true
		}
		v, ok := el.GroupPrice(c.PriceGroup)
		if !ok {
			return target{}, false
		}
		return target{path: doc.ElementGroupPath(category, p, el, c.PriceGroup), value: v}, true

	case c.PriceGroup != "":
		v, ok := p.Price(c.PriceGroup)
		if !ok {
			return target{}, false
		}
		return target{path: doc.PricePath(category, p, c.PriceGroup), value: v}, true
	}
	return target{}, false
}

func locateFlat(doc *catalog.Document, c pricediff.AtomicChange) (target, bool) {
	p, _, ok := doc.FindProduct(c.Product)
	if !ok {
		return target{}, false
	}

	if c.Element == "" {
		if c.PriceGroup == "" {
			return target{}, false
		}
		v, ok := p.Price(c.PriceGroup)
		if !ok {
			return target{}, false
		}
		return target{path: doc.PricePath("", p, c.PriceGroup), value: v}, true
	}

	el, ok := p.Element(c.Element)
	if !ok {
		return target{}, false
	}
	if c.PriceGroup == "" {
		if !el.HasPrice {
			return target{}, false
		}
		return target{path: doc.ElementPricePath(p, el), value: el.Price}, true
	}
	v, ok := el.GroupPrice(c.PriceGroup)
	if !ok {
		return target{}, false
	}
	return target{path: doc.ElementGroupPath("", p, el, c.PriceGroup), value: v}, true
}

// locateRow uses the change's category as the sheet name, or the first sheet holding
// the model when none is given.
func locateRow(doc *catalog.Document, c pricediff.AtomicChange) (target, bool) {
	if c.PriceGroup == "" {
		return target{}, false
	}
	for si := range doc.Sheets {
		sheet := &doc.Sheets[si]
		if c.Category != "" && sheet.Name != c.Category {
			continue
		}
		row, ok := sheet.Row(c.Product)
		if !ok {
			continue
		}
		v, ok := row.Price(c.PriceGroup)
		if !ok {
			return target{}, false
		}
		return target{path: doc.RowPath(sheet.Name, row, c.PriceGroup), value: v}, true
	}
	return target{}, false
}
