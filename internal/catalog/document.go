package catalog

import (
	"bytes"
	"fmt"
	"strconv"
)

// Cell is one named numeric price value
type Cell struct {
	Key   string
	Value float64
}

// Size is one entry of a product's "sizes" array
type Size struct {
	Dimension string
	Index     int
	Price     float64
	// Scalar is false when "prices" holds a nested object instead of a number
	Scalar bool
}

// ClassGroup is a price group split into price classes (A, B, C...)
type ClassGroup struct {
	Group   string
	Classes []Cell
}

// Element is a component of a product priced on its own
type Element struct {
	// Code is the identity: "code", falling back to "name" (flat) or the map key (elements)
	Code  string
	Index int

	Price     float64
	HasPrice  bool
	Prices    []Cell
	HasPrices bool
	Classes   []ClassGroup
}

// Product is a price-bearing record
type Product struct {
	Name string
	// Key is the object key in categorized layouts, Index the array position in flat ones
	Key   string
	Index int

	Prices   []Cell
	Sizes    []Size
	Elements []Element
}

// Category groups products in categorized layouts
type Category struct {
	Name     string
	Products []Product
}

// Row is one line of a row-table document
type Row struct {
	Model string
	Index int
	Cells []Cell
}

// Sheet is a named list of rows
type Sheet struct {
	Name string
	Rows []Row
}

// Document is a decoded catalog. Exactly one of Categories, Products or Sheets is
// populated, selected by Layout.
type Document struct {
	Layout     Layout
	Categories []Category
	Products   []Product
	Sheets     []Sheet

	raw []byte
	// flatKey is "products" for {"products": [...]} and "" for a bare array
	flatKey        string
	rowPriceColumn map[string]bool
}

// Bytes returns a copy of the document's JSON
func (d *Document) Bytes() []byte {
	return bytes.Clone(d.raw)
}

// Category returns the named category
func (d *Document) Category(name string) (*Category, bool) {
	for i := range d.Categories {
		if d.Categories[i].Name == name {
			return &d.Categories[i], true
		}
	}
	return nil, false
}

// FindProduct looks a product up by name across categories (categorized layouts) or in
// the product list (flat layout). The owning category name is returned when known.
func (d *Document) FindProduct(name string) (*Product, string, bool) {
	for i := range d.Categories {
		if p, ok := d.Categories[i].Product(name); ok {
			return p, d.Categories[i].Name, true
		}
	}
	for i := range d.Products {
		if d.Products[i].Name == name {
			return &d.Products[i], "", true
		}
	}
	return nil, "", false
}

// Sheet returns the named sheet
func (d *Document) Sheet(name string) (*Sheet, bool) {
	for i := range d.Sheets {
		if d.Sheets[i].Name == name {
			return &d.Sheets[i], true
		}
	}
	return nil, false
}

// IsPriceColumn reports whether a row-table column holds prices
func (d *Document) IsPriceColumn(column string) bool {
	return d.rowPriceColumn[column]
}

// Product returns the first product with the given name
func (c *Category) Product(name string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].Name == name {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// Price returns the product-level price for a group
func (p *Product) Price(group string) (float64, bool) {
	return lookupCell(p.Prices, group)
}

// Size returns the size entry for a dimension
func (p *Product) Size(dimension string) (*Size, bool) {
	for i := range p.Sizes {
		if p.Sizes[i].Dimension == dimension {
			return &p.Sizes[i], true
		}
	}
	return nil, false
}

// Element returns the element with the given code
func (p *Product) Element(code string) (*Element, bool) {
	for i := range p.Elements {
		if p.Elements[i].Code == code {
			return &p.Elements[i], true
		}
	}
	return nil, false
}

// GroupPrice returns an element's scalar price for a group
func (e *Element) GroupPrice(group string) (float64, bool) {
	return lookupCell(e.Prices, group)
}

// ClassPrice returns an element's price for a group and class
func (e *Element) ClassPrice(group, class string) (float64, bool) {
	for _, g := range e.Classes {
		if g.Group == group {
			return lookupCell(g.Classes, class)
		}
	}
	return 0, false
}

// Row returns the first row with the given model
func (s *Sheet) Row(model string) (*Row, bool) {
	for i := range s.Rows {
		if s.Rows[i].Model == model {
			return &s.Rows[i], true
		}
	}
	return nil, false
}

// Price returns a row's value in a price column
func (r *Row) Price(column string) (float64, bool) {
	return lookupCell(r.Cells, column)
}

func lookupCell(cells []Cell, key string) (float64, bool) {
	for _, c := range cells {
		if c.Key == key {
			return c.Value, true
		}
	}
	return 0, false
}

// Write replaces the number at Path with Value
type Write struct {
	Path  []string
	Value float64
}

// WithPrices returns a new document with the writes applied to a copy of the raw JSON.
// The receiver is not modified.
func (d *Document) WithPrices(writes []Write) (*Document, error) {
	raw := bytes.Clone(d.raw)
	for _, w := range writes {
		var err error
		raw, err = setNumber(raw, w.Path, w.Value)
		if err != nil {
			return nil, err
		}
	}
	return decodeWith(d.Layout, raw, d.rowPriceColumn)
}

// FormatPrice renders a price the way it is written into documents
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func indexKey(i int) string {
	return fmt.Sprintf("[%d]", i)
}
