// Package catalog models producer price-list documents.
//
// A catalog is stored as JSON in one of four layouts. The layout is a property of the
// producer, not of the document, so it is supplied by the caller and the document is
// decoded exactly once at the storage boundary. Decoded documents keep their raw bytes:
// price writes patch those bytes in place, leaving every other byte untouched.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Layout identifies the shape of a catalog document
type Layout string

const (
	// LayoutCategory is {"categories": {category: {product: record}}}
	LayoutCategory Layout = "category"
	// LayoutElements is LayoutCategory where records carry an "elements" map of
	// element code -> price group -> (amount | class letter -> amount)
	LayoutElements Layout = "elements"
	// LayoutFlat is {"products": [record]} or a bare array of records
	LayoutFlat Layout = "flat"
	// LayoutRows is {sheet: [{"MODEL": ..., <price column>: amount}]}
	LayoutRows Layout = "rows"
)

// ErrShapeMismatch is returned when a document's JSON shape cannot carry the layout
var ErrShapeMismatch = errors.New("catalog shape does not match layout")

// ErrUnknownLayout is returned by ParseLayout for unrecognised names
var ErrUnknownLayout = errors.New("unknown catalog layout")

var layoutAliases = map[string]Layout{
	"category":         LayoutCategory,
	"categories":       LayoutCategory,
	"category-grouped": LayoutCategory,
	"elements":         LayoutElements,
	"element-grouped":  LayoutElements,
	"flat":             LayoutFlat,
	"list":             LayoutFlat,
	"products":         LayoutFlat,
	"rows":             LayoutRows,
	"row-table":        LayoutRows,
	"sheet":            LayoutRows,
}

// ParseLayout resolves a layout name or one of its aliases
func ParseLayout(name string) (Layout, error) {
	if l, ok := layoutAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// Layouts returns every supported layout
func Layouts() []Layout {
	return []Layout{LayoutCategory, LayoutElements, LayoutFlat, LayoutRows}
}

// IsCategorized reports whether the layout groups products by category
func (l Layout) IsCategorized() bool {
	return l == LayoutCategory || l == LayoutElements
}

// DefaultRowPriceColumns are the row-table columns holding prices
var DefaultRowPriceColumns = []string{
	"grupa I",
	"grupa II",
	"grupa III",
	"grupa IV",
	"grupa V",
	"grupa VI",
	"grupa VII",
	"cena",
	"cena netto",
	"cena brutto",
}

// ModelKey is the identity column of row-table documents
const ModelKey = "MODEL"
