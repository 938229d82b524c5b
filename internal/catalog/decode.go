package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// ErrPathNotFound is returned when a price write targets a path missing from the document
var ErrPathNotFound = errors.New("price path not found in document")

type decodeOptions struct {
	rowPriceColumns []string
}

// Option tunes decoding
type Option func(*decodeOptions)

// WithRowPriceColumns overrides DefaultRowPriceColumns for row-table documents
func WithRowPriceColumns(columns []string) Option {
	return func(o *decodeOptions) {
		if len(columns) > 0 {
			o.rowPriceColumns = columns
		}
	}
}

// Decode parses raw JSON as a document of the given layout
func Decode(layout Layout, raw []byte, opts ...Option) (*Document, error) {
	o := decodeOptions{rowPriceColumns: DefaultRowPriceColumns}
	for _, opt := range opts {
		opt(&o)
	}
	columns := make(map[string]bool, len(o.rowPriceColumns))
	for _, c := range o.rowPriceColumns {
		columns[c] = true
	}
	return decodeWith(layout, bytes.Clone(raw), columns)
}

func decodeWith(layout Layout, raw []byte, columns map[string]bool) (*Document, error) {
	doc := &Document{Layout: layout, raw: raw, rowPriceColumn: columns}

	root := rootType(raw)
	var err error
	switch layout {
	case LayoutCategory, LayoutElements:
		if root != jsonparser.Object {
			return nil, fmt.Errorf("%w: %s document must be a JSON object", ErrShapeMismatch, layout)
		}
		err = decodeCategories(doc)
	case LayoutFlat:
		err = decodeFlat(doc, root)
	case LayoutRows:
		if root != jsonparser.Object {
			return nil, fmt.Errorf("%w: rows document must be a JSON object", ErrShapeMismatch)
		}
		err = decodeRows(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func rootType(raw []byte) jsonparser.ValueType {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return jsonparser.NotExist
	}
	switch trimmed[0] {
	case '{':
		return jsonparser.Object
	case '[':
		return jsonparser.Array
	default:
		return jsonparser.Unknown
	}
}

func decodeCategories(doc *Document) error {
	value, dataType, _, err := jsonparser.Get(doc.raw, "categories")
	if dataType == jsonparser.NotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}
	if dataType != jsonparser.Object {
		return fmt.Errorf("%w: \"categories\" must be an object", ErrShapeMismatch)
	}

	return jsonparser.ObjectEach(value, func(key, catValue []byte, catType jsonparser.ValueType, _ int) error {
		cat := Category{Name: unescape(key)}
		if catType == jsonparser.Object {
			err := jsonparser.ObjectEach(catValue, func(pkey, pvalue []byte, ptype jsonparser.ValueType, _ int) error {
				if ptype != jsonparser.Object {
					return nil
				}
				name := unescape(pkey)
				p := decodeProduct(pvalue, true)
				p.Name = name
				p.Key = name
				p.Index = -1
				cat.Products = append(cat.Products, p)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read category %q: %w", cat.Name, err)
			}
		}
		doc.Categories = append(doc.Categories, cat)
		return nil
	})
}

func decodeFlat(doc *Document, root jsonparser.ValueType) error {
	var list []byte
	switch root {
	case jsonparser.Array:
		list = doc.raw
	case jsonparser.Object:
		value, dataType, _, err := jsonparser.Get(doc.raw, "products")
		if dataType == jsonparser.NotExist {
			doc.flatKey = "products"
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read products: %w", err)
		}
		if dataType != jsonparser.Array {
			return fmt.Errorf("%w: \"products\" must be an array", ErrShapeMismatch)
		}
		doc.flatKey = "products"
		list = value
	default:
		return fmt.Errorf("%w: flat document must be an array or an object", ErrShapeMismatch)
	}

	index := 0
	_, err := jsonparser.ArrayEach(list, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		defer func() { index++ }()
		if dataType != jsonparser.Object {
			return
		}
		p := decodeProduct(value, false)
		p.Name = stringField(value, "name")
		if p.Name == "" {
			p.Name = stringField(value, ModelKey)
		}
		p.Index = index
		if p.Name != "" {
			doc.Products = append(doc.Products, p)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to read product list: %w", err)
	}
	return nil
}

func decodeRows(doc *Document) error {
	return jsonparser.ObjectEach(doc.raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Array {
			return nil
		}
		sheet := Sheet{Name: unescape(key)}
		index := 0
		_, err := jsonparser.ArrayEach(value, func(rowValue []byte, rowType jsonparser.ValueType, _ int, _ error) {
			defer func() { index++ }()
			if rowType != jsonparser.Object {
				return
			}
			row := Row{Model: stringField(rowValue, ModelKey), Index: index}
			if row.Model == "" {
				return
			}
			_ = jsonparser.ObjectEach(rowValue, func(ckey, cvalue []byte, ctype jsonparser.ValueType, _ int) error {
				column := unescape(ckey)
				if !doc.rowPriceColumn[column] {
					return nil
				}
				if v, ok := parseNumber(cvalue, ctype); ok {
					row.Cells = append(row.Cells, Cell{Key: column, Value: v})
				}
				return nil
			})
			sheet.Rows = append(sheet.Rows, row)
		})
		if err != nil {
			return fmt.Errorf("failed to read sheet %q: %w", sheet.Name, err)
		}
		doc.Sheets = append(doc.Sheets, sheet)
		return nil
	})
}

func decodeProduct(raw []byte, elementMap bool) Product {
	var p Product
	p.Prices = decodeCells(raw, "prices")

	index := 0
	_, _ = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		defer func() { index++ }()
		if dataType != jsonparser.Object {
			return
		}
		size := Size{Dimension: stringField(value, "dimension"), Index: index}
		if size.Dimension == "" {
			return
		}
		priceValue, priceType, _, err := jsonparser.Get(value, "prices")
		if err == nil {
			size.Price, size.Scalar = parseNumber(priceValue, priceType)
		}
		p.Sizes = append(p.Sizes, size)
	}, "sizes")

	if elementMap {
		_ = jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			if dataType != jsonparser.Object {
				return nil
			}
			p.Elements = append(p.Elements, decodeElementGroups(unescape(key), value))
			return nil
		}, "elements")
	} else {
		index := 0
		_, _ = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			defer func() { index++ }()
			if dataType != jsonparser.Object {
				return
			}
			el := decodeListElement(value)
			el.Index = index
			if el.Code != "" {
				p.Elements = append(p.Elements, el)
			}
		}, "elements")
	}
	return p
}

// decodeElementGroups reads {group: amount | {class: amount}}
func decodeElementGroups(code string, raw []byte) Element {
	el := Element{Code: code, Index: -1}
	_ = jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		group := unescape(key)
		if dataType == jsonparser.Object {
			cg := ClassGroup{Group: group}
			_ = jsonparser.ObjectEach(value, func(ckey, cvalue []byte, ctype jsonparser.ValueType, _ int) error {
				if v, ok := parseNumber(cvalue, ctype); ok {
					cg.Classes = append(cg.Classes, Cell{Key: unescape(ckey), Value: v})
				}
				return nil
			})
			el.Classes = append(el.Classes, cg)
			return nil
		}
		if v, ok := parseNumber(value, dataType); ok {
			el.Prices = append(el.Prices, Cell{Key: group, Value: v})
			el.HasPrices = true
		}
		return nil
	})
	return el
}

// decodeListElement reads {"code"|"name": ..., "price": amount} or {..., "prices": {...}}
func decodeListElement(raw []byte) Element {
	el := Element{Code: stringField(raw, "code")}
	if el.Code == "" {
		el.Code = stringField(raw, "name")
	}
	if value, dataType, _, err := jsonparser.Get(raw, "price"); err == nil {
		el.Price, el.HasPrice = parseNumber(value, dataType)
	}
	if _, dataType, _, _ := jsonparser.Get(raw, "prices"); dataType == jsonparser.Object {
		el.HasPrices = true
		el.Prices = decodeCells(raw, "prices")
	}
	return el
}

func decodeCells(raw []byte, key string) []Cell {
	var cells []Cell
	_ = jsonparser.ObjectEach(raw, func(ckey, value []byte, dataType jsonparser.ValueType, _ int) error {
		if v, ok := parseNumber(value, dataType); ok {
			cells = append(cells, Cell{Key: unescape(ckey), Value: v})
		}
		return nil
	}, key)
	return cells
}

func stringField(raw []byte, key string) string {
	value, dataType, _, err := jsonparser.Get(raw, key)
	if err != nil {
		return ""
	}
	switch dataType {
	case jsonparser.String:
		return strings.TrimSpace(unescape(value))
	case jsonparser.Number:
		return string(value)
	default:
		return ""
	}
}

func unescape(b []byte) string {
	s, err := jsonparser.ParseString(b)
	if err != nil {
		return string(b)
	}
	return s
}

var numberCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".")

// parseNumber accepts JSON numbers and numeric strings such as "1 250,50"
func parseNumber(value []byte, dataType jsonparser.ValueType) (float64, bool) {
	switch dataType {
	case jsonparser.Number:
		v, err := jsonparser.ParseFloat(value)
		return v, err == nil
	case jsonparser.String:
		return ParseNumber(unescape(value))
	default:
		return 0, false
	}
}

// ParseNumber exposes the numeric-cell rules used by decoding, for importers
func ParseNumber(s string) (float64, bool) {
	s = numberCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func setNumber(raw []byte, path []string, value float64) ([]byte, error) {
	if _, dataType, _, _ := jsonparser.Get(raw, path...); dataType == jsonparser.NotExist {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, strings.Join(path, " > "))
	}
	out, err := jsonparser.Set(raw, []byte(FormatPrice(value)), path...)
	if err != nil {
		return nil, fmt.Errorf("failed to write price at %s: %w", strings.Join(path, " > "), err)
	}
	return out, nil
}
