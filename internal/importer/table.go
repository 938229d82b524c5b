package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cenniki/pricelist-service/internal/catalog"
)

// Table is a grid of cell texts read from one sheet, table or page
type Table struct {
	Name string
	Rows [][]string
}

// headerSearchDepth is how many leading rows may precede the header row
const headerSearchDepth = 10

var modelHeaders = map[string]bool{
	"model": true, "nazwa": true, "nazwa modelu": true, "produkt": true,
	"symbol": true, "name": true, "product": true,
}

var spaces = regexp.MustCompile(`\s+`)

func normalizeSpaces(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// foldHeader lowercases and strips diacritics so "Grupa  I" matches "grupa i"
func foldHeader(s string) string {
	s = strings.NewReplacer("ł", "l", "Ł", "L").Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(normalizeSpaces(folded))
}

type header struct {
	row      int
	model    int
	prices   map[int]string
	metadata map[int]string
}

// findHeader locates the first row naming a model column and at least one price column
func findHeader(rows [][]string, priceColumns []string) (header, bool) {
	wanted := make(map[string]string, len(priceColumns))
	for _, c := range priceColumns {
		wanted[foldHeader(c)] = c
	}

	for i := 0; i < len(rows) && i < headerSearchDepth; i++ {
		h := header{row: i, model: -1, prices: map[int]string{}, metadata: map[int]string{}}
		used := map[string]bool{}
		for j, cell := range rows[i] {
			folded := foldHeader(cell)
			if folded == "" {
				continue
			}
			switch {
			case h.model < 0 && modelHeaders[folded]:
				h.model = j
			case wanted[folded] != "" && !used[wanted[folded]]:
				h.prices[j] = wanted[folded]
				used[wanted[folded]] = true
			default:
				name := normalizeSpaces(cell)
				if name != catalog.ModelKey && !used[name] {
					h.metadata[j] = name
					used[name] = true
				}
			}
		}
		if h.model >= 0 && len(h.prices) > 0 {
			return h, true
		}
	}
	return header{}, false
}

var currency = regexp.MustCompile(`(?i)\s*(zł|zl|pln|eur|€)\.?\s*$`)

func parsePrice(s string) (float64, bool) {
	return catalog.ParseNumber(currency.ReplaceAllString(strings.TrimSpace(s), ""))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return normalizeSpaces(row[i])
}

// buildDocument renders tables as a row-table JSON document, one sheet per table.
// Rows without a model or without any price are dropped.
func buildDocument(tables []Table, priceColumns []string) ([]byte, int, []Warning) {
	var buf bytes.Buffer
	warnings := make([]Warning, 0)
	total := 0
	names := map[string]int{}

	buf.WriteByte('{')
	sheets := 0
	for _, t := range tables {
		h, ok := findHeader(t.Rows, priceColumns)
		if !ok {
			continue
		}

		name := t.Name
		if names[name] > 0 {
			name = fmt.Sprintf("%s (%d)", name, names[t.Name]+1)
		}
		names[t.Name]++

		var rowsBuf bytes.Buffer
		count := 0
		for i := h.row + 1; i < len(t.Rows); i++ {
			row := t.Rows[i]
			model := cell(row, h.model)
			if model == "" {
				continue
			}

			var fields bytes.Buffer
			writeField(&fields, catalog.ModelKey, model)
			priced := 0
			for _, column := range slices.Sorted(maps.Keys(h.prices)) {
				text := cell(row, column)
				if text == "" {
					continue
				}
				v, ok := parsePrice(text)
				if !ok {
					warnings = append(warnings, Warning{Table: name, Row: i + 1, Message: fmt.Sprintf("%s: %q is not a price", h.prices[column], text)})
					continue
				}
				fields.WriteByte(',')
				writeKey(&fields, h.prices[column])
				fields.WriteString(catalog.FormatPrice(v))
				priced++
			}
			if priced == 0 {
				continue
			}
			for _, column := range slices.Sorted(maps.Keys(h.metadata)) {
				if text := cell(row, column); text != "" {
					fields.WriteByte(',')
					writeField(&fields, h.metadata[column], text)
				}
			}

			if count > 0 {
				rowsBuf.WriteByte(',')
			}
			rowsBuf.WriteByte('{')
			rowsBuf.Write(fields.Bytes())
			rowsBuf.WriteByte('}')
			count++
		}
		if count == 0 {
			continue
		}

		if sheets > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, name)
		buf.WriteByte('[')
		buf.Write(rowsBuf.Bytes())
		buf.WriteByte(']')
		sheets++
		total += count
	}
	buf.WriteByte('}')
	return buf.Bytes(), total, warnings
}

func writeKey(buf *bytes.Buffer, key string) {
	b, _ := json.Marshal(key)
	buf.Write(b)
	buf.WriteByte(':')
}

func writeField(buf *bytes.Buffer, key, value string) {
	writeKey(buf, key)
	b, _ := json.Marshal(value)
	buf.Write(b)
}
