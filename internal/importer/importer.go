// Package importer builds candidate row-table catalogs from uploaded spreadsheets,
// CSV exports, HTML tables and PDF price lists.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/catalog"
)

// Format is the kind of an uploaded file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrNoRows is returned when no table with a model column and prices was found
	ErrNoRows = errors.New("no price rows found")
)

// DetectFormat picks the format from the file extension, falling back to content sniffing
func DetectFormat(filename string, content []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	}

	trimmed := bytes.TrimSpace(content)
	switch {
	case bytes.HasPrefix(content, []byte("PK\x03\x04")):
		return FormatXLSX, nil
	case bytes.HasPrefix(content, []byte("%PDF")):
		return FormatPDF, nil
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatHTML, nil
	case len(trimmed) > 0:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Warning is a non-fatal problem with one row
type Warning struct {
	Table   string `json:"table"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result is a candidate document built from an upload
type Result struct {
	Format   Format            `json:"format"`
	Document *catalog.Document `json:"-"`
	Rows     int               `json:"rows"`
	Warnings []Warning         `json:"warnings"`
}

// Importer converts uploads into row-table catalogs
type Importer struct {
	priceColumns []string
	logger       *zerolog.Logger
}

// New creates an Importer recognising the given price columns; nil uses the defaults
func New(priceColumns []string, logger *zerolog.Logger) *Importer {
	if len(priceColumns) == 0 {
		priceColumns = catalog.DefaultRowPriceColumns
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Importer{priceColumns: priceColumns, logger: logger}
}

// Import parses an uploaded file into a row-table document
func (im *Importer) Import(filename string, content []byte) (*Result, error) {
	format, err := DetectFormat(filename, content)
	if err != nil {
		return nil, err
	}

	var tables []Table
	switch format {
	case FormatXLSX:
		tables, err = readXLSX(content)
	case FormatCSV:
		tables, err = readCSV(content)
	case FormatHTML:
		tables, err = readHTML(content)
	case FormatPDF:
		tables, err = readPDF(content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", format, err)
	}

	raw, rows, warnings := buildDocument(tables, im.priceColumns)
	if rows == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRows, filename)
	}

	doc, err := catalog.Decode(catalog.LayoutRows, raw, catalog.WithRowPriceColumns(im.priceColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to decode imported rows: %w", err)
	}

	im.logger.Info().
		Str("file", filename).
		Str("format", string(format)).
		Int("tables", len(tables)).
		Int("rows", rows).
		Int("warnings", len(warnings)).
		Msg("Import parsed")

	return &Result{Format: format, Document: doc, Rows: rows, Warnings: warnings}, nil
}
