package importer

import (
	"bytes"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

const pdfSheetName = "PDF"

// columnGap separates cells in extracted PDF text lines
var columnGap = regexp.MustCompile(`\t+|\s{2,}`)

// readPDF extracts text lines from every page as a single table
func readPDF(content []byte) ([]Table, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteByte('\n')
	}
	return []Table{tableFromText(pdfSheetName, text.String())}, nil
}

// tableFromText splits lines into cells on tabs or runs of two or more spaces
func tableFromText(name, text string) Table {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rows := make([][]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, columnGap.Split(line, -1))
	}
	return Table{Name: name, Rows: rows}
}
