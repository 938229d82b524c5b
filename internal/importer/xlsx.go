package importer

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// readXLSX returns one table per worksheet
func readXLSX(content []byte) ([]Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tables := make([]Table, 0)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		tables = append(tables, Table{Name: sheet, Rows: rows})
	}
	return tables, nil
}
