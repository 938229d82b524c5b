// Package export renders change-sets as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cenniki/pricelist-service/internal/changeset"
)

const (
	changesSheet = "Zmiany"
	summarySheet = "Podsumowanie"

	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"id", "kategoria", "produkt", "element", "grupa", "klasa", "wymiar",
	"cena_stara", "cena_nowa", "zmiana_proc", "wynik",
}

// Filename is the download name of a change-set report
func Filename(cs *changeset.ChangeSet) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", cs.ProducerSlug, cs.ScheduledDate.Format("2006-01-02"), cs.ID)
}

// WriteChangeSet writes a workbook with one row per change and a summary sheet
func WriteChangeSet(w io.Writer, cs *changeset.ChangeSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), changesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := writeRow(f, changesSheet, 1, header); err != nil {
		return err
	}

	outcomes := outcomeByID(cs)
	for i, c := range cs.Changes {
		row := []any{
			c.ID, c.Category, c.Product, c.Element, c.PriceGroup, c.PriceClass, c.Dimension,
			c.OldPrice, c.NewPrice, c.PercentChange, outcomes(c.ID),
		}
		if err := writeRow(f, changesSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(changesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := [][]any{
		{"id", cs.ID},
		{"producent", cs.ProducerName},
		{"data_aktywacji", cs.ScheduledDate.Format("2006-01-02")},
		{"status", string(cs.Status)},
		{"zmian", cs.Summary.TotalChanges},
		{"wzrostow", cs.Summary.Increased},
		{"spadkow", cs.Summary.Decreased},
		{"srednia_zmiana_proc", cs.Summary.AvgChangePercent},
	}
	if cs.AppliedAt != nil {
		summary = append(summary, []any{"zastosowano", cs.AppliedAt.Format("2006-01-02 15:04")})
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeRow fills row r of sheet starting at column A
func writeRow(f *excelize.File, sheet string, r int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		return fmt.Errorf("failed to address %s row %d: %w", sheet, r, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, r, err)
	}
	return nil
}

// outcomeByID reports the stored apply outcome of a change; pending sets have none
func outcomeByID(cs *changeset.ChangeSet) func(string) string {
	if cs.Report == nil {
		return func(string) string { return "" }
	}
	status := make(map[string]string)
	for _, id := range cs.Report.SkippedIDs {
		status[id] = "skipped_not_found"
	}
	for _, id := range cs.Report.ConflictIDs {
		status[id] = "conflict"
	}
	return func(id string) string {
		if s, ok := status[id]; ok {
			return s
		}
		return "applied"
	}
}
