package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/pricediff"
)

var (
	diffLayout  string
	diffColumns []string
	diffLimit   int
)

// diffCmd compares two catalog files offline
var diffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Show price changes between two catalog documents",
	Long: `Compare two versions of a catalog document and list every modified price cell.
Products present on one side only are reported separately and never become changes.

Layouts: category, elements, flat, rows`,
	Example: `  pricelist diff old.json new.json --layout category
  pricelist diff old.json new.json --layout rows --columns "netto,brutto" -o json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffLayout, "layout", "", "Catalog layout (required)")
	diffCmd.Flags().StringSliceVar(&diffColumns, "columns", nil, "Price columns of row-table catalogs")
	diffCmd.Flags().IntVar(&diffLimit, "limit", 50, "Maximum changes shown in table output")
	_ = diffCmd.MarkFlagRequired("layout")
}

func readCatalog(path string, layout catalog.Layout, opts ...catalog.Option) (*catalog.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	doc, err := catalog.Decode(layout, content, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	layout, err := catalog.ParseLayout(diffLayout)
	if err != nil {
		return err
	}
	opts := []catalog.Option{catalog.WithRowPriceColumns(diffColumns)}

	oldDoc, err := readCatalog(args[0], layout, opts...)
	if err != nil {
		return err
	}
	newDoc, err := readCatalog(args[1], layout, opts...)
	if err != nil {
		return err
	}

	result := pricediff.Diff(oldDoc, newDoc)
	if jsonOutput() {
		return printJSON(result)
	}
	outputChanges(result.Changes, result.Summary, diffLimit)

	if n := len(result.Structural.Added) + len(result.Structural.Removed); n > 0 {
		fmt.Printf("\nStructural: %d added, %d removed (not replayed)\n",
			len(result.Structural.Added), len(result.Structural.Removed))
	}
	return nil
}

func outputChanges(changes []pricediff.AtomicChange, summary pricediff.Summary, limit int) {
	fmt.Printf("\n%d change(s): %d up, %d down, average %+.1f%%\n",
		summary.TotalChanges, summary.Increased, summary.Decreased, summary.AvgChangePercent)
	if len(changes) == 0 {
		return
	}
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Change\tOld\tNew\t%%\n")
	fmt.Fprintf(w, "------\t---\t---\t-\n")
	for i, c := range changes {
		if i >= limit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%+.1f\n", c.ID, catalog.FormatPrice(c.OldPrice), catalog.FormatPrice(c.NewPrice), c.PercentChange)
	}
	w.Flush()

	if len(changes) > limit {
		fmt.Printf("... and %d more changes\n", len(changes)-limit)
	}
}
