package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/export"
	"github.com/cenniki/pricelist-service/internal/importer"
)

var (
	importSchedule string
	exportOut      string
)

var producersCmd = &cobra.Command{
	Use:   "producers",
	Short: "List configured producers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(); err != nil {
			return err
		}
		list := services.Catalogs.Registry().List()
		if jsonOutput() {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Slug\tName\tLayout\n")
		fmt.Fprintf(w, "----\t----\t------\n")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Slug, p.Name, p.Layout)
		}
		return w.Flush()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <producer> <file>",
	Short: "Preview the price changes in a producer price list",
	Long: `Parse an XLSX, CSV, HTML or PDF price list and match it against the producer's
stored catalog. With --schedule the resulting changes are stored as a pending
change-set for that day.`,
	Example: `  pricelist import meble ./cennik-2026.xlsx
  pricelist import meble ./cennik.csv --schedule 2026-04-01`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a change-set report as XLSX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(producersCmd, importCmd, exportCmd)

	importCmd.Flags().StringVar(&importSchedule, "schedule", "", "Schedule the changes for this day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default is the generated report name)")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	slug, path := args[0], args[1]
	ctx := cmd.Context()

	producer, err := services.Catalogs.Registry().Get(slug)
	if err != nil {
		return err
	}

	logger.Info().Str("file", path).Msg("Reading file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	snap, err := services.Catalogs.Load(ctx, slug)
	if err != nil {
		return err
	}
	result, err := importer.New(producer.RowPriceColumns, logger).Import(filepath.Base(path), content)
	if err != nil {
		return err
	}
	projection := importer.Project(snap.Document, result.Document)

	var scheduled *changeset.ChangeSet
	if importSchedule != "" {
		date, err := time.ParseInLocation("2006-01-02", importSchedule, services.ChangeSets.Location())
		if err != nil {
			return fmt.Errorf("invalid --schedule date %q: %w", importSchedule, err)
		}
		scheduled, err = services.ChangeSets.Create(ctx, changeset.CreateInput{
			Producer:      changeset.Producer{Slug: producer.Slug, Name: producer.Name},
			ScheduledDate: date,
			Changes:       projection.Changes,
		})
		if err != nil {
			return err
		}
	}

	if jsonOutput() {
		return printJSON(struct {
			Format      importer.Format     `json:"format"`
			Rows        int                 `json:"rows"`
			Warnings    []importer.Warning  `json:"warnings"`
			Projection  importer.Projection `json:"projection"`
			ScheduledID string              `json:"scheduledId,omitempty"`
		}{result.Format, result.Rows, result.Warnings, projection, idOf(scheduled)})
	}

	fmt.Printf("\nImport of %s for %s (%s, %d rows)\n", filepath.Base(path), producer.Name, result.Format, result.Rows)
	outputChanges(projection.Changes, projection.Summary, 50)
	if len(projection.Unmatched) > 0 {
		fmt.Printf("\nNot in catalog: %s\n", strings.Join(projection.Unmatched, ", "))
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s row %d: %s\n", w.Table, w.Row, w.Message)
	}
	if scheduled != nil {
		fmt.Printf("\nScheduled %s for %s\n", scheduled.ID, scheduled.ScheduledDate.Format("2006-01-02"))
	}
	return nil
}

func idOf(cs *changeset.ChangeSet) string {
	if cs == nil {
		return ""
	}
	return cs.ID
}

func runExport(cmd *cobra.Command, args []string) error {
	cs, err := services.ChangeSets.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = export.Filename(cs)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if err := export.WriteChangeSet(f, cs); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return f.Close()
}
