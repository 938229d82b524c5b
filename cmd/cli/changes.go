package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/reconcile"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled change-sets",
	Example: `  pricelist list
  pricelist list --status applied -o json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List change-sets whose activation day has come",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(); err != nil {
			return err
		}
		due, err := services.ChangeSets.Due(cmd.Context())
		if err != nil {
			return err
		}
		return outputChangeSets(due)
	},
}

var runDueCmd = &cobra.Command{
	Use:   "run-due",
	Short: "Apply every due change-set",
	Long: `Apply every pending change-set whose activation day is today or earlier.
Failures are reported per change-set; the remaining sets are still applied.
Suitable for cron when the service runs with the scheduler disabled.`,
	Args: cobra.NoArgs,
	RunE: runRunDue,
}

var applyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Apply one pending change-set now, regardless of its date",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var rescheduleCmd = &cobra.Command{
	Use:     "reschedule <id> <date>",
	Short:   "Move a pending change-set to another day",
	Example: `  pricelist reschedule chg_k3j9x2 2026-04-01`,
	Args:    cobra.ExactArgs(2),
	RunE:    runReschedule,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pending change-set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.ChangeSets.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, dueCmd, runDueCmd, applyCmd, rescheduleCmd, deleteCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "all", "Status filter: pending, applied, cancelled or all")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	status, err := changeset.ParseStatusFilter(listStatus)
	if err != nil {
		return err
	}
	sets, err := services.ChangeSets.List(cmd.Context(), status)
	if err != nil {
		return err
	}
	return outputChangeSets(sets)
}

func outputChangeSets(sets []*changeset.ChangeSet) error {
	if jsonOutput() {
		if sets == nil {
			sets = []*changeset.ChangeSet{}
		}
		return printJSON(sets)
	}

	if len(sets) == 0 {
		fmt.Println("No change-sets")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID\tProducer\tDate\tStatus\tChanges\tAvg %%\n")
	fmt.Fprintf(w, "--\t--------\t----\t------\t-------\t-----\n")
	for _, cs := range sets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%+.1f\n",
			cs.ID, cs.ProducerSlug, cs.ScheduledDate.Format("2006-01-02"), cs.Status,
			cs.Summary.TotalChanges, cs.Summary.AvgChangePercent)
	}
	return w.Flush()
}

func runRunDue(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	result, err := services.Trigger.RunDue(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput() {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		fmt.Printf("\nApplied %d change-set(s)\n", len(result.Applied))
		fmt.Println(strings.Repeat("-", 60))
		for _, line := range result.Applied {
			fmt.Println(line)
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d change-set(s) failed", len(result.Errors))
	}
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	cs, report, err := services.Trigger.ApplyNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(struct {
			Change *changeset.ChangeSet `json:"change"`
			Report reconcile.Report     `json:"report"`
		}{cs, report})
	}

	fmt.Printf("\nApplied %s (%s)\n", cs.ID, cs.ProducerName)
	fmt.Println(strings.Repeat("-", 60))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Outcome\tCount\n")
	fmt.Fprintf(w, "-------\t-----\n")
	fmt.Fprintf(w, "Applied\t%d\n", report.Applied)
	fmt.Fprintf(w, "Unchanged\t%d\n", report.Unchanged)
	fmt.Fprintf(w, "Not found\t%d\n", report.Skipped)
	fmt.Fprintf(w, "Conflicts\t%d\n", report.Conflicts)
	return w.Flush()
}

func runReschedule(cmd *cobra.Command, args []string) error {
	date, err := time.ParseInLocation("2006-01-02", args[1], services.ChangeSets.Location())
	if err != nil {
		return fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", args[1], err)
	}
	cs, err := services.ChangeSets.Reschedule(cmd.Context(), args[0], date)
	if err != nil {
		return err
	}
	fmt.Printf("Rescheduled %s to %s\n", cs.ID, cs.ScheduledDate.Format("2006-01-02"))
	return nil
}
