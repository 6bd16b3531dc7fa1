package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/history"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/picker"
)

var (
	historyLimit  int
	historyFormat string
	historyReset  bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Show recent decisions and their outcomes",
	GroupID: groupCore,
	Long: `Show recent decisions, newest first, with the outcome recorded for each.

Examples:
  dopamenu history                # Show the last 20 decisions
  dopamenu history --limit=50
  dopamenu history --format=json
  dopamenu history --reset        # Forget all decisions and outcomes`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of decisions to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "output format: text or json")
	historyCmd.Flags().BoolVar(&historyReset, "reset", false, "delete all stored decisions and outcomes")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if historyReset {
		if err := store.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
		a.logger.Info("history reset")
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	records, err := store.RecentDecisions(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	if historyFormat == "json" {
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No decisions recorded yet.")
		return nil
	}

	width := termWidth()
	for _, r := range records {
		printRecord(out, r, width)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("Showing %d decision(s)", len(records))))
	return nil
}

// printRecord renders "time  TYPE  primary  outcome" on one line.
func printRecord(out io.Writer, r history.Record, width int) {
	ts := r.Decision.Timestamp.Local().Format("01-02 15:04")

	status := styleYellow.Render("pending")
	if r.Outcome != nil {
		status = string(r.Outcome.Action)
		if r.Outcome.CandidateID != "" && r.Outcome.CandidateID != r.Decision.Primary.ID {
			status += " → " + r.Outcome.CandidateID
		}
		if r.Outcome.Action == model.OutcomeAccepted {
			status = styleGreen.Render(status)
		}
	}

	label := picker.Clean(r.Decision.Primary.Label)
	if r.Decision.Fallback {
		label += " (fallback)"
	}
	// timestamp, type and status take roughly 60 columns
	if width > 70 {
		label = picker.MiddleTruncate(label, width-60)
	}

	fmt.Fprintf(out, "%s  %-26s %s  %s\n",
		styleDim.Render(ts),
		string(r.Situation.Type),
		label,
		status)
}
