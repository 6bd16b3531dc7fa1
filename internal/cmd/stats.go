package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show how often suggestions were taken",
	GroupID: groupCore,
	Long: `Show lifetime counts: decisions shown, outcomes by action, and the
acceptance rate (accepted / shown). Counts survive history pruning and
are cleared by "dopamenu history --reset".`,
	Args:    cobra.NoArgs,
	RunE:    runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Total          int     `json:"total"`
	Accepted       int     `json:"accepted"`
	Dismissed      int     `json:"dismissed"`
	Continued      int     `json:"continued_default"`
	Pending        int     `json:"pending"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	st, err := store.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsFormat == "json" {
		return writeJSON(out, statsOutput{
			Total:          st.Total,
			Accepted:       st.Accepted,
			Dismissed:      st.Dismissed,
			Continued:      st.Continued,
			Pending:        max(0, st.Total-st.Responded()),
			AcceptanceRate: st.AcceptanceRate(),
		})
	}

	if st.Total == 0 {
		fmt.Fprintln(out, "No interventions recorded yet.")
		return nil
	}

	fmt.Fprintln(out, styleBold.Render("Outcomes"))
	fmt.Fprintf(out, "  %-18s %d\n", "shown", st.Total)
	fmt.Fprintf(out, "  %-18s %s\n", "accepted", styleGreen.Render(fmt.Sprint(st.Accepted)))
	fmt.Fprintf(out, "  %-18s %d\n", "dismissed", st.Dismissed)
	fmt.Fprintf(out, "  %-18s %d\n", "continued_default", st.Continued)
	fmt.Fprintf(out, "  %-18s %d\n", "no answer", max(0, st.Total-st.Responded()))
	fmt.Fprintf(out, "  %-18s %.0f%%\n", "acceptance rate", st.AcceptanceRate()*100)
	return nil
}
