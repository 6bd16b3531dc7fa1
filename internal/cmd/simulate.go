package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/situation"
)

var (
	simulateForce       bool
	simulateInteractive bool
	simulateFormat      string
)

var simulateCmd = &cobra.Command{
	Use:     "simulate",
	Short:   "Run the engine on a randomly generated situation",
	GroupID: groupCore,
	Long: `Draw a plausible situation at random and run it through the same
gate, engine and history as "dopamenu urge". Useful for trying out a
catalog or new weights.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVarP(&simulateForce, "force", "f", false, "skip cooldown, quiet hours and confidence checks")
	simulateCmd.Flags().BoolVarP(&simulateInteractive, "interactive", "i", false, "choose from a menu and record the outcome")
	simulateCmd.Flags().StringVar(&simulateFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sit := situation.Simulate(nil, a.now())
	a.logger.Debug("situation simulated", "situation_id", sit.ID, "type", sit.Type, "time_of_day", sit.Context.TimeOfDay)

	return intervene(commandContext(cmd), cmd.OutOrStdout(), a, sit, a.cfg.User(), interveneOptions{
		force:       simulateForce,
		interactive: simulateInteractive,
		format:      simulateFormat,
	})
}
