package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/situation"
)

var (
	urgeType        string
	urgeConfidence  float64
	urgeTime        string
	urgeLoad        string
	urgeLocation    string
	urgeApp         string
	urgeAnchors     []string
	urgeForce       bool
	urgeInteractive bool
	urgeFormat      string
)

var urgeCmd = &cobra.Command{
	Use:     "urge",
	Short:   "Get an alternative to the thing you were about to open",
	GroupID: groupCore,
	Long: `Describe the moment and get one concrete alternative plus a few runners-up.

The situation is checked against your cooldown, quiet hours and the
confidence floor first; --force skips those checks. Every decision is
stored so that "dopamenu outcome" can record what you did.

Examples:
  dopamenu urge                                   # I just reached for the phone
  dopamenu urge --type WAITING_CONTEXT --location transit
  dopamenu urge --type LATE_NIGHT_IDLE --load high --anchor Calm
  dopamenu urge -i                                # pick from a menu`,
	Args: cobra.NoArgs,
	RunE: runUrge,
}

func init() {
	urgeCmd.Flags().StringVarP(&urgeType, "type", "t", string(model.SituationRepeatedAppOpen), "situation type")
	urgeCmd.Flags().Float64Var(&urgeConfidence, "confidence", 0.8, "how sure you are about the situation (0-1)")
	urgeCmd.Flags().StringVar(&urgeTime, "time", "", "time of day bucket (default: from the clock)")
	urgeCmd.Flags().StringVar(&urgeLoad, "load", "", "recent cognitive load: low, medium, or high")
	urgeCmd.Flags().StringVar(&urgeLocation, "location", "", "home, work, transit, public, or unknown")
	urgeCmd.Flags().StringVar(&urgeApp, "app", "", "category of the app you were about to open")
	urgeCmd.Flags().StringSliceVar(&urgeAnchors, "anchor", nil, "identity anchor (repeatable; overrides profile.anchors)")
	urgeCmd.Flags().BoolVarP(&urgeForce, "force", "f", false, "skip cooldown, quiet hours and confidence checks")
	urgeCmd.Flags().BoolVarP(&urgeInteractive, "interactive", "i", false, "choose from a menu and record the outcome")
	urgeCmd.Flags().StringVar(&urgeFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(urgeCmd)
}

func runUrge(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sit, err := buildSituation(a)
	if err != nil {
		return err
	}

	u := a.cfg.User()
	if len(urgeAnchors) > 0 {
		u.IdentityAnchors = model.AnchorsFromLabels(urgeAnchors...)
		u.OnboardingCompleted = true
	}

	return intervene(commandContext(cmd), cmd.OutOrStdout(), a, sit, u, interveneOptions{
		force:       urgeForce,
		interactive: urgeInteractive,
		format:      urgeFormat,
	})
}

// buildSituation turns the urge flags into a situation stamped now.
func buildSituation(a *app) (model.Situation, error) {
	t := model.SituationType(strings.ToUpper(urgeType))
	if !t.IsValid() {
		return model.Situation{}, fmt.Errorf("unknown situation type %q", urgeType)
	}
	if urgeConfidence < 0 || urgeConfidence > 1 {
		return model.Situation{}, fmt.Errorf("confidence must be between 0 and 1 (got: %v)", urgeConfidence)
	}

	sit := situation.Now(t, urgeConfidence, a.now())

	if urgeTime != "" && urgeTime != "now" {
		b := model.TimeBucket(urgeTime)
		if !b.IsValid() {
			return model.Situation{}, fmt.Errorf("unknown time bucket %q", urgeTime)
		}
		sit.Context.TimeOfDay = b
	}
	if urgeLoad != "" {
		l := model.CognitiveLoad(urgeLoad)
		if !l.IsValid() {
			return model.Situation{}, fmt.Errorf("unknown load %q", urgeLoad)
		}
		sit.Context.RecentCognitiveLoad = l
	}
	if urgeLocation != "" {
		l := model.LocationCategory(urgeLocation)
		if !l.IsValid() {
			return model.Situation{}, fmt.Errorf("unknown location %q", urgeLocation)
		}
		sit.Context.LocationCategory = l
	}
	if urgeApp != "" {
		c := model.AppCategory(urgeApp)
		if !c.IsValid() {
			return model.Situation{}, fmt.Errorf("unknown app category %q", urgeApp)
		}
		sit.Context.AppCategory = c
	}

	return sit, nil
}
