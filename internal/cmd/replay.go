package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/gate"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/scenario"
)

var (
	replayWorkers int
	replayFormat  string
	replayGate    bool
)

var replayCmd = &cobra.Command{
	Use:     "replay <file|->",
	Short:   "Run a script of situations through the engine",
	GroupID: groupCore,
	Long: `Replay a scenario file: one situation per line as key=value pairs.
Decisions are printed, not recorded. Keys: type, id, confidence, time,
load, location, app, eligible, anchors.

Example file:
  # commute, then a late night
  type=WAITING_CONTEXT confidence=0.9 time=afternoon location=transit
  type=LATE_NIGHT_IDLE time=night load=high anchors="Mindful,Calm"

Examples:
  dopamenu replay week.txt
  dopamenu replay --workers 8 --format json week.txt
  cat week.txt | dopamenu replay -`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().IntVarP(&replayWorkers, "workers", "w", 0, "parallel workers (default: one per CPU)")
	replayCmd.Flags().StringVar(&replayFormat, "format", "text", "output format: text or json")
	replayCmd.Flags().BoolVar(&replayGate, "gate", false, "also report what the gate would block (cooldown not applied)")
	rootCmd.AddCommand(replayCmd)
}

type replayOutput struct {
	Line     int            `json:"line"`
	Decision model.Decision `json:"decision"`
	Blocked  []blockOutput  `json:"blocked,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open scenario file: %w", err)
		}
		defer f.Close()
		in = f
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scenarios, err := scenario.Parse(in, a.now())
	if err != nil {
		return err
	}

	eng, err := a.engine()
	if err != nil {
		return err
	}

	results, err := scenario.Replay(commandContext(cmd), eng, scenarios, replayWorkers)
	if err != nil {
		return err
	}
	a.logger.Info("scenarios replayed", "count", len(results), "workers", replayWorkers)

	var g *gate.Gate
	if replayGate {
		g = a.gate()
	}

	out := cmd.OutOrStdout()
	if replayFormat == "json" {
		rows := make([]replayOutput, 0, len(results))
		for _, r := range results {
			rows = append(rows, replayOutput{
				Line:     r.Scenario.Line,
				Decision: r.Decision,
				Blocked:  gateBlocks(g, r),
			})
		}
		return writeJSON(out, rows)
	}

	for _, r := range results {
		alts := make([]string, 0, len(r.Decision.Alternatives))
		for _, c := range r.Decision.Alternatives {
			alts = append(alts, c.ID)
		}
		line := fmt.Sprintf("%s %-24s %-8s → %s",
			styleDim.Render(fmt.Sprintf("%4d", r.Scenario.Line)),
			string(r.Scenario.Situation.Type),
			string(r.Decision.Budget.Level),
			styleBold.Render(r.Decision.Primary.ID))
		if len(alts) > 0 {
			line += styleDim.Render(" (" + strings.Join(alts, ", ") + ")")
		}
		if r.Decision.Fallback {
			line += styleYellow.Render(" fallback")
		}
		if blocks := gateBlocks(g, r); len(blocks) > 0 {
			kinds := make([]string, 0, len(blocks))
			for _, b := range blocks {
				kinds = append(kinds, b.Kind)
			}
			line += styleRed.Render(" blocked: " + strings.Join(kinds, ","))
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func gateBlocks(g *gate.Gate, r scenario.Result) []blockOutput {
	if g == nil {
		return nil
	}
	v := g.Check(r.Scenario.Situation.StartedAt, r.Scenario.User, r.Scenario.Situation, nil)
	out := make([]blockOutput, 0, len(v.Blocks))
	for _, b := range v.Blocks {
		out = append(out, blockOutput{Kind: string(b.Kind), Reason: b.Reason})
	}
	return out
}
