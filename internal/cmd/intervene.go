package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/runger/dopamenu/internal/intervention/gate"
	dlog "github.com/runger/dopamenu/internal/intervention/log"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/picker"
)

// interveneOptions are the flags shared by urge and simulate.
type interveneOptions struct {
	force       bool
	interactive bool
	format      string
}

// runPicker shows the interactive menu on the controlling terminal.
var runPicker = func(ctx context.Context, d model.Decision) (picker.Result, error) {
	// stdout may be a pipe; draw on the tty instead.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return picker.Run(ctx, d, os.Stdin, os.Stderr)
	}
	defer tty.Close()

	if colorMode == "auto" && !shouldDisableColors() {
		lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())
	}
	return picker.Run(ctx, d, tty, tty)
}

type blockOutput struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type interveneOutput struct {
	Blocked  bool            `json:"blocked"`
	Blocks   []blockOutput   `json:"blocks,omitempty"`
	Decision *model.Decision `json:"decision,omitempty"`
	Outcome  *model.Outcome  `json:"outcome,omitempty"`
}

// intervene gates the situation against history, generates and records a
// decision, and optionally asks the user for the outcome.
func intervene(ctx context.Context, out io.Writer, a *app, sit model.Situation, u model.User, opts interveneOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (must be text or json)", opts.format)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	if !opts.force {
		last, err := store.LastInterventionAt(ctx)
		if err != nil {
			return err
		}
		verdict := a.gate().Check(a.now(), u, sit, last)
		if !verdict.Allowed {
			dlog.LogGateBlocked(a.logger, sit.ID, verdict.Kinds())
			return writeBlocked(out, verdict, opts.format)
		}
	}

	eng, err := a.engine()
	if err != nil {
		return err
	}

	d := eng.Generate(sit, u)
	if err := store.RecordDecision(ctx, d, sit); err != nil {
		dlog.LogSQLiteError(a.logger, "record_decision", err)
		return fmt.Errorf("failed to record decision: %w", err)
	}

	var outcome *model.Outcome
	if opts.interactive {
		res, err := runPicker(ctx, d)
		if err != nil {
			return err
		}
		o, err := store.RecordOutcome(ctx, model.Outcome{
			InterventionID: d.ID,
			Action:         res.Action,
			CandidateID:    res.CandidateID,
			Timestamp:      a.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record outcome: %w", err)
		}
		dlog.LogOutcome(a.logger, o)
		outcome = &o
	}

	if opts.format == "json" {
		return writeJSON(out, interveneOutput{Decision: &d, Outcome: outcome})
	}
	printDecision(out, d)
	if outcome != nil {
		printOutcome(out, *outcome)
	} else {
		fmt.Fprintln(out, styleDim.Render("Record what you did: dopamenu outcome accepted|dismissed|continued_default"))
	}
	return nil
}

func writeBlocked(out io.Writer, v gate.Verdict, format string) error {
	if format == "json" {
		blocks := make([]blockOutput, 0, len(v.Blocks))
		for _, b := range v.Blocks {
			blocks = append(blocks, blockOutput{Kind: string(b.Kind), Reason: b.Reason})
		}
		return writeJSON(out, interveneOutput{Blocked: true, Blocks: blocks})
	}

	fmt.Fprintln(out, styleYellow.Render("No intervention right now:"))
	for _, b := range v.Blocks {
		fmt.Fprintf(out, "  - %s\n", b.Reason)
	}
	fmt.Fprintln(out, styleDim.Render("Use --force to skip these checks."))
	return nil
}

func printDecision(out io.Writer, d model.Decision) {
	width := termWidth()

	fmt.Fprintln(out, styleBold.Render(picker.MiddleTruncate(picker.Clean(d.Explanation), width)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s %s\n",
		styleGreen.Render("→"),
		styleBold.Render(candidateLine(d.Primary, width-16)),
		styleDim.Render("["+string(d.Primary.RequiredEffort)+"]"))
	if desc := picker.Clean(d.Primary.Description); desc != "" {
		fmt.Fprintf(out, "  %s\n", picker.MiddleTruncate(desc, width-2))
	}
	if len(d.Reasons) > 0 {
		why := make([]string, 0, len(d.Reasons))
		for _, r := range d.Reasons {
			why = append(why, r.Description)
		}
		fmt.Fprintf(out, "  %s %s\n", styleDim.Render("why:"), strings.Join(why, "; "))
	}
	if d.Fallback {
		fmt.Fprintf(out, "  %s\n", styleYellow.Render("nothing else fit right now, so here is the simplest option"))
	}

	if len(d.Alternatives) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleDim.Render("or:"))
		for i, c := range d.Alternatives {
			fmt.Fprintf(out, "  %d. %s %s\n", i+2, candidateLine(c, width-20), styleDim.Render("["+string(c.RequiredEffort)+"]"))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s\n", styleDim.Render("decision"), styleCyan.Render(d.ID))
}

func candidateLine(c model.Candidate, width int) string {
	label := picker.Clean(c.Label)
	if c.Icon != "" {
		label = picker.Clean(c.Icon) + " " + label
	}
	if width < 10 {
		return label
	}
	return picker.MiddleTruncate(label, width)
}

func printOutcome(out io.Writer, o model.Outcome) {
	line := fmt.Sprintf("Recorded %s", o.Action)
	if o.CandidateID != "" {
		line += " (" + o.CandidateID + ")"
	}
	fmt.Fprintln(out, styleGreen.Render(line))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
