package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/history"
	dlog "github.com/runger/dopamenu/internal/intervention/log"
	"github.com/runger/dopamenu/internal/intervention/model"
)

var (
	outcomeDecision      string
	outcomeCandidate     string
	outcomeFollowThrough string
)

var outcomeCmd = &cobra.Command{
	Use:     "outcome <accepted|dismissed|continued_default>",
	Short:   "Record what you did with a suggestion",
	GroupID: groupCore,
	Long: `Record the outcome of a decision. Without --decision the newest
decision that has no outcome yet is used. An accepted outcome without
--candidate means the primary suggestion.

Recording an outcome starts the cooldown.

Examples:
  dopamenu outcome accepted
  dopamenu outcome accepted --candidate stretch
  dopamenu outcome dismissed --decision 5f0c...
  dopamenu outcome accepted --follow-through=false`,
	Args: cobra.ExactArgs(1),
	ValidArgs: []string{
		string(model.OutcomeAccepted),
		string(model.OutcomeDismissed),
		string(model.OutcomeContinuedDefault),
	},
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().StringVar(&outcomeDecision, "decision", "", "decision ID (default: latest pending)")
	outcomeCmd.Flags().StringVar(&outcomeCandidate, "candidate", "", "candidate ID you chose")
	outcomeCmd.Flags().StringVar(&outcomeFollowThrough, "follow-through", "", "whether you actually did it (true or false)")
	rootCmd.AddCommand(outcomeCmd)
}

func runOutcome(cmd *cobra.Command, args []string) error {
	action := model.OutcomeAction(args[0])
	if !action.IsValid() {
		return fmt.Errorf("unknown outcome %q (must be accepted, dismissed, or continued_default)", args[0])
	}

	var followThrough *bool
	if outcomeFollowThrough != "" {
		v, err := strconv.ParseBool(outcomeFollowThrough)
		if err != nil {
			return fmt.Errorf("invalid --follow-through: %w", err)
		}
		followThrough = &v
	}

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
	decisionID := outcomeDecision
	if decisionID == "" {
		rec, err := store.LatestPending(ctx)
		if errors.Is(err, history.ErrNotFound) {
			return errors.New("no pending decision; run \"dopamenu urge\" first or pass --decision")
		}
		if err != nil {
			return err
		}
		decisionID = rec.Decision.ID
	}

	o, err := store.RecordOutcome(ctx, model.Outcome{
		InterventionID: decisionID,
		Action:         action,
		CandidateID:    outcomeCandidate,
		FollowThrough:  followThrough,
		Timestamp:      a.now(),
	})
	if err != nil {
		return err
	}
	dlog.LogOutcome(a.logger, o)

	printOutcome(cmd.OutOrStdout(), o)
	return nil
}
