// Package filter removes catalog candidates that the current situation
// cannot accommodate.
//
// Two checks apply, in order:
//
//	effort   -> the candidate's required tier must not exceed the budget
//	context  -> every context constraint the filter knows how to evaluate
//	            must pass
//
// Only location constraints with the equals and not_equals operators are
// evaluated. Time, app and custom constraints, and the contains operator,
// are accepted in catalogs but always pass.
package filter

import (
	"fmt"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// RejectReason classifies why a candidate was dropped.
type RejectReason string

const (
	RejectEffort   RejectReason = "effort"
	RejectLocation RejectReason = "location"
)

// Rejection records one dropped candidate.
type Rejection struct {
	CandidateID string
	Reason      RejectReason
	Detail      string
}

// Skipped records a constraint that was present but not evaluated.
type Skipped struct {
	CandidateID string
	Constraint  model.ContextConstraint
}

// Result is the full outcome of a filter pass.
type Result struct {
	Kept     []model.Candidate
	Rejected []Rejection
	Skipped  []Skipped
}

// Filter returns the candidates that fit the effort budget and the
// situation's context, preserving catalog order.
func Filter(candidates []model.Candidate, budget model.EffortBudget, s model.Situation, u model.User) []model.Candidate {
	return Evaluate(candidates, budget, s, u).Kept
}

// Evaluate is Filter with the bookkeeping of what was dropped and why.
// The user is accepted for parity with ranking and is not consulted today.
func Evaluate(candidates []model.Candidate, budget model.EffortBudget, s model.Situation, _ model.User) Result {
	res := Result{Kept: make([]model.Candidate, 0, len(candidates))}

	for _, c := range candidates {
		if c.RequiredEffort.Exceeds(budget.Level) {
			res.Rejected = append(res.Rejected, Rejection{
				CandidateID: c.ID,
				Reason:      RejectEffort,
				Detail:      fmt.Sprintf("requires %s, budget %s", c.RequiredEffort, budget.Level),
			})
			continue
		}

		if rej, ok := checkConstraints(c, s, &res.Skipped); !ok {
			res.Rejected = append(res.Rejected, rej)
			continue
		}

		res.Kept = append(res.Kept, c)
	}

	return res
}

// checkConstraints applies every constraint of c. All must pass.
func checkConstraints(c model.Candidate, s model.Situation, skipped *[]Skipped) (Rejection, bool) {
	for _, cc := range c.ContextConstraints {
		pass, evaluated := evaluateConstraint(cc, s)
		if !evaluated {
			*skipped = append(*skipped, Skipped{CandidateID: c.ID, Constraint: cc})
			continue
		}
		if !pass {
			return Rejection{
				CandidateID: c.ID,
				Reason:      RejectLocation,
				Detail: fmt.Sprintf("location %q fails %s %q",
					s.Context.LocationCategory, cc.Operator, cc.Value),
			}, false
		}
	}
	return Rejection{}, true
}

// evaluateConstraint returns (pass, evaluated). Unevaluated constraints pass.
func evaluateConstraint(cc model.ContextConstraint, s model.Situation) (bool, bool) {
	if cc.Type != model.ConstraintLocation {
		return true, false
	}

	location := string(s.Context.LocationCategory)
	switch cc.Operator {
	case model.OpEquals:
		return location == cc.Value, true
	case model.OpNotEquals:
		return location != cc.Value, true
	default:
		return true, false
	}
}
