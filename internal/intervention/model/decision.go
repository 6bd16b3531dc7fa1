package model

import "time"

// Reason describes one weighted component of a candidate's score.
// Contribution is the share of the total score (0.0 to 1.0).
type Reason struct {
	Tag          string  `json:"tag"`
	Description  string  `json:"description"`
	Contribution float64 `json:"contribution"`
}

// MaxAlternatives bounds Decision.Alternatives.
const MaxAlternatives = 3

// Decision is the engine output: one primary suggestion, up to
// MaxAlternatives alternatives and a short explanation.
type Decision struct {
	ID           string        `json:"id"`
	SituationID  string        `json:"situation_id"`
	Primary      Candidate     `json:"primary"`
	Alternatives []Candidate   `json:"alternatives"`
	Explanation  string        `json:"explanation"`
	Timestamp    time.Time     `json:"timestamp"`
	Itches       ItchInference `json:"itches"`
	Budget       EffortBudget  `json:"budget"`
	Reasons      []Reason      `json:"reasons,omitempty"`

	// Fallback is set when nothing survived filtering and Primary is the
	// first entry of the unfiltered catalog.
	Fallback bool `json:"fallback,omitempty"`
}

// Candidates returns the primary followed by the alternatives.
func (d Decision) Candidates() []Candidate {
	out := make([]Candidate, 0, 1+len(d.Alternatives))
	out = append(out, d.Primary)
	return append(out, d.Alternatives...)
}

// OutcomeAction is what the user did with a decision.
type OutcomeAction string

const (
	OutcomeAccepted         OutcomeAction = "accepted"
	OutcomeDismissed        OutcomeAction = "dismissed"
	OutcomeContinuedDefault OutcomeAction = "continued_default"
)

// IsValid returns true if a is a recognized outcome action.
func (a OutcomeAction) IsValid() bool {
	switch a {
	case OutcomeAccepted, OutcomeDismissed, OutcomeContinuedDefault:
		return true
	}
	return false
}

// Outcome records the user's response to a decision.
type Outcome struct {
	InterventionID string        `json:"intervention_id"`
	Action         OutcomeAction `json:"action"`
	CandidateID    string        `json:"candidate_id,omitempty"`
	FollowThrough  *bool         `json:"follow_through,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}
