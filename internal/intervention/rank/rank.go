// Package rank orders filtered candidates by a weighted composite score.
package rank

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/modality"
)

// Reason tags for the score components.
const (
	ReasonModality = "modality"
	ReasonIdentity = "identity"
	ReasonEffort   = "effort"
	ReasonVariety  = "variety"
)

// NeutralIdentityScore is used when the user has no identity anchors.
const NeutralIdentityScore = 0.5

// Weights holds the composite score weights. Variety is the upper bound of
// the random bonus, already weighted.
type Weights struct {
	Modality float64
	Identity float64
	Effort   float64
	Variety  float64
}

// DefaultWeights returns the standard weights: 0.40 modality, 0.30 identity,
// 0.15 effort and a variety bonus in [0, 0.15].
func DefaultWeights() Weights {
	return Weights{
		Modality: 0.40,
		Identity: 0.30,
		Effort:   0.15,
		Variety:  0.15,
	}
}

// VarietySource yields values in [0, 1). *rand.Rand satisfies it.
type VarietySource interface {
	Float64() float64
}

type globalSource struct{}

// Float64 uses the goroutine-safe top-level generator.
func (globalSource) Float64() float64 { return rand.Float64() }

type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }

// NoVariety disables the random bonus, making Rank fully deterministic.
var NoVariety VarietySource = zeroSource{}

// Breakdown is the weighted contribution of each factor to a score.
type Breakdown struct {
	Modality float64
	Identity float64
	Effort   float64
	Variety  float64
}

// Total sums the contributions.
func (b Breakdown) Total() float64 {
	return b.Modality + b.Identity + b.Effort + b.Variety
}

// Scored is a candidate with its composite score.
type Scored struct {
	Candidate model.Candidate
	Score     float64
	Breakdown Breakdown
}

// Ranker scores and orders candidates. It holds no mutable state; whether it
// is safe for concurrent use depends on its VarietySource.
type Ranker struct {
	weights Weights
	variety VarietySource
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithWeights overrides the default weights.
func WithWeights(w Weights) Option {
	return func(r *Ranker) { r.weights = w }
}

// WithVariety sets the random source for the variety bonus. A nil source
// disables the bonus.
func WithVariety(src VarietySource) Option {
	return func(r *Ranker) {
		if src == nil {
			src = NoVariety
		}
		r.variety = src
	}
}

// NewRanker creates a Ranker with default weights and the global random
// source.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{weights: DefaultWeights(), variety: globalSource{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the ranker's weights.
func (r *Ranker) Weights() Weights {
	return r.weights
}

// Rank scores every candidate and returns them best first. The output is a
// permutation of the input. The itch inference is accepted for future use
// and does not affect scores today.
func (r *Ranker) Rank(candidates []model.Candidate, reference model.ModalityVector, u model.User, _ model.ItchInference) []Scored {
	anchors := normalizedAnchors(u)

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		b := Breakdown{
			Modality: modality.Similarity(c.Modality, reference) * r.weights.Modality,
			Identity: IdentityScore(c.IdentityTags, anchors) * r.weights.Identity,
			Effort:   EffortScore(c.RequiredEffort) * r.weights.Effort,
			Variety:  r.variety.Float64() * r.weights.Variety,
		}
		scored = append(scored, Scored{Candidate: c, Score: b.Total(), Breakdown: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Candidates strips scores from a ranked list.
func Candidates(scored []Scored) []model.Candidate {
	out := make([]model.Candidate, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Candidate)
	}
	return out
}

// normalizedAnchors lowercases the user's anchor labels.
func normalizedAnchors(u model.User) []string {
	out := make([]string, 0, len(u.IdentityAnchors))
	for _, a := range u.IdentityAnchors {
		out = append(out, strings.ToLower(a.Label))
	}
	return out
}

// IdentityScore returns the fraction of tags matching the (lowercased)
// anchors, normalized by the smaller of the two counts. No anchors gives
// NeutralIdentityScore; anchors but no tags gives 0. Capped at 1.
func IdentityScore(tags []string, anchors []string) float64 {
	if len(anchors) == 0 {
		return NeutralIdentityScore
	}
	if len(tags) == 0 {
		return 0
	}

	matches := 0
	for _, tag := range tags {
		t := strings.ToLower(tag)
		for _, a := range anchors {
			if t == a {
				matches++
				break
			}
		}
	}

	score := float64(matches) / float64(min(len(tags), len(anchors)))
	if score > 1 {
		score = 1
	}
	return score
}

// EffortScore prefers lower tiers linearly: very_low 1.0 down to high 0.0.
// Unknown tiers score as the highest tier.
func EffortScore(level model.EffortLevel) float64 {
	idx := level.Index()
	last := len(model.EffortLevels) - 1
	if idx < 0 {
		idx = last
	}
	return 1 - float64(idx)/float64(last)
}
