// Package engine assembles intervention decisions.
//
// The pipeline is fixed:
//
//	situation -> itches -> effort budget -> filter -> rank -> decision
//
// Generation never fails. When nothing survives filtering, the first
// activity of the catalog becomes the primary and the decision is marked
// as a fallback.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/runger/dopamenu/internal/intervention/catalog"
	"github.com/runger/dopamenu/internal/intervention/effort"
	"github.com/runger/dopamenu/internal/intervention/explain"
	"github.com/runger/dopamenu/internal/intervention/filter"
	"github.com/runger/dopamenu/internal/intervention/itch"
	dlog "github.com/runger/dopamenu/internal/intervention/log"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

// DefaultMaxAlternatives is the number of runner-up suggestions.
const DefaultMaxAlternatives = model.MaxAlternatives

// Engine turns situations into decisions. It holds no mutable state and is
// safe for concurrent use when its random sources are.
type Engine struct {
	catalog         *catalog.Catalog
	ranker          *rank.Ranker
	picker          explain.Picker
	now             func() time.Time
	newID           func() string
	logger          *slog.Logger
	reference       model.ModalityVector
	maxAlternatives int
	explainCfg      explain.Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the default catalog. Nil is ignored.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithRanker sets the ranker. Nil is ignored.
func WithRanker(r *rank.Ranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

// WithPicker sets the source used to choose the explanation message.
func WithPicker(p explain.Picker) Option {
	return func(e *Engine) {
		if p != nil {
			e.picker = p
		}
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the decision ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithReferenceModality sets the vector candidates are compared against.
func WithReferenceModality(v model.ModalityVector) Option {
	return func(e *Engine) { e.reference = v }
}

// WithMaxAlternatives sets how many runners-up a decision carries.
// n is clamped to [0, model.MaxAlternatives].
func WithMaxAlternatives(n int) Option {
	return func(e *Engine) {
		n = max(0, min(n, model.MaxAlternatives))
		e.maxAlternatives = n
	}
}

// WithExplainConfig sets how score reasons are derived.
func WithExplainConfig(cfg explain.Config) Option {
	return func(e *Engine) { e.explainCfg = cfg }
}

// New creates an engine over the default catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog:         catalog.Default(),
		ranker:          rank.NewRanker(),
		picker:          explain.DefaultPicker,
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
		reference:       catalog.SocialMediaModality,
		maxAlternatives: DefaultMaxAlternatives,
		explainCfg:      explain.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = dlog.Or(e.logger)
	return e
}

// Catalog returns the engine's default catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Generate produces a decision for the situation using the engine catalog.
func (e *Engine) Generate(s model.Situation, u model.User) model.Decision {
	return e.GenerateFrom(s, u, e.catalog)
}

// GenerateFrom produces a decision using cat instead of the engine catalog.
// A nil cat falls back to the engine catalog.
func (e *Engine) GenerateFrom(s model.Situation, u model.User, cat *catalog.Catalog) model.Decision {
	if cat == nil {
		cat = e.catalog
	}
	now := e.now()

	itches := itch.Infer(s, now)
	budget := effort.Estimate(s)

	res := filter.Evaluate(cat.All(), budget, s, u)
	dlog.LogFilter(e.logger, s.ID, len(res.Kept), len(res.Rejected), len(res.Skipped))

	ranked := e.ranker.Rank(res.Kept, e.reference, u, itches)

	d := model.Decision{
		ID:           e.newID(),
		SituationID:  s.ID,
		Alternatives: []model.Candidate{},
		Explanation:  explain.Message(s.Type, e.picker),
		Timestamp:    now,
		Itches:       itches,
		Budget:       budget,
	}

	if len(ranked) == 0 {
		d.Primary = cat.First()
		d.Fallback = true
	} else {
		d.Primary = ranked[0].Candidate
		d.Reasons = explain.Reasons(ranked[0], u, e.explainCfg)
		end := min(len(ranked), 1+e.maxAlternatives)
		d.Alternatives = rank.Candidates(ranked[1:end])
	}

	dlog.LogDecision(e.logger, d, s)
	return d
}
