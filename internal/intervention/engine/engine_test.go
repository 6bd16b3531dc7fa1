package engine

import (
	"bytes"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/catalog"
	"github.com/runger/dopamenu/internal/intervention/explain"
	"github.com/runger/dopamenu/internal/intervention/itch"
	dlog "github.com/runger/dopamenu/internal/intervention/log"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

func deterministic(opts ...Option) *Engine {
	base := []Option{
		WithRanker(rank.NewRanker(rank.WithVariety(rank.NoVariety))),
		WithPicker(firstPicker{}),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "decision-1" }),
	}
	return New(append(base, opts...)...)
}

func mindful() model.User {
	return model.User{ID: "u1", IdentityAnchors: model.AnchorsFromLabels("Mindful")}
}

func TestGenerate_WaitingContextAfternoon(t *testing.T) {
	t.Parallel()

	s := model.Situation{
		ID:         "s1",
		Type:       model.SituationWaitingContext,
		Confidence: 0.9,
		Context: model.SituationContext{
			TimeOfDay:           model.TimeAfternoon,
			RecentCognitiveLoad: model.LoadMedium,
		},
		EligibleForIntervention: true,
	}

	d := deterministic().Generate(s, mindful())

	top, ok := itch.Top(d.Itches)
	require.True(t, ok)
	assert.Equal(t, model.ItchBoredom, top.Itch)
	assert.InDelta(t, 0.72, top.Weight, 1e-9)

	assert.Equal(t, model.EffortMedium, d.Budget.Level)
	assert.InDelta(t, 0.72, d.Budget.Confidence, 1e-9)

	require.NotEmpty(t, d.Primary.ID)
	assert.False(t, d.Primary.RequiredEffort.Exceeds(model.EffortMedium))
	assert.False(t, d.Fallback)
	assert.Len(t, d.Alternatives, DefaultMaxAlternatives)
	for _, alt := range d.Alternatives {
		assert.False(t, alt.RequiredEffort.Exceeds(model.EffortMedium), alt.ID)
		assert.NotEqual(t, d.Primary.ID, alt.ID)
	}

	assert.Equal(t, "decision-1", d.ID)
	assert.Equal(t, "s1", d.SituationID)
	assert.Equal(t, fixedNow, d.Timestamp)
	assert.Equal(t, explain.Messages(model.SituationWaitingContext)[0], d.Explanation)
	assert.NotEmpty(t, d.Reasons)
}

func TestGenerate_PostMeetingMorningHighLoad(t *testing.T) {
	t.Parallel()

	s := model.Situation{
		ID:         "s2",
		Type:       model.SituationPostMeetingTransition,
		Confidence: 1,
		Context: model.SituationContext{
			TimeOfDay:           model.TimeMorning,
			RecentCognitiveLoad: model.LoadHigh,
		},
	}

	d := deterministic().Generate(s, model.User{})

	assert.Equal(t, model.EffortLow, d.Budget.Level)
	assert.False(t, d.Primary.RequiredEffort.Exceeds(model.EffortLow))
	for _, alt := range d.Alternatives {
		assert.False(t, alt.RequiredEffort.Exceeds(model.EffortLow), alt.ID)
	}
}

func TestGenerate_FallbackWhenNothingFits(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(
		model.Candidate{ID: "run", Label: "Run", RequiredEffort: model.EffortMedium, Surface: model.SurfaceOffPhone},
		model.Candidate{ID: "swim", Label: "Swim", RequiredEffort: model.EffortHigh, Surface: model.SurfaceOffPhone},
	)
	require.NoError(t, err)

	// late_night base very_low, high load keeps it at very_low.
	s := model.Situation{
		ID:         "s3",
		Type:       model.SituationLateNightIdle,
		Confidence: 0.6,
		Context: model.SituationContext{
			TimeOfDay:           model.TimeLateNight,
			RecentCognitiveLoad: model.LoadHigh,
		},
	}

	d := deterministic(WithCatalog(cat)).Generate(s, mindful())

	assert.Equal(t, model.EffortVeryLow, d.Budget.Level)
	assert.True(t, d.Fallback)
	assert.Equal(t, "run", d.Primary.ID)
	assert.NotNil(t, d.Alternatives)
	assert.Empty(t, d.Alternatives)
	assert.Empty(t, d.Reasons)
}

func TestGenerate_LocationConstraintRespected(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(
		model.Candidate{
			ID: "home_only", Label: "Home only", RequiredEffort: model.EffortVeryLow, Surface: model.SurfaceOffPhone,
			ContextConstraints: []model.ContextConstraint{{Type: model.ConstraintLocation, Operator: model.OpEquals, Value: "home"}},
		},
		model.Candidate{ID: "anywhere", Label: "Anywhere", RequiredEffort: model.EffortLow, Surface: model.SurfaceOffPhone},
	)
	require.NoError(t, err)

	s := model.Situation{
		Type:       model.SituationWorkBreak,
		Confidence: 0.8,
		Context:    model.SituationContext{TimeOfDay: model.TimeAfternoon, LocationCategory: model.LocationWork},
	}

	d := deterministic().GenerateFrom(s, model.User{}, cat)

	assert.Equal(t, "anywhere", d.Primary.ID)
	assert.Empty(t, d.Alternatives)
	assert.False(t, d.Fallback)
}

func TestGenerate_UnknownTypeDegrades(t *testing.T) {
	t.Parallel()

	s := model.Situation{Type: "DOOMSCROLL", Confidence: 0.5}
	d := deterministic().Generate(s, model.User{})

	assert.Empty(t, d.Itches.Itches)
	assert.NotNil(t, d.Itches.Itches)
	assert.Equal(t, explain.DefaultMessage, d.Explanation)
	assert.Equal(t, model.EffortMedium, d.Budget.Level)
	assert.NotEmpty(t, d.Primary.ID)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	s := model.Situation{
		Type:       model.SituationRepeatedAppOpen,
		Confidence: 0.75,
		Context:    model.SituationContext{TimeOfDay: model.TimeEvening, LocationCategory: model.LocationHome},
	}
	u := model.User{IdentityAnchors: model.AnchorsFromLabels("Creative", "Connected")}

	a := deterministic().Generate(s, u)
	b := deterministic().Generate(s, u)

	if diff := cmp.Diff(a.Candidates(), b.Candidates()); diff != "" {
		t.Errorf("candidate order differs between runs (-first +second):\n%s", diff)
	}
}

func TestGenerate_MaxAlternatives(t *testing.T) {
	t.Parallel()

	s := model.Situation{Type: model.SituationWorkBreak, Confidence: 0.9, Context: model.SituationContext{TimeOfDay: model.TimeMorning}}

	assert.Empty(t, deterministic(WithMaxAlternatives(0)).Generate(s, model.User{}).Alternatives)
	assert.Len(t, deterministic(WithMaxAlternatives(1)).Generate(s, model.User{}).Alternatives, 1)
	assert.Empty(t, deterministic(WithMaxAlternatives(-4)).Generate(s, model.User{}).Alternatives)
	assert.Len(t, deterministic(WithMaxAlternatives(7)).Generate(s, model.User{}).Alternatives, model.MaxAlternatives)
}

func TestGenerate_ReferenceModality(t *testing.T) {
	t.Parallel()

	target, ok := catalog.Default().Get("stretch")
	require.True(t, ok)

	s := model.Situation{Type: model.SituationWorkBreak, Confidence: 0.9, Context: model.SituationContext{TimeOfDay: model.TimeMorning}}
	// Perfect similarity, a full identity match and the lowest tier is the
	// maximum score without variety.
	d := deterministic(WithReferenceModality(target.Modality)).Generate(s, model.User{IdentityAnchors: model.AnchorsFromLabels("Active")})

	assert.Equal(t, "stretch", d.Primary.ID)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	e := New()
	assert.Same(t, catalog.Default(), e.Catalog())

	d := e.Generate(model.Situation{Type: model.SituationMorningRoutine, Confidence: 0.7}, model.User{})
	_, err := uuid.Parse(d.ID)
	require.NoError(t, err)
	assert.False(t, d.Timestamp.IsZero())
	assert.Contains(t, explain.Messages(model.SituationMorningRoutine), d.Explanation)
}

func TestNew_NilOptionsIgnored(t *testing.T) {
	t.Parallel()

	e := New(WithCatalog(nil), WithRanker(nil), WithPicker(nil), WithClock(nil), WithIDGenerator(nil), WithLogger(nil))
	d := e.GenerateFrom(model.Situation{Type: model.SituationWorkBreak}, model.User{}, nil)
	assert.NotEmpty(t, d.Primary.ID)
}

func TestGenerate_LogsAtDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := dlog.New(&dlog.Config{Output: &buf, Debug: true})

	deterministic(WithLogger(logger)).Generate(model.Situation{ID: "s9", Type: model.SituationWorkBreak}, model.User{})

	out := buf.String()
	assert.Contains(t, out, `"msg":"candidates filtered"`)
	assert.Contains(t, out, `"msg":"decision generated"`)
	assert.Contains(t, out, `"situation_id":"s9"`)
}

func TestGenerate_ConcurrentUse(t *testing.T) {
	t.Parallel()

	e := New(WithLogger(dlog.New(&dlog.Config{Output: io.Discard})))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(i), 7))
			typ := model.SituationTypes[r.IntN(len(model.SituationTypes))]
			d := e.Generate(model.Situation{Type: typ, Confidence: r.Float64()}, model.User{})
			assert.NotEmpty(t, d.Primary.ID)
		}(i)
	}
	wg.Wait()
}
