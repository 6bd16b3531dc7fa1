package scenario

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/engine"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

var fixedNow = time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)

const script = `
# commute
type=WAITING_CONTEXT confidence=0.9 time=afternoon location=transit load=medium id=s1

type=late_night_idle time=now anchors="Mindful, Calm" # trailing comment
type=WORK_BREAK app=social_media eligible=false
`

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse(strings.NewReader(script), fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, 3, first.Line)
	assert.Equal(t, "s1", first.Situation.ID)
	assert.Equal(t, model.SituationWaitingContext, first.Situation.Type)
	assert.InDelta(t, 0.9, first.Situation.Confidence, 1e-9)
	assert.Equal(t, model.TimeAfternoon, first.Situation.Context.TimeOfDay)
	assert.Equal(t, model.LocationTransit, first.Situation.Context.LocationCategory)
	assert.Equal(t, model.LoadMedium, first.Situation.Context.RecentCognitiveLoad)
	assert.True(t, first.Situation.EligibleForIntervention)
	assert.Equal(t, fixedNow, first.Situation.StartedAt)
	assert.False(t, first.User.OnboardingCompleted)

	second := got[1]
	assert.Equal(t, 5, second.Line)
	assert.Equal(t, model.SituationLateNightIdle, second.Situation.Type)
	assert.Equal(t, model.TimeNight, second.Situation.Context.TimeOfDay)
	assert.InDelta(t, DefaultConfidence, second.Situation.Confidence, 1e-9)
	assert.NotEmpty(t, second.Situation.ID)
	require.Len(t, second.User.IdentityAnchors, 2)
	assert.Equal(t, "Mindful", second.User.IdentityAnchors[0].Label)
	assert.Equal(t, "Calm", second.User.IdentityAnchors[1].Label)
	assert.True(t, second.User.OnboardingCompleted)

	third := got[2]
	assert.Equal(t, model.AppSocialMedia, third.Situation.Context.AppCategory)
	assert.False(t, third.Situation.EligibleForIntervention)
	assert.Equal(t, model.TimeNight, third.Situation.Context.TimeOfDay)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	got, err := Parse(strings.NewReader("\n# nothing here\n   \n"), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_HashInsideValues(t *testing.T) {
	t.Parallel()

	script := `type=WORK_BREAK id="w#1" # note
type=WORK_BREAK id=w#2 location=home
#type=WORK_BREAK
`
	got, err := Parse(strings.NewReader(script), fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "w#1", got[0].Situation.ID)
	assert.Equal(t, "w#2", got[1].Situation.ID)
	assert.Equal(t, model.LocationHome, got[1].Situation.Context.LocationCategory)
	assert.Equal(t, 2, got[1].Line)
}

func TestParse_ErrorsNameTheLine(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("type=WORK_BREAK\n\ntype=WORK_BREAK confidence=3\n"), fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseLine_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{"missing type", "confidence=0.5", "missing type"},
		{"bare word", "type=WORK_BREAK oops", "expected key=value"},
		{"empty key", "=x type=WORK_BREAK", "expected key=value"},
		{"duplicate", "type=WORK_BREAK type=WAITING_CONTEXT", "duplicate key"},
		{"unknown key", "type=WORK_BREAK mood=sad", "unknown key"},
		{"unknown type", "type=DOOMSCROLL", "unknown situation type"},
		{"bad confidence", "type=WORK_BREAK confidence=high", "confidence"},
		{"negative confidence", "type=WORK_BREAK confidence=-0.1", "confidence"},
		{"bad time", "type=WORK_BREAK time=noon", "time bucket"},
		{"bad load", "type=WORK_BREAK load=extreme", "load"},
		{"bad location", "type=WORK_BREAK location=moon", "location"},
		{"bad app", "type=WORK_BREAK app=tiktok", "app category"},
		{"bad eligible", "type=WORK_BREAK eligible=maybe", "eligible"},
		{"unterminated quote", `type=WORK_BREAK anchors="Mindful`, "syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLine(tt.line, fixedNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type countingGenerator struct {
	calls atomic.Int64
}

func (g *countingGenerator) Generate(s model.Situation, _ model.User) model.Decision {
	g.calls.Add(1)
	return model.Decision{ID: "d-" + s.ID, SituationID: s.ID}
}

func scenarios(ids ...string) []Scenario {
	out := make([]Scenario, len(ids))
	for i, id := range ids {
		out[i] = Scenario{Line: i + 1, Situation: model.Situation{ID: id, Type: model.SituationWorkBreak}}
	}
	return out
}

func TestReplay_PreservesOrder(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	gen := &countingGenerator{}

	results, err := Replay(context.Background(), gen, scenarios(ids...), 3)
	require.NoError(t, err)
	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, ids[i], r.Scenario.Situation.ID)
		assert.Equal(t, "d-"+ids[i], r.Decision.ID)
	}
	assert.Equal(t, int64(len(ids)), gen.calls.Load())
}

func TestReplay_DefaultWorkers(t *testing.T) {
	t.Parallel()

	results, err := Replay(context.Background(), &countingGenerator{}, scenarios("a", "b"), 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestReplay_Empty(t *testing.T) {
	t.Parallel()

	results, err := Replay(context.Background(), &countingGenerator{}, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReplay_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &countingGenerator{}
	_, err := Replay(ctx, gen, scenarios("a", "b", "c"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, gen.calls.Load())
}

func TestReplay_WithEngine(t *testing.T) {
	t.Parallel()

	parsed, err := Parse(strings.NewReader(script), fixedNow)
	require.NoError(t, err)

	eng := engine.New(engine.WithRanker(rank.NewRanker(rank.WithVariety(rank.NoVariety))))
	results, err := Replay(context.Background(), eng, parsed, 2)
	require.NoError(t, err)
	require.Len(t, results, len(parsed))

	for _, r := range results {
		assert.Equal(t, r.Scenario.Situation.ID, r.Decision.SituationID)
		assert.NotEmpty(t, r.Decision.Primary.ID)
		assert.NotEmpty(t, r.Decision.Explanation)
	}
	// Transit rules out the walk for the commuter.
	for _, c := range results[0].Decision.Candidates() {
		assert.NotEqual(t, "short_walk", c.ID)
	}
}
