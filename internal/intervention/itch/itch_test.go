package itch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/model"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func TestInfer_SortedAndBoundedByConfidence(t *testing.T) {
	t.Parallel()

	for _, st := range model.SituationTypes {
		for _, conf := range []float64{0, 0.35, 0.9, 1} {
			inf := Infer(model.Situation{ID: "s", Type: st, Confidence: conf}, testNow)

			require.NotEmpty(t, inf.Itches, "type %s should have itches", st)
			for i, w := range inf.Itches {
				assert.LessOrEqual(t, w.Weight, conf+1e-12, "%s[%d]", st, i)
				if i > 0 {
					assert.GreaterOrEqual(t, inf.Itches[i-1].Weight, w.Weight,
						"%s: weights not non-increasing at %d", st, i)
				}
			}
		}
	}
}

func TestInfer_WaitingContext(t *testing.T) {
	t.Parallel()

	inf := Infer(model.Situation{ID: "w1", Type: model.SituationWaitingContext, Confidence: 0.9}, testNow)

	require.Len(t, inf.Itches, 2)
	assert.Equal(t, model.ItchBoredom, inf.Itches[0].Itch)
	assert.InDelta(t, 0.72, inf.Itches[0].Weight, 1e-9)
	assert.Equal(t, model.ItchRestlessness, inf.Itches[1].Itch)
	assert.InDelta(t, 0.45, inf.Itches[1].Weight, 1e-9)
	assert.Equal(t, "w1", inf.SituationID)
	assert.Equal(t, testNow, inf.Timestamp)
}

func TestInfer_ReordersByWeight(t *testing.T) {
	t.Parallel()

	// REPEATED_APP_OPEN declares RESTLESSNESS before REWARD_SEEKING but the
	// latter weighs more.
	inf := Infer(model.Situation{Type: model.SituationRepeatedAppOpen, Confidence: 1}, testNow)

	got := make([]model.ItchType, 0, len(inf.Itches))
	for _, w := range inf.Itches {
		got = append(got, w.Itch)
	}
	assert.Equal(t, []model.ItchType{model.ItchBoredom, model.ItchRewardSeeking, model.ItchRestlessness}, got)
}

func TestInfer_ZeroConfidenceKeepsDeclaredOrder(t *testing.T) {
	t.Parallel()

	inf := Infer(model.Situation{Type: model.SituationLateNightIdle, Confidence: 0}, testNow)

	require.Len(t, inf.Itches, 3)
	assert.Equal(t, model.ItchAnxiety, inf.Itches[0].Itch)
	assert.Equal(t, model.ItchLoneliness, inf.Itches[1].Itch)
}

func TestInfer_UnknownType(t *testing.T) {
	t.Parallel()

	inf := Infer(model.Situation{Type: "DOOMSCROLL", Confidence: 1}, testNow)

	assert.NotNil(t, inf.Itches)
	assert.Empty(t, inf.Itches)

	_, ok := Top(inf)
	assert.False(t, ok)
}

func TestInfer_DoesNotMutateTable(t *testing.T) {
	t.Parallel()

	_ = Infer(model.Situation{Type: model.SituationWorkBreak, Confidence: 0.1}, testNow)

	base := BaseProbabilities(model.SituationWorkBreak)
	require.Len(t, base, 2)
	assert.InDelta(t, 0.5, base[0].Weight, 1e-12)
}

func TestTop(t *testing.T) {
	t.Parallel()

	inf := Infer(model.Situation{Type: model.SituationArrivedHomeAfterWork, Confidence: 0.5}, testNow)
	top, ok := Top(inf)
	require.True(t, ok)
	assert.Equal(t, model.ItchDepletion, top.Itch)
	assert.InDelta(t, 0.35, top.Weight, 1e-9)
}
