package effort

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runger/dopamenu/internal/intervention/model"
)

func TestDowngradeUpgrade_Clamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        model.EffortLevel
		downgrade model.EffortLevel
		upgrade   model.EffortLevel
	}{
		{model.EffortVeryLow, model.EffortVeryLow, model.EffortLow},
		{model.EffortLow, model.EffortVeryLow, model.EffortMedium},
		{model.EffortMedium, model.EffortLow, model.EffortHigh},
		{model.EffortHigh, model.EffortMedium, model.EffortHigh},
		{"bogus", model.EffortVeryLow, model.EffortVeryLow},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.downgrade, Downgrade(tt.in))
			assert.Equal(t, tt.upgrade, Upgrade(tt.in))
		})
	}
}

func TestEstimate_AlwaysValidTier(t *testing.T) {
	t.Parallel()

	buckets := append([]model.TimeBucket{"", "teatime"}, model.TimeBuckets...)
	loads := []model.CognitiveLoad{"", model.LoadLow, model.LoadMedium, model.LoadHigh}

	for _, st := range append([]model.SituationType{"UNKNOWN"}, model.SituationTypes...) {
		for _, b := range buckets {
			for _, l := range loads {
				budget := Estimate(model.Situation{
					Type:       st,
					Confidence: 1,
					Context:    model.SituationContext{TimeOfDay: b, RecentCognitiveLoad: l},
				})
				assert.True(t, budget.Level.IsValid(), "%s/%s/%s -> %q", st, b, l, budget.Level)
			}
		}
	}
}

func TestEstimate_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  model.SituationType
		time model.TimeBucket
		load model.CognitiveLoad
		want model.EffortLevel
	}{
		{"afternoon medium", model.SituationWaitingContext, model.TimeAfternoon, model.LoadMedium, model.EffortMedium},
		{"absent time defaults to afternoon", model.SituationWorkBreak, "", "", model.EffortMedium},
		{"unknown time defaults to afternoon", model.SituationWorkBreak, "brunch", "", model.EffortMedium},
		{"morning low load clamps at high", model.SituationMorningRoutine, model.TimeMorning, model.LoadLow, model.EffortHigh},
		{"late night high load clamps at very_low", model.SituationLateNightIdle, model.TimeLateNight, model.LoadHigh, model.EffortVeryLow},
		{"evening low load", model.SituationArrivedHomeAfterWork, model.TimeEvening, model.LoadLow, model.EffortHigh},
		{"early morning", model.SituationMorningRoutine, model.TimeEarlyMorning, model.LoadMedium, model.EffortLow},
		{"night high load", model.SituationLateNightIdle, model.TimeNight, model.LoadHigh, model.EffortVeryLow},
		{"post meeting morning high load", model.SituationPostMeetingTransition, model.TimeMorning, model.LoadHigh, model.EffortLow},
		{"post meeting late night", model.SituationPostMeetingTransition, model.TimeLateNight, model.LoadLow, model.EffortVeryLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := Estimate(model.Situation{
				Type:       tt.typ,
				Confidence: 0.5,
				Context:    model.SituationContext{TimeOfDay: tt.time, RecentCognitiveLoad: tt.load},
			})
			assert.Equal(t, tt.want, budget.Level)
		})
	}
}

func TestEstimate_Confidence(t *testing.T) {
	t.Parallel()

	budget := Estimate(model.Situation{Type: model.SituationWorkBreak, Confidence: 0.75})
	assert.InDelta(t, 0.6, budget.Confidence, 1e-9)
}

func TestBaseForTime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.EffortHigh, BaseForTime(model.TimeMorning))
	assert.Equal(t, model.EffortVeryLow, BaseForTime(model.TimeLateNight))
	assert.Equal(t, model.EffortMedium, BaseForTime(""))
}
