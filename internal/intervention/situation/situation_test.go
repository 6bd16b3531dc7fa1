package situation

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestTimeBucketAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour, minute int
		want         model.TimeBucket
	}{
		{0, 0, model.TimeLateNight},
		{4, 59, model.TimeLateNight},
		{5, 0, model.TimeEarlyMorning},
		{7, 59, model.TimeEarlyMorning},
		{8, 0, model.TimeMorning},
		{11, 59, model.TimeMorning},
		{12, 0, model.TimeAfternoon},
		{16, 59, model.TimeAfternoon},
		{17, 0, model.TimeEvening},
		{20, 59, model.TimeEvening},
		{21, 0, model.TimeNight},
		{23, 59, model.TimeNight},
	}

	for _, tt := range tests {
		got := TimeBucketAt(at(tt.hour, tt.minute))
		assert.Equal(t, tt.want, got, "%02d:%02d", tt.hour, tt.minute)
	}
}

func TestTimeBucketAt_CoversEveryHour(t *testing.T) {
	t.Parallel()

	seen := map[model.TimeBucket]bool{}
	for h := 0; h < 24; h++ {
		b := TimeBucketAt(at(h, 30))
		require.True(t, b.IsValid(), "hour %d", h)
		seen[b] = true
	}
	assert.Len(t, seen, len(model.TimeBuckets))
}

func TestSimulate(t *testing.T) {
	t.Parallel()

	now := at(10, 0)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 100; i++ {
		s := Simulate(rng, now)

		assert.Contains(t, simulatedTypes, s.Type)
		assert.Contains(t, simulatedTimes, s.Context.TimeOfDay)
		assert.GreaterOrEqual(t, s.Confidence, 0.7)
		assert.Less(t, s.Confidence, 1.0)
		assert.Equal(t, model.LocationHome, s.Context.LocationCategory)
		assert.Equal(t, model.LoadMedium, s.Context.RecentCognitiveLoad)
		assert.True(t, s.EligibleForIntervention)
		assert.Equal(t, now, s.StartedAt)

		_, err := uuid.Parse(s.ID)
		require.NoError(t, err)
	}
}

func TestSimulate_NilRand(t *testing.T) {
	t.Parallel()

	s := Simulate(nil, at(15, 0))
	assert.True(t, s.Type.IsValid())
}

func TestNow(t *testing.T) {
	t.Parallel()

	s := Now(model.SituationLateNightIdle, 0.8, at(1, 15))
	assert.Equal(t, model.TimeLateNight, s.Context.TimeOfDay)
	assert.Equal(t, model.SituationLateNightIdle, s.Type)
	assert.InDelta(t, 0.8, s.Confidence, 1e-12)
	assert.NotEmpty(t, s.ID)
}
