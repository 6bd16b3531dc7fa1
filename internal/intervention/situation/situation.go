// Package situation derives time buckets from wall-clock time and produces
// simulated situations for manual testing.
package situation

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// TimeBucketAt maps the local hour of t to a time bucket.
//
//	05-07 early_morning   08-11 morning   12-16 afternoon
//	17-20 evening         21-23 night     00-04 late_night
func TimeBucketAt(t time.Time) model.TimeBucket {
	switch h := t.Hour(); {
	case h >= 5 && h < 8:
		return model.TimeEarlyMorning
	case h >= 8 && h < 12:
		return model.TimeMorning
	case h >= 12 && h < 17:
		return model.TimeAfternoon
	case h >= 17 && h < 21:
		return model.TimeEvening
	case h >= 21:
		return model.TimeNight
	default:
		return model.TimeLateNight
	}
}

// Rand is the randomness Simulate needs. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int    { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

var simulatedTypes = []model.SituationType{
	model.SituationRepeatedAppOpen,
	model.SituationLongSingleAppSession,
	model.SituationWorkBreak,
	model.SituationWaitingContext,
}

var simulatedTimes = []model.TimeBucket{
	model.TimeMorning,
	model.TimeAfternoon,
	model.TimeEvening,
}

// Simulate draws a plausible, eligible situation at home under medium load.
// Confidence is in [0.7, 1.0). A nil rng uses the global generator.
func Simulate(rng Rand, now time.Time) model.Situation {
	if rng == nil {
		rng = globalRand{}
	}

	return model.Situation{
		ID:         uuid.New().String(),
		Type:       simulatedTypes[rng.IntN(len(simulatedTypes))],
		Confidence: 0.7 + rng.Float64()*0.3,
		StartedAt:  now,
		Context: model.SituationContext{
			TimeOfDay:           simulatedTimes[rng.IntN(len(simulatedTimes))],
			LocationCategory:    model.LocationHome,
			RecentCognitiveLoad: model.LoadMedium,
		},
		EligibleForIntervention: true,
	}
}

// Now returns an eligible situation of type t stamped with now, its time
// bucket derived from the clock.
func Now(t model.SituationType, confidence float64, now time.Time) model.Situation {
	return model.Situation{
		ID:         uuid.New().String(),
		Type:       t,
		Confidence: confidence,
		StartedAt:  now,
		Context: model.SituationContext{
			TimeOfDay: TimeBucketAt(now),
		},
		EligibleForIntervention: true,
	}
}
