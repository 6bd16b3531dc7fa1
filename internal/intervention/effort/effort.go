// Package effort estimates how much effort the user can take on right now.
package effort

import "github.com/runger/dopamenu/internal/intervention/model"

// ConfidenceFactor scales situation confidence into budget confidence.
const ConfidenceFactor = 0.8

// DefaultTimeOfDay is assumed when the situation carries no usable bucket.
const DefaultTimeOfDay = model.TimeAfternoon

var timeBase = map[model.TimeBucket]model.EffortLevel{
	model.TimeEarlyMorning: model.EffortLow,
	model.TimeMorning:      model.EffortHigh,
	model.TimeAfternoon:    model.EffortMedium,
	model.TimeEvening:      model.EffortMedium,
	model.TimeNight:        model.EffortLow,
	model.TimeLateNight:    model.EffortVeryLow,
}

// BaseForTime returns the starting tier for a time bucket. Absent or
// unknown buckets fall back to DefaultTimeOfDay.
func BaseForTime(b model.TimeBucket) model.EffortLevel {
	if level, ok := timeBase[b]; ok {
		return level
	}
	return timeBase[DefaultTimeOfDay]
}

// Estimate derives the effort budget from time of day, recent cognitive
// load and the situation type.
func Estimate(s model.Situation) model.EffortBudget {
	level := BaseForTime(s.Context.TimeOfDay)

	switch s.Context.RecentCognitiveLoad {
	case model.LoadHigh:
		level = Downgrade(level)
	case model.LoadLow:
		level = Upgrade(level)
	}

	// Coming out of a meeting leaves less in the tank than the clock suggests.
	if s.Type == model.SituationPostMeetingTransition {
		level = Downgrade(level)
	}

	return model.EffortBudget{
		Level:      level,
		Confidence: s.Confidence * ConfidenceFactor,
	}
}

// Downgrade moves one tier toward very_low, stopping at the bottom.
// Unknown levels map to very_low.
func Downgrade(level model.EffortLevel) model.EffortLevel {
	idx := level.Index()
	if idx < 0 {
		return model.EffortVeryLow
	}
	return model.EffortAt(idx - 1)
}

// Upgrade moves one tier toward high, stopping at the top.
// Unknown levels map to very_low.
func Upgrade(level model.EffortLevel) model.EffortLevel {
	idx := level.Index()
	if idx < 0 {
		return model.EffortVeryLow
	}
	return model.EffortAt(idx + 1)
}
