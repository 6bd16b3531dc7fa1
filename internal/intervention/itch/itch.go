// Package itch maps a situation to its likely psychological drivers.
package itch

import (
	"sort"
	"time"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// baseProbabilities holds, per situation type, the prior probability of
// each itch. Slices keep the declared order so ties sort deterministically.
var baseProbabilities = map[model.SituationType][]model.ItchWeight{
	model.SituationRepeatedAppOpen: {
		{Itch: model.ItchBoredom, Weight: 0.6},
		{Itch: model.ItchRestlessness, Weight: 0.4},
		{Itch: model.ItchRewardSeeking, Weight: 0.5},
	},
	model.SituationLongSingleAppSession: {
		{Itch: model.ItchAvoidance, Weight: 0.5},
		{Itch: model.ItchBoredom, Weight: 0.3},
		{Itch: model.ItchDepletion, Weight: 0.4},
	},
	model.SituationPostMeetingTransition: {
		{Itch: model.ItchDepletion, Weight: 0.6},
		{Itch: model.ItchAvoidance, Weight: 0.3},
		{Itch: model.ItchRestlessness, Weight: 0.4},
	},
	model.SituationArrivedHomeAfterWork: {
		{Itch: model.ItchDepletion, Weight: 0.7},
		{Itch: model.ItchRestlessness, Weight: 0.3},
	},
	model.SituationLateNightIdle: {
		{Itch: model.ItchAnxiety, Weight: 0.4},
		{Itch: model.ItchLoneliness, Weight: 0.5},
		{Itch: model.ItchRestlessness, Weight: 0.3},
	},
	model.SituationWaitingContext: {
		{Itch: model.ItchBoredom, Weight: 0.8},
		{Itch: model.ItchRestlessness, Weight: 0.5},
	},
	model.SituationMorningRoutine: {
		{Itch: model.ItchAvoidance, Weight: 0.4},
		{Itch: model.ItchAnxiety, Weight: 0.3},
	},
	model.SituationWorkBreak: {
		{Itch: model.ItchDepletion, Weight: 0.5},
		{Itch: model.ItchBoredom, Weight: 0.4},
	},
}

// BaseProbabilities returns a copy of the prior table row for t.
// Unknown types return an empty slice.
func BaseProbabilities(t model.SituationType) []model.ItchWeight {
	row := baseProbabilities[t]
	out := make([]model.ItchWeight, len(row))
	copy(out, row)
	return out
}

// Infer scales the prior itch probabilities of the situation's type by its
// confidence and returns them heaviest first. An unrecognized type yields an
// empty list.
func Infer(s model.Situation, now time.Time) model.ItchInference {
	itches := BaseProbabilities(s.Type)
	for i := range itches {
		itches[i].Weight *= s.Confidence
	}

	sort.SliceStable(itches, func(i, j int) bool {
		return itches[i].Weight > itches[j].Weight
	})

	return model.ItchInference{
		SituationID: s.ID,
		Itches:      itches,
		Timestamp:   now,
	}
}

// Top returns the heaviest itch, if any.
func Top(inf model.ItchInference) (model.ItchWeight, bool) {
	if len(inf.Itches) == 0 {
		return model.ItchWeight{}, false
	}
	return inf.Itches[0], true
}
