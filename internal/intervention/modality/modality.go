// Package modality compares the behavioral fingerprints of two activities.
package modality

import (
	"math"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// MaxDistance is the largest Euclidean distance between two vectors whose
// five axes each span [-1, 1]: sqrt(5 * 2^2).
var MaxDistance = math.Sqrt(20)

// Distance returns the Euclidean distance between a and b after clamping
// every axis into [-1, 1].
func Distance(a, b model.ModalityVector) float64 {
	ax, bx := a.Axes(), b.Axes()

	var sumSquared float64
	for i := range ax {
		diff := clampAxis(ax[i]) - clampAxis(bx[i])
		sumSquared += diff * diff
	}
	return math.Sqrt(sumSquared)
}

// Similarity maps distance onto [0, 1], where 1 means identical vectors.
// It is symmetric and Similarity(v, v) == 1.
func Similarity(a, b model.ModalityVector) float64 {
	sim := 1 - Distance(a, b)/MaxDistance
	// Guard float error at the extremes.
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Clamp returns v with every axis forced into [-1, 1]; NaN becomes 0.
func Clamp(v model.ModalityVector) model.ModalityVector {
	return model.ModalityVector{
		PassiveActive:         clampAxis(v.PassiveActive),
		NovelFamiliar:         clampAxis(v.NovelFamiliar),
		SocialSolo:            clampAxis(v.SocialSolo),
		FiniteInfinite:        clampAxis(v.FiniteInfinite),
		ExpressiveConsumptive: clampAxis(v.ExpressiveConsumptive),
	}
}

func clampAxis(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < -1:
		return -1
	case x > 1:
		return 1
	}
	return x
}
