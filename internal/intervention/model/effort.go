package model

// EffortLevel is an ordered effort tier: very_low < low < medium < high.
type EffortLevel string

const (
	EffortVeryLow EffortLevel = "very_low"
	EffortLow     EffortLevel = "low"
	EffortMedium  EffortLevel = "medium"
	EffortHigh    EffortLevel = "high"
)

// EffortLevels lists the tiers from lowest to highest.
var EffortLevels = []EffortLevel{EffortVeryLow, EffortLow, EffortMedium, EffortHigh}

// Index returns the position of e in EffortLevels, or -1 if e is unknown.
func (e EffortLevel) Index() int {
	for i, l := range EffortLevels {
		if l == e {
			return i
		}
	}
	return -1
}

// IsValid returns true if e is a recognized tier.
func (e EffortLevel) IsValid() bool {
	return e.Index() >= 0
}

// Exceeds reports whether e is strictly above other in the tier order.
func (e EffortLevel) Exceeds(other EffortLevel) bool {
	return e.Index() > other.Index()
}

// EffortAt returns the tier at index i, clamped to the valid range.
func EffortAt(i int) EffortLevel {
	if i < 0 {
		i = 0
	}
	if i >= len(EffortLevels) {
		i = len(EffortLevels) - 1
	}
	return EffortLevels[i]
}

// EffortBudget is the highest tier the user is believed to accept right now.
type EffortBudget struct {
	Level      EffortLevel `json:"level"`
	Confidence float64     `json:"confidence"`
}
