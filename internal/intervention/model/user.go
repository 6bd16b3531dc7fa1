package model

import "time"

// IdentityAnchor is a label the user identifies with ("Builder", "Mindful").
type IdentityAnchor struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority"`
	Icon        string `json:"icon,omitempty"`
}

// TimeRange is an inclusive wall-clock range in "HH:MM" form.
// Start after End means the range wraps past midnight.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Preferences are the user's intervention settings.
type Preferences struct {
	InterventionFrequency      string      `json:"intervention_frequency"` // low, medium, high
	QuietHours                 []TimeRange `json:"quiet_hours,omitempty"`
	ExcludedApps               []string    `json:"excluded_apps,omitempty"`
	Tone                       string      `json:"tone"` // gentle, direct, minimal
	WeeklyRecalibrationEnabled bool        `json:"weekly_recalibration_enabled"`
	AnalyticsEnabled           bool        `json:"analytics_enabled"`
}

// DefaultPreferences returns the preferences a new user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		InterventionFrequency:      "medium",
		QuietHours:                 []TimeRange{{Start: "22:00", End: "07:00"}},
		Tone:                       "gentle",
		WeeklyRecalibrationEnabled: true,
	}
}

// User is the profile the engine reads. The engine never mutates it.
type User struct {
	ID                  string           `json:"id"`
	Timezone            string           `json:"timezone,omitempty"`
	Chronotype          string           `json:"chronotype,omitempty"` // morning, evening, neutral
	IdentityAnchors     []IdentityAnchor `json:"identity_anchors"`
	Preferences         Preferences      `json:"preferences"`
	CreatedAt           time.Time        `json:"created_at"`
	OnboardingCompleted bool             `json:"onboarding_completed"`
}

// AnchorLabels returns the labels of the user's identity anchors.
func (u User) AnchorLabels() []string {
	labels := make([]string, 0, len(u.IdentityAnchors))
	for _, a := range u.IdentityAnchors {
		labels = append(labels, a.Label)
	}
	return labels
}

// DefaultIdentityAnchors are the anchors offered during onboarding.
var DefaultIdentityAnchors = []IdentityAnchor{
	{Label: "Builder", Description: "Creating and making things", Icon: "hammer"},
	{Label: "Learner", Description: "Growing knowledge and skills", Icon: "book"},
	{Label: "Connected", Description: "Maintaining relationships", Icon: "people"},
	{Label: "Mindful", Description: "Present and intentional", Icon: "leaf"},
	{Label: "Active", Description: "Moving and physical", Icon: "fitness"},
	{Label: "Creative", Description: "Expressing and imagining", Icon: "color-palette"},
	{Label: "Restful", Description: "Recovering and recharging", Icon: "moon"},
}

// AnchorsFromLabels builds prioritized anchors from bare labels, reusing the
// description and icon of a matching default anchor when one exists.
func AnchorsFromLabels(labels ...string) []IdentityAnchor {
	anchors := make([]IdentityAnchor, 0, len(labels))
	for i, label := range labels {
		a := IdentityAnchor{Label: label}
		for _, d := range DefaultIdentityAnchors {
			if d.Label == label {
				a = d
				break
			}
		}
		a.ID = label
		a.Priority = i + 1
		anchors = append(anchors, a)
	}
	return anchors
}
