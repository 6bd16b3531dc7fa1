// Package model defines the data types shared by the intervention engine:
// situations, itches, effort tiers, catalog candidates, users and decisions.
package model

import "time"

// SituationType is a classified contextual trigger.
type SituationType string

const (
	SituationRepeatedAppOpen       SituationType = "REPEATED_APP_OPEN"
	SituationLongSingleAppSession  SituationType = "LONG_SINGLE_APP_SESSION"
	SituationPostMeetingTransition SituationType = "POST_MEETING_TRANSITION"
	SituationArrivedHomeAfterWork  SituationType = "ARRIVED_HOME_AFTER_WORK"
	SituationLateNightIdle         SituationType = "LATE_NIGHT_IDLE"
	SituationWaitingContext        SituationType = "WAITING_CONTEXT"
	SituationMorningRoutine        SituationType = "MORNING_ROUTINE"
	SituationWorkBreak             SituationType = "WORK_BREAK"
)

// SituationTypes lists every known situation type.
var SituationTypes = []SituationType{
	SituationRepeatedAppOpen,
	SituationLongSingleAppSession,
	SituationPostMeetingTransition,
	SituationArrivedHomeAfterWork,
	SituationLateNightIdle,
	SituationWaitingContext,
	SituationMorningRoutine,
	SituationWorkBreak,
}

// IsValid returns true if t is a recognized situation type.
func (t SituationType) IsValid() bool {
	for _, known := range SituationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TimeBucket is a coarse time-of-day category.
type TimeBucket string

const (
	TimeEarlyMorning TimeBucket = "early_morning" // 5-8
	TimeMorning      TimeBucket = "morning"       // 8-12
	TimeAfternoon    TimeBucket = "afternoon"     // 12-17
	TimeEvening      TimeBucket = "evening"       // 17-21
	TimeNight        TimeBucket = "night"         // 21-24
	TimeLateNight    TimeBucket = "late_night"    // 0-5
)

// TimeBuckets lists the buckets in chronological order starting at dawn.
var TimeBuckets = []TimeBucket{
	TimeEarlyMorning,
	TimeMorning,
	TimeAfternoon,
	TimeEvening,
	TimeNight,
	TimeLateNight,
}

// IsValid returns true if b is a recognized time bucket.
func (b TimeBucket) IsValid() bool {
	for _, known := range TimeBuckets {
		if b == known {
			return true
		}
	}
	return false
}

// LocationCategory is where the user is, as far as the signal layer knows.
type LocationCategory string

const (
	LocationHome    LocationCategory = "home"
	LocationWork    LocationCategory = "work"
	LocationTransit LocationCategory = "transit"
	LocationPublic  LocationCategory = "public"
	LocationUnknown LocationCategory = "unknown"
)

// IsValid returns true if l is a recognized location category.
func (l LocationCategory) IsValid() bool {
	switch l {
	case LocationHome, LocationWork, LocationTransit, LocationPublic, LocationUnknown:
		return true
	}
	return false
}

// AppCategory is the category of the foreground app at trigger time.
type AppCategory string

const (
	AppSocialMedia   AppCategory = "social_media"
	AppEntertainment AppCategory = "entertainment"
	AppProductivity  AppCategory = "productivity"
	AppCommunication AppCategory = "communication"
	AppNews          AppCategory = "news"
	AppGames         AppCategory = "games"
	AppOther         AppCategory = "other"
)

// IsValid returns true if a is a recognized app category.
func (a AppCategory) IsValid() bool {
	switch a {
	case AppSocialMedia, AppEntertainment, AppProductivity, AppCommunication, AppNews, AppGames, AppOther:
		return true
	}
	return false
}

// CognitiveLoad is the recent cognitive load estimate.
type CognitiveLoad string

const (
	LoadLow    CognitiveLoad = "low"
	LoadMedium CognitiveLoad = "medium"
	LoadHigh   CognitiveLoad = "high"
)

// IsValid returns true if l is a recognized load level.
func (l CognitiveLoad) IsValid() bool {
	return l == LoadLow || l == LoadMedium || l == LoadHigh
}

// SituationContext carries the optional context signals of a situation.
// Empty strings mean the signal is absent.
type SituationContext struct {
	AppCategory         AppCategory      `json:"app_category,omitempty"`
	TimeOfDay           TimeBucket       `json:"time_of_day,omitempty"`
	LocationCategory    LocationCategory `json:"location_category,omitempty"`
	RecentCognitiveLoad CognitiveLoad    `json:"recent_cognitive_load,omitempty"`
}

// Situation is a classified trigger produced by the signal layer.
// It is treated as immutable once produced.
type Situation struct {
	ID                      string           `json:"id"`
	Type                    SituationType    `json:"type"`
	Confidence              float64          `json:"confidence"` // 0-1
	StartedAt               time.Time        `json:"started_at"`
	Context                 SituationContext `json:"context"`
	EligibleForIntervention bool             `json:"eligible_for_intervention"`
}

// ItchType is an inferred psychological driver behind a reach for the phone.
type ItchType string

const (
	ItchBoredom       ItchType = "BOREDOM"
	ItchAvoidance     ItchType = "AVOIDANCE"
	ItchDepletion     ItchType = "DEPLETION"
	ItchLoneliness    ItchType = "LONELINESS"
	ItchRestlessness  ItchType = "RESTLESSNESS"
	ItchAnxiety       ItchType = "ANXIETY"
	ItchCuriosity     ItchType = "CURIOSITY"
	ItchRewardSeeking ItchType = "REWARD_SEEKING"
)

// ItchWeight pairs an itch with its inferred weight.
type ItchWeight struct {
	Itch   ItchType `json:"itch"`
	Weight float64  `json:"weight"`
}

// ItchInference is the ordered itch estimate for one situation.
type ItchInference struct {
	SituationID string       `json:"situation_id"`
	Itches      []ItchWeight `json:"itches"`
	Timestamp   time.Time    `json:"timestamp"`
}
