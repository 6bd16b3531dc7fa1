package model

import (
	"fmt"
	"math"
)

// ModalityVector is a five-axis behavioral fingerprint. Each axis is in [-1, 1].
type ModalityVector struct {
	PassiveActive         float64 `yaml:"passive_active" json:"passive_active"`                 // -1 passive, +1 active
	NovelFamiliar         float64 `yaml:"novel_familiar" json:"novel_familiar"`                 // -1 familiar, +1 novel
	SocialSolo            float64 `yaml:"social_solo" json:"social_solo"`                       // -1 solo, +1 social
	FiniteInfinite        float64 `yaml:"finite_infinite" json:"finite_infinite"`               // -1 finite, +1 infinite
	ExpressiveConsumptive float64 `yaml:"expressive_consumptive" json:"expressive_consumptive"` // -1 consumptive, +1 expressive
}

// ModalityAxes names the axes in the order returned by Axes.
var ModalityAxes = [5]string{
	"passive_active",
	"novel_familiar",
	"social_solo",
	"finite_infinite",
	"expressive_consumptive",
}

// Axes returns the vector components in ModalityAxes order.
func (v ModalityVector) Axes() [5]float64 {
	return [5]float64{
		v.PassiveActive,
		v.NovelFamiliar,
		v.SocialSolo,
		v.FiniteInfinite,
		v.ExpressiveConsumptive,
	}
}

// Validate returns an error naming the first axis outside [-1, 1].
func (v ModalityVector) Validate() error {
	for i, x := range v.Axes() {
		if math.IsNaN(x) || x < -1 || x > 1 {
			return fmt.Errorf("modality axis %s out of range: %v", ModalityAxes[i], x)
		}
	}
	return nil
}

// ConstraintType is the kind of context a constraint inspects.
type ConstraintType string

const (
	ConstraintLocation ConstraintType = "location"
	ConstraintTime     ConstraintType = "time"
	ConstraintApp      ConstraintType = "app"
	ConstraintCustom   ConstraintType = "custom"
)

// ConstraintOperator compares a context value with the constraint value.
type ConstraintOperator string

const (
	OpEquals    ConstraintOperator = "equals"
	OpNotEquals ConstraintOperator = "not_equals"
	OpContains  ConstraintOperator = "contains"
)

// ContextConstraint restricts where a candidate may be suggested.
type ContextConstraint struct {
	Type     ConstraintType     `yaml:"type" json:"type"`
	Operator ConstraintOperator `yaml:"operator" json:"operator"`
	Value    string             `yaml:"value" json:"value"`
}

// Surface says whether the activity happens on or away from the phone.
type Surface string

const (
	SurfaceOnPhone  Surface = "on_phone"
	SurfaceOffPhone Surface = "off_phone"
)

// IsValid returns true if s is a recognized surface.
func (s Surface) IsValid() bool {
	return s == SurfaceOnPhone || s == SurfaceOffPhone
}

// Candidate is one alternative activity from the catalog.
type Candidate struct {
	ID                 string              `yaml:"id" json:"id"`
	Label              string              `yaml:"label" json:"label"`
	Description        string              `yaml:"description,omitempty" json:"description,omitempty"`
	Modality           ModalityVector      `yaml:"modality" json:"modality"`
	RequiredEffort     EffortLevel         `yaml:"required_effort" json:"required_effort"`
	ContextConstraints []ContextConstraint `yaml:"context_constraints,omitempty" json:"context_constraints,omitempty"`
	Surface            Surface             `yaml:"surface" json:"surface"`
	LaunchTarget       string              `yaml:"launch_target,omitempty" json:"launch_target,omitempty"` // deep link
	IdentityTags       []string            `yaml:"identity_tags,omitempty" json:"identity_tags,omitempty"`
	Icon               string              `yaml:"icon,omitempty" json:"icon,omitempty"`
}
