package catalog

import "github.com/runger/dopamenu/internal/intervention/model"

// SocialMediaModality is the fingerprint of the compulsive default the
// engine is interrupting: passive, novel, loosely social, endless and
// consumptive.
var SocialMediaModality = model.ModalityVector{
	PassiveActive:         -0.8,
	NovelFamiliar:         0.6,
	SocialSolo:            0.3,
	FiniteInfinite:        1.0,
	ExpressiveConsumptive: -0.8,
}

var defaultActivities = []model.Candidate{
	{
		ID:             "breathe",
		Label:          "Three slow breaths",
		Description:    "In through the nose, out through the mouth. Just three.",
		Modality:       model.ModalityVector{PassiveActive: -0.6, NovelFamiliar: -0.6, SocialSolo: -1, FiniteInfinite: -1, ExpressiveConsumptive: -0.2},
		RequiredEffort: model.EffortVeryLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Mindful", "Restful"},
		Icon:           "leaf",
	},
	{
		ID:             "look_outside",
		Label:          "Look out a window",
		Description:    "One minute of watching whatever is out there.",
		Modality:       model.ModalityVector{PassiveActive: -0.8, NovelFamiliar: 0.4, SocialSolo: -1, FiniteInfinite: -1, ExpressiveConsumptive: -0.6},
		RequiredEffort: model.EffortVeryLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Mindful"},
		Icon:           "eye",
	},
	{
		ID:             "stretch",
		Label:          "Stand up and stretch",
		Description:    "Reach up, roll the shoulders, sit back down.",
		Modality:       model.ModalityVector{PassiveActive: 0.6, NovelFamiliar: -0.4, SocialSolo: -1, FiniteInfinite: -1, ExpressiveConsumptive: 0},
		RequiredEffort: model.EffortVeryLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Active", "Restful"},
		Icon:           "body",
	},
	{
		ID:             "water",
		Label:          "Get a glass of water",
		Modality:       model.ModalityVector{PassiveActive: 0.3, NovelFamiliar: -0.8, SocialSolo: -1, FiniteInfinite: -1, ExpressiveConsumptive: -0.3},
		RequiredEffort: model.EffortVeryLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Restful"},
		Icon:           "water",
	},
	{
		ID:             "text_friend",
		Label:          "Text a friend",
		Description:    "Send one message to someone you have not talked to this week.",
		Modality:       model.ModalityVector{PassiveActive: 0.1, NovelFamiliar: 0.3, SocialSolo: 1, FiniteInfinite: -0.5, ExpressiveConsumptive: 0.6},
		RequiredEffort: model.EffortLow,
		Surface:        model.SurfaceOnPhone,
		LaunchTarget:   "sms:",
		IdentityTags:   []string{"Connected"},
		Icon:           "chatbubble",
	},
	{
		ID:             "read_page",
		Label:          "Read one page",
		Description:    "A page of whatever book is nearest.",
		Modality:       model.ModalityVector{PassiveActive: -0.5, NovelFamiliar: 0.5, SocialSolo: -1, FiniteInfinite: -0.6, ExpressiveConsumptive: -0.7},
		RequiredEffort: model.EffortLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Learner"},
		Icon:           "book",
	},
	{
		ID:             "learn_word",
		Label:          "Learn one new word",
		Description:    "One word in a language you are picking up.",
		Modality:       model.ModalityVector{PassiveActive: 0, NovelFamiliar: 0.9, SocialSolo: -1, FiniteInfinite: -0.7, ExpressiveConsumptive: 0.2},
		RequiredEffort: model.EffortLow,
		Surface:        model.SurfaceOnPhone,
		IdentityTags:   []string{"Learner"},
		Icon:           "language",
	},
	{
		ID:             "journal",
		Label:          "Write three lines",
		Description:    "What happened, how it felt, what is next.",
		Modality:       model.ModalityVector{PassiveActive: 0.2, NovelFamiliar: 0.2, SocialSolo: -1, FiniteInfinite: -0.8, ExpressiveConsumptive: 1},
		RequiredEffort: model.EffortLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Creative", "Mindful"},
		Icon:           "create",
	},
	{
		ID:             "doodle",
		Label:          "Doodle for two minutes",
		Modality:       model.ModalityVector{PassiveActive: 0.3, NovelFamiliar: 0.6, SocialSolo: -1, FiniteInfinite: -0.7, ExpressiveConsumptive: 0.9},
		RequiredEffort: model.EffortLow,
		Surface:        model.SurfaceOffPhone,
		IdentityTags:   []string{"Creative"},
		Icon:           "color-palette",
	},
	{
		ID:             "short_walk",
		Label:          "Take a five-minute walk",
		Description:    "Around the block or down the hall and back.",
		Modality:       model.ModalityVector{PassiveActive: 0.8, NovelFamiliar: 0.3, SocialSolo: -0.6, FiniteInfinite: -0.8, ExpressiveConsumptive: -0.2},
		RequiredEffort: model.EffortMedium,
		ContextConstraints: []model.ContextConstraint{
			{Type: model.ConstraintLocation, Operator: model.OpNotEquals, Value: string(model.LocationTransit)},
		},
		Surface:      model.SurfaceOffPhone,
		IdentityTags: []string{"Active", "Mindful"},
		Icon:         "walk",
	},
	{
		ID:             "tidy",
		Label:          "Tidy one surface",
		Description:    "A desk, a counter, a shelf. Just one.",
		Modality:       model.ModalityVector{PassiveActive: 0.7, NovelFamiliar: -0.5, SocialSolo: -1, FiniteInfinite: -0.8, ExpressiveConsumptive: 0.3},
		RequiredEffort: model.EffortMedium,
		ContextConstraints: []model.ContextConstraint{
			{Type: model.ConstraintLocation, Operator: model.OpEquals, Value: string(model.LocationHome)},
		},
		Surface:      model.SurfaceOffPhone,
		IdentityTags: []string{"Builder"},
		Icon:         "home",
	},
	{
		ID:             "plan_tomorrow",
		Label:          "Jot down tomorrow's top task",
		Modality:       model.ModalityVector{PassiveActive: 0.4, NovelFamiliar: -0.2, SocialSolo: -1, FiniteInfinite: -0.9, ExpressiveConsumptive: 0.6},
		RequiredEffort: model.EffortMedium,
		ContextConstraints: []model.ContextConstraint{
			{Type: model.ConstraintTime, Operator: model.OpEquals, Value: string(model.TimeEvening)},
		},
		Surface:      model.SurfaceOffPhone,
		IdentityTags: []string{"Builder"},
		Icon:         "list",
	},
	{
		ID:             "pushups",
		Label:          "Ten push-ups",
		Modality:       model.ModalityVector{PassiveActive: 1, NovelFamiliar: -0.3, SocialSolo: -1, FiniteInfinite: -1, ExpressiveConsumptive: 0},
		RequiredEffort: model.EffortHigh,
		ContextConstraints: []model.ContextConstraint{
			{Type: model.ConstraintLocation, Operator: model.OpNotEquals, Value: string(model.LocationPublic)},
		},
		Surface:      model.SurfaceOffPhone,
		IdentityTags: []string{"Active"},
		Icon:         "fitness",
	},
	{
		ID:             "call_someone",
		Label:          "Call someone you miss",
		Modality:       model.ModalityVector{PassiveActive: 0.4, NovelFamiliar: 0.2, SocialSolo: 1, FiniteInfinite: -0.2, ExpressiveConsumptive: 0.8},
		RequiredEffort: model.EffortHigh,
		Surface:        model.SurfaceOnPhone,
		LaunchTarget:   "tel:",
		IdentityTags:   []string{"Connected"},
		Icon:           "call",
	},
}

var defaultCatalog = MustNew(defaultActivities...)

// Default returns the built-in catalog. Its first activity needs the
// lowest effort tier, so the fallback always fits a very_low budget.
func Default() *Catalog {
	return defaultCatalog
}
