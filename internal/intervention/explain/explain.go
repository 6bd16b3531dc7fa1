// Package explain produces the short human-readable text that accompanies a
// decision: a situation message drawn from a fixed pool, and the top score
// components of a ranked candidate as reasons.
package explain

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

// DefaultMessage is used for situation types without a pool.
const DefaultMessage = "A moment to pause."

var messages = map[model.SituationType][]string{
	model.SituationRepeatedAppOpen: {
		"You've been reaching for your phone frequently.",
		"Noticed a pattern of quick app checks.",
	},
	model.SituationLongSingleAppSession: {
		"You've been on this app for a while.",
		"A longer session than usual.",
	},
	model.SituationPostMeetingTransition: {
		"Transitioning after your meeting.",
		"A natural break in your day.",
	},
	model.SituationArrivedHomeAfterWork: {
		"Welcome home. Transition moment.",
		"End of workday, new context.",
	},
	model.SituationLateNightIdle: {
		"Getting late. Wind-down time.",
		"Late night moment.",
	},
	model.SituationWaitingContext: {
		"Looks like you're waiting.",
		"A brief pause in your day.",
	},
	model.SituationMorningRoutine: {
		"Starting the day.",
		"Morning moment.",
	},
	model.SituationWorkBreak: {
		"Taking a break.",
		"Brief pause from work.",
	},
}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// DefaultPicker draws from the goroutine-safe top-level generator.
var DefaultPicker Picker = globalPicker{}

// Messages returns a copy of the message pool for t, or the default pool.
func Messages(t model.SituationType) []string {
	pool, ok := messages[t]
	if !ok {
		return []string{DefaultMessage}
	}
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

// Message picks one message for the situation type uniformly at random.
// A nil picker uses DefaultPicker.
func Message(t model.SituationType, p Picker) string {
	if p == nil {
		p = DefaultPicker
	}
	pool := Messages(t)
	i := p.IntN(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}

// Config controls how score reasons are generated.
type Config struct {
	MaxReasons      int     // max reasons to include (default 3)
	MinContribution float64 // drop shares below this threshold (default 0.05)
	IncludeVariety  bool    // report the random bonus as a reason (default false)
}

// DefaultConfig returns the default reason configuration.
func DefaultConfig() Config {
	return Config{
		MaxReasons:      3,
		MinContribution: 0.05,
		IncludeVariety:  false,
	}
}

type component struct {
	tag   string
	score float64
}

// Reasons extracts the largest weighted contributions of a scored candidate,
// as shares of its total score, largest first.
func Reasons(s rank.Scored, u model.User, cfg Config) []model.Reason {
	if cfg.MaxReasons <= 0 {
		cfg.MaxReasons = 3
	}
	if s.Score <= 0 {
		return nil
	}

	comps := []component{
		{rank.ReasonModality, s.Breakdown.Modality},
		{rank.ReasonIdentity, s.Breakdown.Identity},
		{rank.ReasonEffort, s.Breakdown.Effort},
	}
	if cfg.IncludeVariety {
		comps = append(comps, component{rank.ReasonVariety, s.Breakdown.Variety})
	}

	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].score > comps[j].score
	})

	reasons := make([]model.Reason, 0, cfg.MaxReasons)
	for _, c := range comps {
		if len(reasons) >= cfg.MaxReasons {
			break
		}
		share := c.score / s.Score
		if c.score == 0 || share < cfg.MinContribution {
			continue
		}
		reasons = append(reasons, model.Reason{
			Tag:          c.tag,
			Description:  describe(c.tag, s.Candidate, u),
			Contribution: share,
		})
	}
	return reasons
}

// describe returns the human-readable text for a reason tag.
func describe(tag string, c model.Candidate, u model.User) string {
	switch tag {
	case rank.ReasonModality:
		return "Scratches a similar itch to scrolling"
	case rank.ReasonIdentity:
		if matched := matchedAnchors(c, u); len(matched) > 0 {
			return "Fits who you want to be: " + strings.Join(matched, ", ")
		}
		return "Fits your goals"
	case rank.ReasonEffort:
		return "Low effort for right now"
	case rank.ReasonVariety:
		return "Mixing things up"
	default:
		return strings.ReplaceAll(tag, "_", " ")
	}
}

// matchedAnchors lists the user's anchor labels that the candidate is tagged with.
func matchedAnchors(c model.Candidate, u model.User) []string {
	var out []string
	for _, a := range u.IdentityAnchors {
		for _, tag := range c.IdentityTags {
			if strings.EqualFold(tag, a.Label) {
				out = append(out, a.Label)
				break
			}
		}
	}
	return out
}
