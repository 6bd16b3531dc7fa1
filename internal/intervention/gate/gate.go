// Package gate decides whether an intervention may be shown at all, before
// the engine is asked for a decision.
package gate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// BlockKind classifies why an intervention was suppressed.
type BlockKind string

const (
	BlockIneligible    BlockKind = "ineligible"
	BlockCooldown      BlockKind = "cooldown"
	BlockQuietHours    BlockKind = "quiet_hours"
	BlockLowConfidence BlockKind = "low_confidence"
)

// Block is one reason an intervention was suppressed.
type Block struct {
	Kind   BlockKind
	Reason string
}

// Verdict is the result of a gate check.
type Verdict struct {
	Allowed bool
	Blocks  []Block
}

// Kinds returns the block kinds as strings, for logging.
func (v Verdict) Kinds() []string {
	out := make([]string, 0, len(v.Blocks))
	for _, b := range v.Blocks {
		out = append(out, string(b.Kind))
	}
	return out
}

// Config holds the gate thresholds.
type Config struct {
	Cooldown          time.Duration
	MinConfidence     float64
	RespectQuietHours bool
}

// DefaultConfig returns a 15 minute cooldown, a 0.5 confidence floor and
// quiet hours enforced.
func DefaultConfig() Config {
	return Config{
		Cooldown:          15 * time.Minute,
		MinConfidence:     0.5,
		RespectQuietHours: true,
	}
}

// Gate evaluates the pre-conditions for an intervention.
type Gate struct {
	config Config
}

// New creates a gate with the given configuration.
func New(config Config) *Gate {
	return &Gate{config: config}
}

// Config returns the gate configuration.
func (g *Gate) Config() Config {
	return g.config
}

// Check runs every check and collects all blocks, in order: eligibility,
// cooldown, quiet hours, confidence. last is the time of the previous
// intervention, or nil if there was none.
func (g *Gate) Check(now time.Time, u model.User, s model.Situation, last *time.Time) Verdict {
	var blocks []Block

	// 1. Signal layer marked the situation as not eligible
	if !s.EligibleForIntervention {
		blocks = append(blocks, Block{
			Kind:   BlockIneligible,
			Reason: "situation is not eligible for intervention",
		})
	}

	// 2. Cooldown since the previous intervention
	if last != nil && g.config.Cooldown > 0 {
		if elapsed := now.Sub(*last); elapsed < g.config.Cooldown {
			blocks = append(blocks, Block{
				Kind: BlockCooldown,
				Reason: fmt.Sprintf("last intervention %s ago, cooldown %s",
					elapsed.Round(time.Second), g.config.Cooldown),
			})
		}
	}

	// 3. User quiet hours, in the user's timezone when it is known
	if g.config.RespectQuietHours {
		local := inUserZone(now, u.Timezone)
		for _, r := range u.Preferences.QuietHours {
			if InRange(local, r) {
				blocks = append(blocks, Block{
					Kind:   BlockQuietHours,
					Reason: fmt.Sprintf("%s falls in quiet hours %s-%s", local.Format("15:04"), r.Start, r.End),
				})
				break
			}
		}
	}

	// 4. Classifier not confident enough
	if s.Confidence < g.config.MinConfidence {
		blocks = append(blocks, Block{
			Kind:   BlockLowConfidence,
			Reason: fmt.Sprintf("confidence %.2f below %.2f", s.Confidence, g.config.MinConfidence),
		})
	}

	return Verdict{Allowed: len(blocks) == 0, Blocks: blocks}
}

// InRange reports whether the wall-clock minute of t lies in r. Both ends
// are inclusive. A range whose start is after its end wraps past midnight.
// Malformed ranges never match.
func InRange(t time.Time, r model.TimeRange) bool {
	start, ok := ParseClock(r.Start)
	if !ok {
		return false
	}
	end, ok := ParseClock(r.End)
	if !ok {
		return false
	}

	m := t.Hour()*60 + t.Minute()
	if start > end {
		return m >= start || m <= end
	}
	return m >= start && m <= end
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func inUserZone(now time.Time, tz string) time.Time {
	if tz == "" {
		return now
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return now
	}
	return now.In(loc)
}
