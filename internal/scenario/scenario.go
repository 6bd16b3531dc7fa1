// Package scenario reads situation scripts and replays them through the
// engine.
//
// A script has one situation per line as shell-quoted key=value pairs:
//
//	type=WAITING_CONTEXT confidence=0.8 time=afternoon location=transit
//	type=LATE_NIGHT_IDLE time=now anchors="Mindful,Calm" # comment
//
// Blank lines are ignored, and so is a word starting with # and the
// rest of its line. Quoted values may contain #.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"

	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/situation"
)

// DefaultConfidence is used when a line has no confidence key.
const DefaultConfidence = 0.8

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("scenario syntax error")

// Scenario is one parsed script line.
type Scenario struct {
	Line      int
	Situation model.Situation
	User      model.User
}

// Parse reads a script. now stamps each situation and resolves time=now.
// Users carry the default preferences and the line's anchors.
func Parse(r io.Reader, now time.Time) ([]Scenario, error) {
	var out []Scenario

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		tokens, err := split(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(tokens) == 0 {
			continue
		}

		s, err := fromTokens(tokens, now)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Line = line
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return out, nil
}

// ParseLine parses a single line of key=value pairs.
func ParseLine(text string, now time.Time) (Scenario, error) {
	tokens, err := split(text)
	if err != nil {
		return Scenario{}, err
	}
	return fromTokens(tokens, now)
}

// split tokenizes a line. shlex drops a word starting with # and the rest
// of the line, while # inside quotes or a word is kept.
func split(text string) ([]string, error) {
	tokens, err := shlex.Split(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tokens, nil
}

func fromTokens(tokens []string, now time.Time) (Scenario, error) {

	sit := model.Situation{
		Confidence: DefaultConfidence,
		StartedAt:  now,
		Context: model.SituationContext{
			TimeOfDay: situation.TimeBucketAt(now),
		},
		EligibleForIntervention: true,
	}
	user := model.User{ID: "scenario", Preferences: model.DefaultPreferences()}

	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return Scenario{}, fmt.Errorf("%w: expected key=value, got %q", ErrSyntax, tok)
		}
		if seen[key] {
			return Scenario{}, fmt.Errorf("%w: duplicate key %q", ErrSyntax, key)
		}
		seen[key] = true

		if err := apply(&sit, &user, key, value, now); err != nil {
			return Scenario{}, err
		}
	}

	if !seen["type"] {
		return Scenario{}, fmt.Errorf("%w: missing type", ErrSyntax)
	}
	if sit.ID == "" {
		sit.ID = uuid.New().String()
	}
	user.OnboardingCompleted = len(user.IdentityAnchors) > 0

	return Scenario{Situation: sit, User: user}, nil
}

func apply(sit *model.Situation, user *model.User, key, value string, now time.Time) error {
	switch key {
	case "type":
		t := model.SituationType(strings.ToUpper(value))
		if !t.IsValid() {
			return fmt.Errorf("%w: unknown situation type %q", ErrSyntax, value)
		}
		sit.Type = t
	case "id":
		sit.ID = value
	case "confidence":
		c, err := strconv.ParseFloat(value, 64)
		if err != nil || c < 0 || c > 1 {
			return fmt.Errorf("%w: confidence must be a number between 0 and 1, got %q", ErrSyntax, value)
		}
		sit.Confidence = c
	case "time":
		if value == "now" {
			sit.Context.TimeOfDay = situation.TimeBucketAt(now)
			return nil
		}
		b := model.TimeBucket(value)
		if !b.IsValid() {
			return fmt.Errorf("%w: unknown time bucket %q", ErrSyntax, value)
		}
		sit.Context.TimeOfDay = b
	case "load":
		l := model.CognitiveLoad(value)
		if !l.IsValid() {
			return fmt.Errorf("%w: unknown load %q", ErrSyntax, value)
		}
		sit.Context.RecentCognitiveLoad = l
	case "location":
		l := model.LocationCategory(value)
		if !l.IsValid() {
			return fmt.Errorf("%w: unknown location %q", ErrSyntax, value)
		}
		sit.Context.LocationCategory = l
	case "app":
		a := model.AppCategory(value)
		if !a.IsValid() {
			return fmt.Errorf("%w: unknown app category %q", ErrSyntax, value)
		}
		sit.Context.AppCategory = a
	case "eligible":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: eligible must be a boolean, got %q", ErrSyntax, value)
		}
		sit.EligibleForIntervention = b
	case "anchors":
		var labels []string
		for _, l := range strings.Split(value, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
		user.IdentityAnchors = model.AnchorsFromLabels(labels...)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrSyntax, key)
	}
	return nil
}
