package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/model"
)

func clock(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func eligible(conf float64) model.Situation {
	return model.Situation{ID: "s", Type: model.SituationWorkBreak, Confidence: conf, EligibleForIntervention: true}
}

func noQuiet() model.User {
	return model.User{Preferences: model.Preferences{}}
}

func TestCheck_Allowed(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	v := g.Check(clock(14, 0), noQuiet(), eligible(0.9), nil)

	assert.True(t, v.Allowed)
	assert.Empty(t, v.Blocks)
}

func TestCheck_Cooldown(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	now := clock(14, 0)

	recent := now.Add(-10 * time.Minute)
	v := g.Check(now, noQuiet(), eligible(0.9), &recent)
	require.False(t, v.Allowed)
	assert.Equal(t, []string{"cooldown"}, v.Kinds())

	old := now.Add(-15 * time.Minute)
	v = g.Check(now, noQuiet(), eligible(0.9), &old)
	assert.True(t, v.Allowed, "cooldown boundary is exclusive")
}

func TestCheck_ZeroCooldownDisables(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cooldown = 0
	now := clock(14, 0)

	v := New(cfg).Check(now, noQuiet(), eligible(0.9), &now)
	assert.True(t, v.Allowed)
}

func TestCheck_QuietHours(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	u := model.User{Preferences: model.DefaultPreferences()} // 22:00-07:00

	tests := []struct {
		hour, minute int
		blocked      bool
	}{
		{21, 59, false},
		{22, 0, true},
		{23, 30, true},
		{0, 0, true},
		{7, 0, true},
		{7, 1, false},
		{12, 0, false},
	}

	for _, tt := range tests {
		v := g.Check(clock(tt.hour, tt.minute), u, eligible(0.9), nil)
		assert.Equal(t, !tt.blocked, v.Allowed, "%02d:%02d", tt.hour, tt.minute)
	}
}

func TestCheck_QuietHoursDisabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RespectQuietHours = false
	u := model.User{Preferences: model.DefaultPreferences()}

	v := New(cfg).Check(clock(23, 0), u, eligible(0.9), nil)
	assert.True(t, v.Allowed)
}

func TestCheck_QuietHoursUserTimezone(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	g := New(DefaultConfig())
	u := model.User{Timezone: loc.String(), Preferences: model.DefaultPreferences()}

	// 03:00 UTC is 22:00 or 23:00 in New York, inside 22:00-07:00.
	v := g.Check(clock(3, 0), u, eligible(0.9), nil)
	assert.False(t, v.Allowed)

	u.Timezone = "Not/AZone"
	v = g.Check(clock(12, 0), u, eligible(0.9), nil)
	assert.True(t, v.Allowed, "unknown timezone falls back to the clock's zone")
}

func TestCheck_LowConfidence(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())

	v := g.Check(clock(14, 0), noQuiet(), eligible(0.49), nil)
	assert.Equal(t, []string{"low_confidence"}, v.Kinds())

	v = g.Check(clock(14, 0), noQuiet(), eligible(0.5), nil)
	assert.True(t, v.Allowed)
}

func TestCheck_CollectsAllBlocksInOrder(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	u := model.User{Preferences: model.DefaultPreferences()}
	now := clock(23, 0)
	last := now.Add(-time.Minute)

	s := eligible(0.1)
	s.EligibleForIntervention = false

	v := g.Check(now, u, s, &last)
	assert.False(t, v.Allowed)
	assert.Equal(t, []string{"ineligible", "cooldown", "quiet_hours", "low_confidence"}, v.Kinds())
	for _, b := range v.Blocks {
		assert.NotEmpty(t, b.Reason)
	}
}

func TestInRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    model.TimeRange
		at   time.Time
		want bool
	}{
		{"same-day inside", model.TimeRange{Start: "09:00", End: "17:00"}, clock(12, 0), true},
		{"same-day start inclusive", model.TimeRange{Start: "09:00", End: "17:00"}, clock(9, 0), true},
		{"same-day end inclusive", model.TimeRange{Start: "09:00", End: "17:00"}, clock(17, 0), true},
		{"same-day outside", model.TimeRange{Start: "09:00", End: "17:00"}, clock(17, 1), false},
		{"overnight late", model.TimeRange{Start: "22:00", End: "07:00"}, clock(23, 59), true},
		{"overnight early", model.TimeRange{Start: "22:00", End: "07:00"}, clock(6, 30), true},
		{"overnight midday", model.TimeRange{Start: "22:00", End: "07:00"}, clock(12, 0), false},
		{"single minute", model.TimeRange{Start: "12:00", End: "12:00"}, clock(12, 0), true},
		{"malformed start", model.TimeRange{Start: "noon", End: "13:00"}, clock(12, 30), false},
		{"malformed end", model.TimeRange{Start: "12:00", End: "25:00"}, clock(12, 30), false},
		{"empty", model.TimeRange{}, clock(0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.at, tt.r))
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	m, ok := ParseClock("07:30")
	require.True(t, ok)
	assert.Equal(t, 450, m)

	m, ok = ParseClock(" 0:05 ")
	require.True(t, ok)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "7", "24:00", "12:60", "-1:00", "ab:cd"} {
		_, ok := ParseClock(bad)
		assert.False(t, ok, bad)
	}
}
