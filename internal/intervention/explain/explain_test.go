package explain

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

type fixedPicker int

func (f fixedPicker) IntN(int) int { return int(f) }

func TestMessage_FromPool(t *testing.T) {
	t.Parallel()

	for _, st := range model.SituationTypes {
		pool := Messages(st)
		require.Len(t, pool, 2, st)
		assert.Equal(t, pool[0], Message(st, fixedPicker(0)))
		assert.Equal(t, pool[1], Message(st, fixedPicker(1)))
	}
}

func TestMessage_UnknownType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultMessage, Message("DOOMSCROLL", nil))
	assert.Equal(t, []string{DefaultMessage}, Messages(""))
}

func TestMessage_OutOfRangePickerFallsBack(t *testing.T) {
	t.Parallel()

	pool := Messages(model.SituationWorkBreak)
	assert.Equal(t, pool[0], Message(model.SituationWorkBreak, fixedPicker(9)))
	assert.Equal(t, pool[0], Message(model.SituationWorkBreak, fixedPicker(-1)))
}

func TestMessage_CoversPool(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 5))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[Message(model.SituationLateNightIdle, r)] = true
	}
	assert.Len(t, seen, 2)
}

func TestMessages_ReturnsCopy(t *testing.T) {
	t.Parallel()

	pool := Messages(model.SituationMorningRoutine)
	pool[0] = "mutated"
	assert.Equal(t, "Starting the day.", Messages(model.SituationMorningRoutine)[0])
}

func scored(m, i, e, v float64, tags ...string) rank.Scored {
	b := rank.Breakdown{Modality: m, Identity: i, Effort: e, Variety: v}
	return rank.Scored{
		Candidate: model.Candidate{ID: "c", IdentityTags: tags},
		Score:     b.Total(),
		Breakdown: b,
	}
}

func TestReasons_SortedShares(t *testing.T) {
	t.Parallel()

	u := model.User{IdentityAnchors: model.AnchorsFromLabels("Mindful", "Active")}
	reasons := Reasons(scored(0.2, 0.5, 0.3, 0, "active"), u, DefaultConfig())

	require.Len(t, reasons, 3)
	assert.Equal(t, rank.ReasonIdentity, reasons[0].Tag)
	assert.InDelta(t, 0.5, reasons[0].Contribution, 1e-9)
	assert.Contains(t, reasons[0].Description, "Active")
	assert.Equal(t, rank.ReasonEffort, reasons[1].Tag)
	assert.Equal(t, rank.ReasonModality, reasons[2].Tag)
}

func TestReasons_DropsSmallAndZero(t *testing.T) {
	t.Parallel()

	reasons := Reasons(scored(0.97, 0, 0.03, 0), model.User{}, DefaultConfig())

	require.Len(t, reasons, 1)
	assert.Equal(t, rank.ReasonModality, reasons[0].Tag)
}

func TestReasons_VarietyGated(t *testing.T) {
	t.Parallel()

	s := scored(0.3, 0.1, 0.1, 0.5)

	for _, r := range Reasons(s, model.User{}, DefaultConfig()) {
		assert.NotEqual(t, rank.ReasonVariety, r.Tag)
	}

	cfg := DefaultConfig()
	cfg.IncludeVariety = true
	reasons := Reasons(s, model.User{}, cfg)
	require.NotEmpty(t, reasons)
	assert.Equal(t, rank.ReasonVariety, reasons[0].Tag)
}

func TestReasons_MaxReasons(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxReasons = 1
	assert.Len(t, Reasons(scored(0.3, 0.3, 0.3, 0), model.User{}, cfg), 1)
}

func TestReasons_ZeroScore(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Reasons(scored(0, 0, 0, 0), model.User{}, DefaultConfig()))
}

func TestReasons_IdentityWithoutMatch(t *testing.T) {
	t.Parallel()

	// Neutral identity score when the user has no anchors.
	reasons := Reasons(scored(0, 0.15, 0, 0), model.User{}, DefaultConfig())
	require.Len(t, reasons, 1)
	assert.Equal(t, "Fits your goals", reasons[0].Description)
}
