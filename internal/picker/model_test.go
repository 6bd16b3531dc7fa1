package picker

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/dopamenu/internal/intervention/model"
)

func testDecision() model.Decision {
	return model.Decision{
		ID:          "d-1",
		SituationID: "s-1",
		Explanation: "You have a few minutes. Try something small.",
		Primary: model.Candidate{
			ID: "breathe", Label: "Take 3 deep breaths", RequiredEffort: model.EffortVeryLow,
			Description: "Slow in, slower out.",
		},
		Alternatives: []model.Candidate{
			{ID: "stretch", Label: "Stretch", RequiredEffort: model.EffortVeryLow},
			{ID: "journal", Label: "Write one line", RequiredEffort: model.EffortLow, Icon: "✎"},
		},
	}
}

func newTestModel() Model {
	m := NewModel(testDecision())
	m.width = 80
	m.height = 24
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel_PrimarySelected(t *testing.T) {
	m := NewModel(testDecision())
	assert.False(t, m.Done())
	assert.Equal(t, "breathe", m.Selected().ID)
	assert.Nil(t, m.Init())
}

func TestModel_EnterAcceptsPrimary(t *testing.T) {
	m, cmd := press(t, newTestModel(), key(tea.KeyEnter))

	assert.True(t, isQuit(cmd))
	assert.True(t, m.Done())
	assert.Equal(t, Result{Action: model.OutcomeAccepted, CandidateID: "breathe"}, m.Result())
}

func TestModel_NavigateThenAccept(t *testing.T) {
	m := newTestModel()
	m, _ = press(t, m, key(tea.KeyDown))
	m, _ = press(t, m, key(tea.KeyDown))
	m, _ = press(t, m, key(tea.KeyDown)) // clamps at the last item
	assert.Equal(t, "journal", m.Selected().ID)

	m, _ = press(t, m, key(tea.KeyUp))
	assert.Equal(t, "stretch", m.Selected().ID)

	m, cmd := press(t, m, key(tea.KeyEnter))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, "stretch", m.Result().CandidateID)
}

func TestModel_UpClampsAtTop(t *testing.T) {
	m, _ := press(t, newTestModel(), key(tea.KeyUp))
	assert.Equal(t, "breathe", m.Selected().ID)
}

func TestModel_VimKeys(t *testing.T) {
	m := newTestModel()
	m, _ = press(t, m, runes("j"))
	assert.Equal(t, "stretch", m.Selected().ID)
	m, _ = press(t, m, runes("k"))
	assert.Equal(t, "breathe", m.Selected().ID)
}

func TestModel_DigitQuickPick(t *testing.T) {
	m, cmd := press(t, newTestModel(), runes("3"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, Result{Action: model.OutcomeAccepted, CandidateID: "journal"}, m.Result())
}

func TestModel_DigitOutOfRangeIgnored(t *testing.T) {
	m, cmd := press(t, newTestModel(), runes("9"))
	assert.Nil(t, cmd)
	assert.False(t, m.Done())
}

func TestModel_ContinueDefault(t *testing.T) {
	m, cmd := press(t, newTestModel(), runes("c"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, Result{Action: model.OutcomeContinuedDefault}, m.Result())
}

func TestModel_Dismiss(t *testing.T) {
	for _, msg := range []tea.KeyMsg{key(tea.KeyEsc), key(tea.KeyCtrlC), runes("q")} {
		m, cmd := press(t, newTestModel(), msg)
		assert.True(t, isQuit(cmd), msg.String())
		assert.Equal(t, Result{Action: model.OutcomeDismissed}, m.Result(), msg.String())
	}
}

func TestModel_UnansweredIsDismissed(t *testing.T) {
	assert.Equal(t, model.OutcomeDismissed, newTestModel().Result().Action)
}

func TestModel_KeysIgnoredAfterAnswer(t *testing.T) {
	m, _ := press(t, newTestModel(), key(tea.KeyEnter))
	m, cmd := press(t, m, runes("c"))
	assert.Nil(t, cmd)
	assert.Equal(t, model.OutcomeAccepted, m.Result().Action)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := press(t, NewModel(testDecision()), key(tea.KeyDown))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m = next.(Model)
	assert.Equal(t, 40, m.width)
	assert.Equal(t, 10, m.height)
}

func TestView(t *testing.T) {
	view := StripANSI(newTestModel().View())

	assert.Contains(t, view, "You have a few minutes")
	assert.Contains(t, view, "> 1. Take 3 deep breaths")
	assert.Contains(t, view, "Slow in, slower out.")
	assert.Contains(t, view, "  2. Stretch")
	assert.Contains(t, view, "3. ✎ Write one line")
	assert.Contains(t, view, "[very_low]")
	assert.Contains(t, view, "esc dismiss")
}

func TestView_DescriptionOnlyForSelection(t *testing.T) {
	m, _ := press(t, newTestModel(), key(tea.KeyDown))
	view := StripANSI(m.View())
	assert.NotContains(t, view, "Slow in, slower out.")
	assert.Contains(t, view, "> 2. Stretch")
}

func TestView_SanitizesCatalogText(t *testing.T) {
	d := testDecision()
	d.Primary.Label = "\x1b[31mEvil\x1b[0m\nlabel"
	m := NewModel(d)
	view := m.View()
	assert.NotContains(t, view, "\x1b[31mEvil")
	assert.Contains(t, StripANSI(view), "Evil label")
}

func TestView_TruncatesToWidth(t *testing.T) {
	d := testDecision()
	d.Explanation = strings.Repeat("long ", 40)
	m := NewModel(d)
	m.width = 30
	first := strings.SplitN(StripANSI(m.View()), "\n", 2)[0]
	assert.Contains(t, first, "…")
}

func TestView_EmptyWhenDone(t *testing.T) {
	m, _ := press(t, newTestModel(), key(tea.KeyEsc))
	assert.Equal(t, "", m.View())
}

func TestRun_ScriptedInput(t *testing.T) {
	var out bytes.Buffer
	res, err := Run(context.Background(), testDecision(), strings.NewReader("2"), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{Action: model.OutcomeAccepted, CandidateID: "stretch"}, res)
}
