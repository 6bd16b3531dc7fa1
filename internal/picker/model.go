// Package picker is the interactive terminal menu that presents a decision
// and records which option the user took.
package picker

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// pickerState represents the current state of the picker's state machine.
type pickerState int

const (
	stateChoosing  pickerState = iota // Waiting for input
	stateAccepted                     // Enter on a candidate
	stateContinued                    // User chose to keep doing what they were doing
	stateDismissed                    // Esc / Ctrl+C
)

// Result is the user's answer to a decision.
type Result struct {
	Action      model.OutcomeAction
	CandidateID string // Set only for accepted results
}

// Model is the Bubble Tea model for the intervention menu.
type Model struct {
	state     pickerState
	decision  model.Decision
	items     []model.Candidate
	selection int

	width  int // Terminal width
	height int // Terminal height
}

// NewModel creates a picker over the decision's primary and alternatives.
// The primary starts selected.
func NewModel(d model.Decision) Model {
	return Model{
		state:     stateChoosing,
		decision:  d,
		items:     d.Candidates(),
		selection: 0,
	}
}

// Done reports whether the user has answered.
func (m Model) Done() bool {
	return m.state != stateChoosing
}

// Result returns the user's answer. A model that was never answered
// reports a dismissal.
func (m Model) Result() Result {
	switch m.state {
	case stateAccepted:
		return Result{Action: model.OutcomeAccepted, CandidateID: m.items[m.selection].ID}
	case stateContinued:
		return Result{Action: model.OutcomeContinuedDefault}
	default:
		return Result{Action: model.OutcomeDismissed}
	}
}

// Selected returns the highlighted candidate.
func (m Model) Selected() model.Candidate {
	return m.items[m.selection]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Done() {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.state = stateDismissed
		return m, tea.Quit

	case tea.KeyEnter:
		m.state = stateAccepted
		return m, tea.Quit

	case tea.KeyUp, tea.KeyShiftTab:
		if m.selection > 0 {
			m.selection--
		}
		return m, nil

	case tea.KeyDown, tea.KeyTab:
		if m.selection < len(m.items)-1 {
			m.selection++
		}
		return m, nil

	case tea.KeyRunes:
		return m.handleRunes(msg.Runes)
	}

	return m, nil
}

// handleRunes maps letter and digit shortcuts.
func (m Model) handleRunes(runes []rune) (tea.Model, tea.Cmd) {
	if len(runes) != 1 {
		return m, nil
	}

	switch r := runes[0]; {
	case r == 'k':
		if m.selection > 0 {
			m.selection--
		}
	case r == 'j':
		if m.selection < len(m.items)-1 {
			m.selection++
		}
	case r == 'c':
		m.state = stateContinued
		return m, tea.Quit
	case r == 'q':
		m.state = stateDismissed
		return m, tea.Quit
	case r >= '1' && r <= '9':
		if i := int(r - '1'); i < len(m.items) {
			m.selection = i
			m.state = stateAccepted
			return m, tea.Quit
		}
	}
	return m, nil
}

// Run shows the picker on the given terminal streams and blocks until the
// user answers or ctx is cancelled.
func Run(ctx context.Context, d model.Decision, in io.Reader, out io.Writer) (Result, error) {
	p := tea.NewProgram(NewModel(d),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("picker: unexpected model type %T", final)
	}
	return m.Result(), nil
}

// --- View rendering ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	effortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Done() {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.clip(Clean(m.decision.Explanation), 0)))
	b.WriteRune('\n')
	b.WriteRune('\n')

	for i, c := range m.items {
		b.WriteString(m.viewItem(i, c))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')
	b.WriteString(dimStyle.Render("↑/↓ move · enter pick · 1-9 quick pick · c keep going · esc dismiss"))

	return b.String()
}

// viewItem renders one candidate row, with its description underneath
// when it is selected.
func (m Model) viewItem(i int, c model.Candidate) string {
	label := Clean(c.Label)
	if c.Icon != "" {
		label = Clean(c.Icon) + " " + label
	}
	tier := effortStyle.Render("[" + string(c.RequiredEffort) + "]")
	line := fmt.Sprintf("%d. %s", i+1, m.clip(label, 4+len(c.RequiredEffort)+3))

	if i != m.selection {
		return normalStyle.Render("  "+line) + " " + tier
	}

	row := selectedStyle.Render("> "+line) + " " + tier
	if desc := Clean(c.Description); desc != "" {
		row += "\n" + dimStyle.Render("     "+m.clip(desc, 5))
	}
	return row
}

// clip truncates s to the terminal width minus the given chrome.
func (m Model) clip(s string, chrome int) string {
	if m.width <= chrome+1 {
		return s
	}
	return MiddleTruncate(s, m.width-chrome)
}
