package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/theme"
)

// CommandMsg carries a parsed palette line to the app.
type CommandMsg struct {
	Command Command
}

const usage = "new | categories | sort <key> | filter <state> | category <name> | tag <name> | clear | quit"

// Model is the ":" palette. A line that fails to parse stays in the input
// with the error shown below it.
type Model struct {
	input textinput.Model
	err   error
	width int
}

// New returns a focused palette sized for width.
func New(width, _ int) Model {
	in := textinput.New()
	in.Prompt = ": "
	in.Placeholder = usage
	in.Focus()

	m := Model{input: in}
	m.SetSize(width, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	c, err := Parse(line)
	m.err = err
	if err != nil {
		return m, nil
	}
	m.input.Reset()
	return m, func() tea.Msg { return CommandMsg{Command: c} }
}

func (m Model) View() string {
	lines := []string{theme.PanelTitleStyle.Render("Command Palette"), m.input.View()}
	if m.err != nil {
		lines = append(lines, "", theme.ErrorStyle.Render(m.err.Error()))
	}
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Err returns the error from the last rejected line.
func (m Model) Err() error {
	return m.err
}

func (m *Model) SetSize(width, _ int) {
	m.width = width
	m.input.Width = width - 6
}

// Focus resets the palette for a fresh line.
func (m *Model) Focus() tea.Cmd {
	m.err = nil
	m.input.Reset()
	return m.input.Focus()
}
