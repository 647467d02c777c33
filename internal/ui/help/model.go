package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/theme"
)

type paletteEntry struct {
	usage, desc string
}

var palette = []paletteEntry{
	{"new", "create an item"},
	{"categories", "manage categories"},
	{"sort createdAt|priority|dueDate|title", ""},
	{"filter all|completed|pending", ""},
	{"category <name>|none", "filter by category"},
	{"tag <name>", "toggle a tag filter"},
	{"clear", "reset filters"},
	{"quit", ""},
}

// Model shows every key binding, the palette commands and a summary of
// what the list currently shows. It is read-only; the app closes it.
type Model struct {
	keys    *keys.KeyMap
	help    help.Model
	summary string
	width   int
	height  int
}

func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: k, help: h}
	m.SetSize(width, height)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(tea.Msg) (Model, tea.Cmd) { return m, nil }

// SetSummary sets the "Showing" line, typically the list's filter title.
func (m *Model) SetSummary(s string) {
	m.summary = s
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

func (m Model) View() string {
	sections := []string{
		theme.PanelTitleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		theme.LabelStyle.Render("History") + "  [ newer · ] older",
		"",
		theme.PanelTitleStyle.Render("Commands"),
		renderPalette(),
	}
	if m.summary != "" {
		sections = append(sections, "", theme.LabelStyle.Render("Showing")+"  "+m.summary)
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderPalette() string {
	col := 0
	for _, e := range palette {
		if e.desc != "" {
			col = max(col, len(e.usage))
		}
	}
	usage := lipgloss.NewStyle().Width(col + 2)

	var b strings.Builder
	for i, e := range palette {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := ": " + e.usage
		if e.desc != "" {
			line = ": " + usage.Render(e.usage) + e.desc
		}
		b.WriteString(line)
	}
	return theme.DimmedStyle.Render(b.String())
}
