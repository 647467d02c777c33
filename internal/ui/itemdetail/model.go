package itemdetail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/theme"
)

// Loader fetches an item and its history.
type Loader interface {
	Item(ctx context.Context, id int64) (*model.Item, error)
	Versions(ctx context.Context, id int64) ([]*model.Version, error)
}

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// LoadedMsg carries the loaded item and its versions, newest first.
type LoadedMsg struct {
	Item     *model.Item
	Versions []*model.Version
	Err      error
}

// RestoreRequestMsg asks the parent to confirm and perform a restore.
type RestoreRequestMsg struct {
	ItemID        int64
	VersionID     int64
	VersionNumber int
}

var (
	prevVersion = key.NewBinding(key.WithKeys("["), key.WithHelp("[", "newer version"))
	nextVersion = key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "older version"))
)

// Model is the item detail view: fields plus version history.
type Model struct {
	item       *model.Item
	versions   []*model.Version
	categories []*model.Category
	cursor     int
	compare    bool
	viewport   viewport.Model
	loader     Loader
	keys       *keys.KeyMap
	width      int
	height     int
	loading    bool
}

// New creates a new detail view model.
func New(l Loader, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		loader:   l,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Load returns a command fetching item id and its versions.
func (m Model) Load(id int64) tea.Cmd {
	l := m.loader
	return func() tea.Msg {
		ctx := context.Background()
		item, err := l.Item(ctx, id)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		versions, err := l.Versions(ctx, id)
		return LoadedMsg{Item: item, Versions: versions, Err: err}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m, nil
		}
		m.item = msg.Item
		m.versions = msg.Versions
		if m.cursor >= len(m.versions) {
			m.cursor = 0
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			if m.compare {
				m.compare = false
				m.refresh()
				return m, nil
			}
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, prevVersion):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, nextVersion):
			if m.cursor < len(m.versions)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Compare):
			if len(m.versions) > 0 {
				m.compare = !m.compare
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Restore):
			v := m.SelectedVersion()
			if m.item == nil || v == nil {
				return m, nil
			}
			req := RestoreRequestMsg{ItemID: m.item.ID, VersionID: v.ID, VersionNumber: v.VersionNumber}
			return m, func() tea.Msg { return req }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		return m.centered("Loading...")
	}
	if m.item == nil {
		return m.centered("No todo selected")
	}
	return m.viewport.View()
}

func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// Item returns the displayed item.
func (m Model) Item() *model.Item {
	return m.item
}

// SelectedVersion returns the version under the history cursor.
func (m Model) SelectedVersion() *model.Version {
	if m.cursor < 0 || m.cursor >= len(m.versions) {
		return nil
	}
	return m.versions[m.cursor]
}

// SetCategories updates the names used to label category references.
func (m *Model) SetCategories(categories []*model.Category) {
	m.categories = categories
	m.refresh()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Reset clears the displayed item.
func (m *Model) Reset() {
	m.item = nil
	m.versions = nil
	m.cursor = 0
	m.compare = false
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.item == nil {
		return ""
	}
	item := m.item
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	if item.CustomColor != "" {
		titleStyle = theme.AccentStyle(item.CustomColor).Bold(true)
	}
	sections = append(sections, titleStyle.Render(item.Title))

	state := "open"
	if item.Completed {
		state = "done"
	}
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.KindLabelStyle(item.Kind()).Render(strings.ToUpper(string(item.Kind()))),
		"  ",
		theme.PriorityStyle(item.Priority).Render(string(item.Priority)),
		"  ",
		theme.DimmedStyle.Render(state),
	)
	sections = append(sections, badgeLine, "")

	meta := func(label, value string) {
		if value != "" {
			sections = append(sections, fmt.Sprintf("%s %s", theme.LabelStyle.Render(fmt.Sprintf("%-9s", label+":")), value))
		}
	}
	meta("Category", categoryLabel(m.categories, item.CategoryID))
	due := item.DueDate
	if item.IsOverdue(time.Now()) {
		due = theme.OverdueStyle.Render(due + " (overdue)")
	}
	meta("Due", due)
	if len(item.Tags) > 0 {
		meta("Tags", theme.TagStyle.Render("#"+strings.Join(item.Tags, " #")))
	}
	meta("Color", item.CustomColor)
	if !item.CreatedAt.IsZero() {
		meta("Created", item.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !item.UpdatedAt.IsZero() {
		meta("Updated", item.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
	sections = append(sections, "", separator, "")

	if item.Content != "" {
		sections = append(sections, item.Content, "")
	}
	sections = append(sections, renderBody(item)...)
	if item.Content == "" && item.Kind() == model.KindMemo {
		sections = append(sections, theme.DimmedStyle.Italic(true).Render("No content"))
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, m.renderHistory()...)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderBody(item *model.Item) []string {
	var lines []string
	switch b := item.Body.(type) {
	case model.List:
		for _, e := range b.Items {
			lines = append(lines, "• "+e)
		}
	case model.Checklist:
		for _, e := range b.Items {
			if e.Completed {
				lines = append(lines, "[x] "+theme.CompletedStyle.Render(e.Text))
			} else {
				lines = append(lines, "[ ] "+e.Text)
			}
		}
	case model.Memo, nil:
	}
	return lines
}

func (m Model) renderHistory() []string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	lines := []string{header.Render(fmt.Sprintf("History (%d)", len(m.versions)))}
	if len(m.versions) == 0 {
		return append(lines, theme.DimmedStyle.Render("No versions recorded"))
	}

	for i, v := range m.versions {
		line := fmt.Sprintf("v%-3d %s  %s", v.VersionNumber,
			v.CreatedAt.Local().Format("2006-01-02 15:04:05"), v.Data.Title)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}
	lines = append(lines, "", theme.HelpStyle.Render("[ ] select · v compare · R restore"))

	if m.compare {
		lines = append(lines, "")
		lines = append(lines, m.renderComparison()...)
	}
	return lines
}

func (m Model) renderComparison() []string {
	v := m.SelectedVersion()
	if v == nil {
		return nil
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	lines := []string{header.Render(fmt.Sprintf("v%d → current", v.VersionNumber))}

	changes := Diff(&v.Data, m.item, m.categories)
	if len(changes) == 0 {
		return append(lines, theme.DimmedStyle.Render("Identical to the current todo"))
	}
	for _, c := range changes {
		lines = append(lines, fmt.Sprintf("%s %s → %s",
			theme.LabelStyle.Render(c.Field+":"),
			theme.DimmedStyle.Render(orNone(c.From)),
			orNone(c.To)))
	}
	return lines
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
