package itemlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/theme"
)

// Loader returns the filtered, sorted item list.
type Loader interface {
	Items(ctx context.Context, c query.Criteria, key query.SortKey) ([]*model.Item, error)
}

// ItemsLoadedMsg is sent when items have been loaded from the store.
type ItemsLoadedMsg struct {
	Items []*model.Item
	Err   error
}

// SelectedItemMsg is sent when a user selects an item to view details.
type SelectedItemMsg struct {
	ID int64
}

// Model is the main item list view component.
type Model struct {
	list        list.Model
	loader      Loader
	keys        *keys.KeyMap
	delegate    *ItemDelegate
	criteria    query.Criteria
	sortKey     query.SortKey
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new item list model.
func New(l Loader, k *keys.KeyMap, width, height int) Model {
	delegate := NewItemDelegate()
	lm := list.New([]list.Item{}, delegate, width, height-2)
	lm.Title = "Todos"
	lm.SetShowStatusBar(true)
	lm.SetShowHelp(false)
	lm.SetFilteringEnabled(false)
	lm.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title, content, tags, entries..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        lm,
		loader:      l,
		keys:        k,
		delegate:    delegate,
		criteria:    query.Criteria{Completion: query.All},
		sortKey:     query.ByCreatedAt,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of items.
func (m Model) Init() tea.Cmd {
	return m.LoadItems()
}

// Update handles messages for the item list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Items))
		for i, it := range msg.Items {
			items[i] = Item{Item: it}
		}
		cmd := m.list.SetItems(items)
		m.list.Title = m.title()
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.criteria.Search = strings.TrimSpace(m.searchInput.Value())
		return m, m.LoadItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.criteria.Search = ""
		return m, m.LoadItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		it, ok := m.SelectedItem()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedItemMsg{ID: it.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.criteria.Search)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleFilter):
		m.criteria.Completion = m.criteria.Completion.Next()
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortKey = m.sortKey.Next()
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.ClearFilter):
		m.ClearFilters()
		return m, m.LoadItems()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SearchMode reports whether the search input has focus.
func (m Model) SearchMode() bool {
	return m.searchMode
}

// SelectedItem returns the item under the cursor.
func (m Model) SelectedItem() (*model.Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return nil, false
	}
	return it.Item, true
}

// Criteria returns the active filter.
func (m Model) Criteria() query.Criteria {
	return m.criteria
}

// SortKey returns the active ordering.
func (m Model) SortKey() query.SortKey {
	return m.sortKey
}

// SetSortKey changes the ordering. The caller reloads.
func (m *Model) SetSortKey(k query.SortKey) {
	m.sortKey = k
}

// SetCompletion changes the completion filter. The caller reloads.
func (m *Model) SetCompletion(c query.Completion) {
	m.criteria.Completion = c
}

// SetCategory restricts the list to one category; nil shows all.
func (m *Model) SetCategory(id *int64) {
	m.criteria.CategoryID = id
}

// ToggleTag adds tag to the tag filter, or removes it when present.
func (m *Model) ToggleTag(tag string) {
	for i, t := range m.criteria.Tags {
		if t == tag {
			m.criteria.Tags = append(m.criteria.Tags[:i:i], m.criteria.Tags[i+1:]...)
			return
		}
	}
	m.criteria.Tags = append(m.criteria.Tags, tag)
}

// ClearFilters resets category, tags, completion and search.
func (m *Model) ClearFilters() {
	m.criteria = query.Criteria{Completion: query.All}
	m.searchInput.Reset()
}

// SetCategories updates the names shown next to items.
func (m *Model) SetCategories(categories []*model.Category) {
	m.delegate.categories = categories
}

// View renders the item list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

func (m Model) hasFilters() bool {
	c := m.criteria
	return c.CategoryID != nil || len(c.Tags) > 0 || c.Search != "" ||
		(c.Completion != "" && c.Completion != query.All)
}

// title summarises the active filter and ordering.
func (m Model) title() string {
	parts := []string{"Todos"}
	if c := m.criteria.Completion; c != "" && c != query.All {
		parts = append(parts, string(c))
	}
	if m.criteria.CategoryID != nil {
		name := model.CategoryName(m.delegate.categories, m.criteria.CategoryID)
		if name == "" {
			name = fmt.Sprintf("#%d", *m.criteria.CategoryID)
		}
		parts = append(parts, "in "+name)
	}
	if len(m.criteria.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(m.criteria.Tags, " #"))
	}
	if m.criteria.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", m.criteria.Search))
	}
	parts = append(parts, "by "+string(m.sortKey))
	return strings.Join(parts, " · ")
}

// renderEmptyState shows guidance text when no items are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.hasFilters() {
		return style.Render("No matching todos.\nPress backspace to clear filters.")
	}

	return style.Render("No todos yet.\n\nPress n to create one.")
}

// LoadItems returns a tea.Cmd that queries the store with the current filter.
func (m Model) LoadItems() tea.Cmd {
	c := m.criteria
	c.Tags = append([]string(nil), m.criteria.Tags...)
	sortKey := m.sortKey
	l := m.loader
	return func() tea.Msg {
		items, err := l.Items(context.Background(), c, sortKey)
		return ItemsLoadedMsg{Items: items, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
