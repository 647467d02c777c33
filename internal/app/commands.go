package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/ui/command"
)

// executeCommand runs a parsed command from the command palette. Filter and
// sort commands apply to the item list and switch to it.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Name {
	case command.Quit:
		return tea.Quit

	case command.NewItem:
		return m.openForm(nil)

	case command.Categories:
		return m.openCategories()

	case command.Sort:
		m.itemList.SetSortKey(query.SortKey(c.Arg))

	case command.Filter:
		m.itemList.SetCompletion(query.Completion(c.Arg))

	case command.Category:
		if c.Arg == "none" {
			m.itemList.SetCategory(nil)
			break
		}
		id, ok := m.categoryID(c.Arg)
		if !ok {
			m.status = "No category named “" + c.Arg + "”"
			m.statusErr = true
			return nil
		}
		m.itemList.SetCategory(&id)

	case command.Tag:
		m.itemList.ToggleTag(c.Arg)

	case command.Clear:
		m.itemList.ClearFilters()

	default:
		return nil
	}

	m.currentView = ViewList
	return m.itemList.LoadItems()
}

// categoryID finds a category by name, ignoring case.
func (m Model) categoryID(name string) (int64, bool) {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return c.ID, true
		}
	}
	return 0, false
}
