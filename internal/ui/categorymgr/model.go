package categorymgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/theme"
)

// Service is the category API the manager drives.
type Service interface {
	Categories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CloseMsg signals the parent to close the category view.
type CloseMsg struct{}

// ChangedMsg signals that categories were modified.
type ChangedMsg struct {
	Categories []*model.Category
}

// SelectedMsg asks the parent to filter the item list by a category.
type SelectedMsg struct {
	ID int64
}

type mode int

const (
	modeList mode = iota
	modeName
	modeConfirmDelete
)

// formBindings is shared by pointer so huh field values survive model copies.
type formBindings struct {
	name    string
	confirm bool
}

type loadedMsg struct {
	categories []*model.Category
	err        error
}

type savedMsg struct {
	name string
	err  error
}

type deletedMsg struct{ err error }

// Model lists categories and creates, renames or deletes them through
// huh forms. Selecting one asks the app to filter by it.
type Model struct {
	mode       mode
	svc        Service
	keys       *keys.KeyMap
	categories []*model.Category
	cursor     int
	editingID  int64
	form       *huh.Form
	fb         *formBindings
	statusMsg  string
	width      int
	height     int
}

func New(svc Service, k *keys.KeyMap, width, height int) Model {
	return Model{
		svc:    svc,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = "Error: " + msg.err.Error()
			return m, nil
		}
		m.categories = msg.categories
		m.cursor = min(m.cursor, max(len(m.categories)-1, 0))
		cats := m.categories
		return m, func() tea.Msg { return ChangedMsg{Categories: cats} }

	case savedMsg:
		m.mode = modeList
		m.statusMsg = saveStatus(msg)
		return m, m.load()

	case deletedMsg:
		m.mode = modeList
		m.statusMsg = "Category deleted"
		if msg.err != nil {
			m.statusMsg = "Error: " + msg.err.Error()
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	if m.mode == modeList {
		return m, nil
	}
	return m.updateForm(msg)
}

func saveStatus(msg savedMsg) string {
	switch {
	case apperr.Is(msg.err, apperr.ErrDuplicateKey):
		return fmt.Sprintf("A category named %q already exists", msg.name)
	case msg.err != nil:
		return "Error: " + msg.err.Error()
	}
	return "Category saved"
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.New):
		return m.openForm(modeName, 0, "")
	}

	c := m.selected()
	if c == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Select):
		id := c.ID
		return m, func() tea.Msg { return SelectedMsg{ID: id} }
	case key.Matches(msg, m.keys.Edit):
		return m.openForm(modeName, c.ID, c.Name)
	case key.Matches(msg, m.keys.Delete):
		return m.openForm(modeConfirmDelete, c.ID, c.Name)
	}
	return m, nil
}

// move shifts the cursor by delta, wrapping at both ends.
func (m *Model) move(delta int) {
	n := len(m.categories)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m Model) selected() *model.Category {
	if m.cursor < 0 || m.cursor >= len(m.categories) {
		return nil
	}
	return m.categories[m.cursor]
}

func (m Model) openForm(md mode, id int64, name string) (Model, tea.Cmd) {
	m.mode = md
	m.editingID = id
	m.fb.name = name
	m.fb.confirm = false

	var field huh.Field
	if md == modeConfirmDelete {
		field = huh.NewConfirm().
			Title(fmt.Sprintf("Delete category %q?", name)).
			Description("Todos in this category are kept.").
			Affirmative("Yes, delete").
			Negative("Cancel").
			Value(&m.fb.confirm)
	} else {
		title := "New category"
		if id != 0 {
			title = "Rename category"
		}
		field = huh.NewInput().
			Title(title).
			Placeholder("Category name").
			Value(&m.fb.name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			})
	}

	m.form = huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(keys.FormKeyMap()).
		WithWidth(min(max(m.width-4, 40), 100)).
		WithHeight(max(m.height-4, 10))
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	case huh.StateCompleted:
		if m.mode == modeName {
			return m, m.save()
		}
		if m.fb.confirm {
			return m, m.delete(m.editingID)
		}
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	lines := []string{theme.PanelTitleStyle.Render("Categories")}
	if len(m.categories) == 0 {
		lines = append(lines, theme.HelpStyle.Render("No categories yet. Press 'n' to create one."))
	}
	for i, c := range m.categories {
		row := theme.ListItemStyle
		if i == m.cursor {
			row = theme.SelectedItemStyle
		}
		lines = append(lines, row.Render("@ "+c.Name))
	}
	if m.statusMsg != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	lines = append(lines, "", theme.DimmedStyle.Render("enter filter | n new | e rename | d delete | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		cats, err := svc.Categories(context.Background())
		return loadedMsg{categories: cats, err: err}
	}
}

func (m Model) save() tea.Cmd {
	svc := m.svc
	name := strings.TrimSpace(m.fb.name)
	id := m.editingID
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if id == 0 {
			_, err = svc.CreateCategory(ctx, name)
		} else {
			_, err = svc.RenameCategory(ctx, id, name)
		}
		return savedMsg{name: name, err: err}
	}
}

func (m Model) delete(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return deletedMsg{err: svc.DeleteCategory(context.Background(), id)}
	}
}
