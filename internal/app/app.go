package app

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/ui"
	"github.com/nhle/todokeeper/internal/ui/categorymgr"
	"github.com/nhle/todokeeper/internal/ui/command"
	helpview "github.com/nhle/todokeeper/internal/ui/help"
	"github.com/nhle/todokeeper/internal/ui/itemdetail"
	"github.com/nhle/todokeeper/internal/ui/itemform"
	"github.com/nhle/todokeeper/internal/ui/itemlist"
)

// Service is everything the UI needs from the item and category layer.
type Service interface {
	itemlist.Loader
	itemdetail.Loader
	categorymgr.Service

	AvailableTags(ctx context.Context) ([]string, error)
	CreateItem(ctx context.Context, in *model.Item) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, in *model.Item) (*model.Item, error)
	ToggleComplete(ctx context.Context, id int64) (*model.Item, error)
	DuplicateItem(ctx context.Context, id int64) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	RestoreItem(ctx context.Context, id, versionID int64) (*model.Item, error)
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewCategories
	ViewHelp
	ViewCommand
	ViewConfirm
)

// Model is the root Bubble Tea model that manages view routing, layout and
// calls into the service layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          Service
	cfg          *model.AppConfig
	configPath   string
	logger       *log.Logger
	keys         *keys.KeyMap

	itemList     itemlist.Model
	detail       itemdetail.Model
	form         itemform.Model
	categoryView categorymgr.Model
	helpView     helpview.Model
	commandView  command.Model

	confirm    *confirmation
	categories []*model.Category
	itemCount  int
	status     string
	statusErr  bool
	ready      bool
}

// Option configures the root model.
type Option func(*Model)

// WithConfigPath sets where display preferences are saved. Without it the
// dark-mode toggle is not persisted.
func WithConfigPath(path string) Option {
	return func(m *Model) { m.configPath = path }
}

// WithLogger sets the logger for UI-level failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates the root application model over svc. The display section of
// cfg supplies the initial sort, completion filter and color scheme.
func New(svc Service, cfg *model.AppConfig, opts ...Option) Model {
	k := keys.DefaultKeyMap()
	if cfg == nil {
		cfg = &model.AppConfig{}
	}

	m := Model{
		currentView:  ViewList,
		svc:          svc,
		cfg:          cfg,
		logger:       log.New(io.Discard),
		keys:         k,
		itemList:     itemlist.New(svc, k, 80, 24),
		detail:       itemdetail.New(svc, k, 80, 24),
		form:         itemform.New(80, 24),
		categoryView: categorymgr.New(svc, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
	}
	for _, opt := range opts {
		opt(&m)
	}

	if sk, err := query.ParseSortKey(cfg.Display.DefaultSort); err == nil {
		m.itemList.SetSortKey(sk)
	} else {
		m.logger.Warn("ignoring display.default_sort", "err", err)
	}
	if c, err := query.ParseCompletion(cfg.Display.DefaultFilter); err == nil {
		m.itemList.SetCompletion(c)
	} else {
		m.logger.Warn("ignoring display.default_filter", "err", err)
	}
	lipgloss.SetHasDarkBackground(cfg.Display.DarkMode)

	return m
}

// Init loads categories and the initial item list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCategories(),
		m.itemList.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.itemList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.categoryView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case itemlist.ItemsLoadedMsg:
		if msg.Err != nil {
			m.setError("Loading todos", msg.Err)
		} else {
			m.itemCount = len(msg.Items)
		}
		var cmd tea.Cmd
		m.itemList, cmd = m.itemList.Update(msg)
		return m, cmd

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.setError("Loading categories", msg.err)
			return m, nil
		}
		m.setCategories(msg.categories)
		return m, nil

	case itemlist.SelectedItemMsg:
		cmd := m.openDetail(msg.ID)
		return m, cmd

	case itemdetail.LoadedMsg:
		if msg.Err != nil {
			m.setError("Loading todo", msg.Err)
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case itemdetail.BackMsg:
		m.currentView = ViewList
		return m, m.itemList.LoadItems()

	case itemdetail.RestoreRequestMsg:
		cmd := m.askConfirm(
			fmt.Sprintf("Restore version %d?", msg.VersionNumber),
			"The todo is overwritten with this version. No new version is recorded.",
			m.restoreItem(msg.ItemID, msg.VersionID),
		)
		return m, cmd

	case formOptionsMsg:
		if msg.err != nil {
			m.setError("Opening form", msg.err)
			m.currentView = m.previousView
			return m, nil
		}
		m.form.SetOptions(msg.categories, msg.tags)
		var cmd tea.Cmd
		if msg.edit != nil {
			cmd = m.form.StartEdit(msg.edit)
		} else {
			cmd = m.form.StartCreate()
		}
		return m, cmd

	case itemform.SubmittedMsg:
		m.currentView = m.previousView
		if msg.ID == 0 {
			return m, m.createItem(msg.Item)
		}
		return m, m.updateItem(msg.ID, msg.Item)

	case itemform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case itemChangedMsg:
		cmd := m.handleItemChanged(msg)
		return m, cmd

	case itemDeletedMsg:
		if msg.err != nil {
			m.setError("Delete", msg.err)
			return m, nil
		}
		m.setStatus("Deleted")
		if m.currentView == ViewDetail {
			m.currentView = ViewList
		}
		return m, m.itemList.LoadItems()

	case categorymgr.CloseMsg:
		m.currentView = ViewList
		return m, m.itemList.LoadItems()

	case categorymgr.ChangedMsg:
		m.setCategories(msg.Categories)
		return m, m.itemList.LoadItems()

	case categorymgr.SelectedMsg:
		id := msg.ID
		m.itemList.SetCategory(&id)
		m.currentView = ViewList
		return m, m.itemList.LoadItems()

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg.Command)
		return m, cmd

	case configSavedMsg:
		if msg.err != nil {
			m.setError("Saving preferences", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.clearStatus()
		if handled, next, cmd := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that act across views. Views with text
// entry only see ctrl+c from here.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
			return true, m, nil
		}
		return true, m, nil

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case ViewConfirm:
		if key.Matches(msg, m.keys.Back) {
			m.confirm = nil
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case ViewList:
		if m.itemList.SearchMode() {
			return false, m, nil
		}
		return m.handleListKey(msg)

	case ViewDetail:
		return m.handleDetailKey(msg)
	}
	return false, m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return true, m, nil

	case key.Matches(msg, m.keys.Command):
		cmd := m.openCommand()
		return true, m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return true, m, tea.Batch(m.loadCategories(), m.itemList.LoadItems())

	case key.Matches(msg, m.keys.New):
		cmd := m.openForm(nil)
		return true, m, cmd

	case key.Matches(msg, m.keys.Categories):
		cmd := m.openCategories()
		return true, m, cmd

	case key.Matches(msg, m.keys.DarkMode):
		cmd := m.toggleDarkMode()
		return true, m, cmd
	}

	item, ok := m.itemList.SelectedItem()
	if !ok {
		return false, m, nil
	}
	return m.handleItemKey(msg, item)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return true, m, nil

	case key.Matches(msg, m.keys.Command):
		cmd := m.openCommand()
		return true, m, cmd
	}

	item := m.detail.Item()
	if item == nil {
		return false, m, nil
	}
	return m.handleItemKey(msg, item)
}

// handleItemKey runs the per-item actions shared by the list and detail views.
func (m Model) handleItemKey(msg tea.KeyMsg, item *model.Item) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		cmd := m.openForm(item)
		return true, m, cmd

	case key.Matches(msg, m.keys.Toggle):
		return true, m, m.toggleItem(item.ID)

	case key.Matches(msg, m.keys.Duplicate):
		return true, m, m.duplicateItem(item.ID)

	case key.Matches(msg, m.keys.Delete):
		cmd := m.askConfirm(
			fmt.Sprintf("Delete %q?", item.Title),
			"Its version history is kept but no longer reachable.",
			m.deleteItem(item.ID),
		)
		return true, m, cmd
	}
	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.itemList, cmd = m.itemList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewCategories:
		m.categoryView, cmd = m.categoryView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewConfirm:
		return m.updateConfirm(msg)
	}

	return m, cmd
}

func (m *Model) navigate(v ViewState) {
	if m.currentView != v {
		m.previousView = m.currentView
	}
	m.currentView = v
}

func (m *Model) openDetail(id int64) tea.Cmd {
	m.navigate(ViewDetail)
	m.detail.Reset()
	m.detail.SetCategories(m.categories)
	m.detail.SetLoading(true)
	return m.detail.Load(id)
}

func (m *Model) openForm(edit *model.Item) tea.Cmd {
	m.navigate(ViewForm)
	return m.loadFormOptions(edit)
}

func (m *Model) openCategories() tea.Cmd {
	m.navigate(ViewCategories)
	return m.categoryView.Init()
}

func (m *Model) openHelp() {
	m.helpView.SetSummary(m.filterSummary())
	m.navigate(ViewHelp)
}

func (m *Model) openCommand() tea.Cmd {
	m.navigate(ViewCommand)
	return m.commandView.Focus()
}

func (m *Model) setCategories(categories []*model.Category) {
	m.categories = categories
	m.itemList.SetCategories(categories)
	m.detail.SetCategories(categories)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("todokeeper", m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.status, m.statusErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.itemList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewCategories:
		return m.categoryView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

func (m Model) headerStatus() string {
	mode := "light"
	if m.cfg.Display.DarkMode {
		mode = "dark"
	}
	noun := "todos"
	if m.itemCount == 1 {
		noun = "todo"
	}
	return fmt.Sprintf("%d %s · %s", m.itemCount, noun, mode)
}

func (m Model) filterSummary() string {
	c := m.itemList.Criteria()
	s := fmt.Sprintf("%s, sorted by %s", c.Completion, m.itemList.SortKey())
	if c.CategoryID != nil {
		name := model.CategoryName(m.categories, c.CategoryID)
		if name == "" {
			name = fmt.Sprintf("#%d", *c.CategoryID)
		}
		s += ", in " + name
	}
	for _, t := range c.Tags {
		s += ", #" + t
	}
	if c.Search != "" {
		s += fmt.Sprintf(", matching %q", c.Search)
	}
	return s
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | x toggle | [ ] version | v compare | R restore"
	case ViewForm:
		return "enter next | esc cancel"
	case ViewCategories:
		return "n new | e rename | d delete | enter filter | esc back"
	case ViewConfirm:
		return "←/→ choose | enter confirm | esc cancel"
	default:
		if m.itemList.SearchMode() {
			return "enter apply | esc clear search"
		}
		return "q quit | ? help | n new | / search | f filter | tab sort | c categories"
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(action string, err error) {
	m.logger.Error(action, "err", err)
	m.status = errorText(action, err)
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// confirmation is a pending yes/no question guarding a destructive action.
type confirmation struct {
	form   *huh.Form
	ok     bool
	action tea.Cmd
}

func (m *Model) askConfirm(title, description string, action tea.Cmd) tea.Cmd {
	c := &confirmation{action: action}
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("Cancel").
				Value(&c.ok),
		),
	).WithKeyMap(keys.FormKeyMap()).WithWidth(max(m.layout.ContentWidth()-4, 40))
	m.confirm = c
	m.navigate(ViewConfirm)
	return c.form.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	c := m.confirm
	if c == nil {
		m.currentView = m.previousView
		return m, nil
	}

	mdl, cmd := c.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		c.form = f
	}

	switch c.form.State {
	case huh.StateCompleted:
		m.confirm = nil
		m.currentView = m.previousView
		if c.ok {
			return m, c.action
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		m.currentView = m.previousView
		return m, nil
	}
	return m, cmd
}

func (m Model) viewConfirm() string {
	if m.confirm == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.form.View())
}
