package itemform

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/keys"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/theme"
)

// SubmittedMsg is dispatched when the form is completed. ID is zero for a
// new item.
type SubmittedMsg struct {
	ID   int64
	Item *model.Item
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	content     string
	kind        model.Kind
	categoryID  string
	priority    model.Priority
	dueDate     string
	tags        string
	entries     string
	completed   bool
	customColor string
}

// Model is the Bubble Tea model for the item create/edit form.
type Model struct {
	form          *huh.Form
	fb            *formBindings
	editMode      bool
	editID        int64
	categories    []*model.Category
	availableTags []string
	width         int
	height        int
}

// New creates a new item form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{kind: model.KindMemo, priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetOptions sets the categories offered by the form and the existing tags
// listed as suggestions.
func (m *Model) SetOptions(categories []*model.Category, tags []string) {
	m.categories = categories
	m.availableTags = tags
}

// StartCreate initializes the form for creating a new item.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	*m.fb = formBindings{kind: model.KindMemo, priority: model.PriorityMedium}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing item.
func (m *Model) StartEdit(item *model.Item) tea.Cmd {
	m.editMode = true
	m.editID = item.ID
	*m.fb = formBindings{
		title:       item.Title,
		content:     item.Content,
		kind:        item.Kind(),
		priority:    item.Priority,
		dueDate:     item.DueDate,
		tags:        strings.Join(item.Tags, ", "),
		entries:     FormatEntries(item.Body),
		completed:   item.Completed,
		customColor: item.CustomColor,
	}
	if item.CategoryID != nil {
		m.fb.categoryID = strconv.FormatInt(*item.CategoryID, 10)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the item form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the item form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.editMode {
		titleText = "Edit Todo"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Content").
			Placeholder("Optional details...").
			Value(&m.fb.content),
		huh.NewSelect[model.Kind]().
			Title("Type").
			Options(
				huh.NewOption("Memo", model.KindMemo),
				huh.NewOption("List", model.KindList),
				huh.NewOption("Checklist", model.KindChecklist),
			).
			Value(&m.fb.kind),
		m.categoryField(),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		m.tagsField(),
		huh.NewInput().
			Title("Color").
			Placeholder("#RRGGBB (optional)").
			Value(&m.fb.customColor).
			Validate(validateOptionalColor),
	}
	if m.editMode {
		fields = append(fields,
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Done").
				Negative("Open").
				Value(&m.fb.completed),
		)
	}

	fb := m.fb
	entries := huh.NewGroup(
		huh.NewText().
			Title("Entries").
			Description("One per line. Prefix a checklist entry with [x] to mark it done.").
			Value(&m.fb.entries),
	).WithHideFunc(func() bool { return fb.kind == model.KindMemo })

	return huh.NewForm(
		huh.NewGroup(fields...),
		entries,
	).WithKeyMap(keys.FormKeyMap()).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) categoryField() huh.Field {
	opts := []huh.Option[string]{
		huh.NewOption("None", ""),
	}
	for _, c := range m.categories {
		opts = append(opts, huh.NewOption(c.Name, strconv.FormatInt(c.ID, 10)))
	}
	return huh.NewSelect[string]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.categoryID)
}

func (m *Model) tagsField() huh.Field {
	in := huh.NewInput().
		Title("Tags").
		Placeholder("comma separated").
		Value(&m.fb.tags)
	if len(m.availableTags) > 0 {
		in = in.Description("In use: " + strings.Join(m.availableTags, ", "))
	}
	return in
}

func (m Model) handleSubmit() tea.Cmd {
	item := m.fb.item()
	id := m.editID
	return func() tea.Msg { return SubmittedMsg{ID: id, Item: item} }
}

// item builds the edited item from the bound values.
func (fb *formBindings) item() *model.Item {
	item := &model.Item{
		Title:       strings.TrimSpace(fb.title),
		Content:     fb.content,
		Priority:    fb.priority,
		DueDate:     strings.TrimSpace(fb.dueDate),
		Tags:        ParseTags(fb.tags),
		Completed:   fb.completed,
		CustomColor: strings.TrimSpace(fb.customColor),
		Body:        ParseEntries(fb.kind, fb.entries),
	}
	if id, err := strconv.ParseInt(fb.categoryID, 10, 64); err == nil {
		item.CategoryID = &id
	}
	return item
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
