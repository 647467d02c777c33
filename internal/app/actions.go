package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
)

// categoriesLoadedMsg carries the category list used for names and filters.
type categoriesLoadedMsg struct {
	categories []*model.Category
	err        error
}

// formOptionsMsg carries categories and tags for the item form. edit is nil
// when creating.
type formOptionsMsg struct {
	categories []*model.Category
	tags       []string
	edit       *model.Item
	err        error
}

// itemChangedMsg is sent after an item was written. item may be set together
// with err when the write succeeded but its snapshot did not.
type itemChangedMsg struct {
	action string
	done   string
	item   *model.Item
	err    error
}

// itemDeletedMsg is sent after an item was deleted.
type itemDeletedMsg struct{ err error }

// configSavedMsg is sent after display preferences were written.
type configSavedMsg struct{ err error }

func (m Model) loadCategories() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		cats, err := svc.Categories(context.Background())
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

// loadFormOptions fetches categories and tags, then opens the form. The
// item to edit is re-read so the form starts from the stored state.
func (m Model) loadFormOptions(edit *model.Item) tea.Cmd {
	svc := m.svc
	var editID int64
	if edit != nil {
		editID = edit.ID
	}
	return func() tea.Msg {
		ctx := context.Background()
		cats, err := svc.Categories(ctx)
		if err != nil {
			return formOptionsMsg{err: err}
		}
		tags, err := svc.AvailableTags(ctx)
		if err != nil {
			return formOptionsMsg{err: err}
		}
		msg := formOptionsMsg{categories: cats, tags: tags}
		if editID != 0 {
			item, err := svc.Item(ctx, editID)
			if err != nil {
				return formOptionsMsg{err: err}
			}
			msg.edit = item
		}
		return msg
	}
}

func (m Model) createItem(in *model.Item) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		item, err := svc.CreateItem(context.Background(), in)
		return itemChangedMsg{action: "Create", done: "Created", item: item, err: err}
	}
}

func (m Model) updateItem(id int64, in *model.Item) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		item, err := svc.UpdateItem(context.Background(), id, in)
		return itemChangedMsg{action: "Save", done: "Saved", item: item, err: err}
	}
}

func (m Model) toggleItem(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		item, err := svc.ToggleComplete(context.Background(), id)
		done := "Marked pending"
		if item != nil && item.Completed {
			done = "Marked done"
		}
		return itemChangedMsg{action: "Toggle", done: done, item: item, err: err}
	}
}

func (m Model) duplicateItem(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		item, err := svc.DuplicateItem(context.Background(), id)
		return itemChangedMsg{action: "Duplicate", done: "Duplicated", item: item, err: err}
	}
}

func (m Model) deleteItem(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return itemDeletedMsg{err: svc.DeleteItem(context.Background(), id)}
	}
}

func (m Model) restoreItem(id, versionID int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		item, err := svc.RestoreItem(context.Background(), id, versionID)
		return itemChangedMsg{action: "Restore", done: "Restored", item: item, err: err}
	}
}

// handleItemChanged reports the outcome and reloads the views showing the
// item.
func (m *Model) handleItemChanged(msg itemChangedMsg) tea.Cmd {
	switch {
	case msg.err != nil && msg.item != nil:
		m.status = msg.done + ", but its history could not be recorded"
		m.statusErr = true
	case msg.err != nil:
		m.setError(msg.action, msg.err)
		return nil
	default:
		m.setStatus(msg.done + " " + quoteTitle(msg.item))
	}

	cmds := []tea.Cmd{m.itemList.LoadItems()}
	if m.currentView == ViewDetail && msg.item != nil {
		if cur := m.detail.Item(); cur != nil && cur.ID == msg.item.ID {
			cmds = append(cmds, m.detail.Load(msg.item.ID))
		}
	}
	return tea.Batch(cmds...)
}

// toggleDarkMode flips the color scheme and persists the choice.
func (m *Model) toggleDarkMode() tea.Cmd {
	m.cfg.Display.DarkMode = !m.cfg.Display.DarkMode
	lipgloss.SetHasDarkBackground(m.cfg.Display.DarkMode)
	if m.cfg.Display.DarkMode {
		m.setStatus("Dark mode on")
	} else {
		m.setStatus("Dark mode off")
	}

	if m.configPath == "" {
		return nil
	}
	path := m.configPath
	cfg := *m.cfg
	return func() tea.Msg {
		return configSavedMsg{err: model.SaveConfig(path, &cfg)}
	}
}

func quoteTitle(item *model.Item) string {
	if item == nil {
		return ""
	}
	return "“" + item.Title + "”"
}

// errorText turns an error into a status line for action.
func errorText(action string, err error) string {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return action + " failed: " + err.Error()
	}
	switch ae.Code {
	case apperr.ErrNotFound:
		return action + " failed: the todo no longer exists"
	case apperr.ErrDuplicateKey:
		return action + " failed: the name is already taken"
	case apperr.ErrValidation, apperr.ErrInvalid:
		return action + " failed: " + ae.Message
	case apperr.ErrStorageUnavailable:
		return action + " failed: storage is unavailable"
	default:
		return action + " failed: " + err.Error()
	}
}
