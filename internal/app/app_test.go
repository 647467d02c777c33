package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/service"
	"github.com/nhle/todokeeper/internal/ui/command"
	"github.com/nhle/todokeeper/internal/ui/itemlist"
	"github.com/nhle/todokeeper/internal/version"
	"github.com/nhle/todokeeper/tests/testutil"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	st := testutil.NewTestStore(t)
	vm, err := version.NewManager(st)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return service.New(st, vm)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func press(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// withItems creates items through svc and loads them into the list.
func withItems(t *testing.T, svc *service.Service, titles ...string) Model {
	t.Helper()
	for _, title := range titles {
		if _, err := svc.CreateItem(context.Background(), &model.Item{Title: title}); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}
	m := New(svc, nil)
	m, _ = update(t, m, m.itemList.LoadItems()())
	return m
}

func TestNew_AppliesDisplayDefaults(t *testing.T) {
	cfg := &model.AppConfig{Display: model.DisplayConfig{DefaultSort: "priority", DefaultFilter: "pending"}}
	m := New(newService(t), cfg)

	if got := m.itemList.SortKey(); got != query.ByPriority {
		t.Errorf("sort = %q, want priority", got)
	}
	if got := m.itemList.Criteria().Completion; got != query.Pending {
		t.Errorf("completion = %q, want pending", got)
	}
}

func TestNew_IgnoresInvalidDisplayDefaults(t *testing.T) {
	cfg := &model.AppConfig{Display: model.DisplayConfig{DefaultSort: "size", DefaultFilter: "done"}}
	m := New(newService(t), cfg)

	if got := m.itemList.SortKey(); got != query.ByCreatedAt {
		t.Errorf("sort = %q, want createdAt", got)
	}
	if got := m.itemList.Criteria().Completion; got != query.All {
		t.Errorf("completion = %q, want all", got)
	}
}

func TestItemsLoadedUpdatesCount(t *testing.T) {
	m := withItems(t, newService(t), "a", "b")
	if m.itemCount != 2 {
		t.Errorf("itemCount = %d, want 2", m.itemCount)
	}
	if !strings.HasPrefix(m.headerStatus(), "2 todos") {
		t.Errorf("header status = %q", m.headerStatus())
	}
}

func TestCreateItemReportsStatus(t *testing.T) {
	svc := newService(t)
	m := New(svc, nil)

	m, cmd := update(t, m, m.createItem(&model.Item{Title: "Buy milk"})())
	if cmd == nil {
		t.Error("expected a reload after create")
	}
	if m.statusErr || !strings.Contains(m.status, "Buy milk") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}

	items, err := svc.Items(context.Background(), query.Criteria{}, query.ByCreatedAt)
	if err != nil || len(items) != 1 {
		t.Fatalf("items = %v, err = %v", items, err)
	}
}

func TestCreateInvalidItemReportsError(t *testing.T) {
	m := New(newService(t), nil)

	m, _ = update(t, m, m.createItem(&model.Item{Title: "   "})())
	if !m.statusErr || !strings.HasPrefix(m.status, "Create failed") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestToggleKey(t *testing.T) {
	svc := newService(t)
	m := withItems(t, svc, "Walk dog")

	m, cmd := press(t, m, 'x')
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	msg, ok := cmd().(itemChangedMsg)
	if !ok {
		t.Fatalf("msg = %T, want itemChangedMsg", cmd())
	}
	if msg.err != nil || msg.item == nil || !msg.item.Completed {
		t.Fatalf("toggle result = %+v", msg)
	}

	m, _ = update(t, m, msg)
	if !strings.HasPrefix(m.status, "Marked done") {
		t.Errorf("status = %q", m.status)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	svc := newService(t)
	m := withItems(t, svc, "Keep me")

	m, _ = press(t, m, 'd')
	if m.currentView != ViewConfirm || m.confirm == nil {
		t.Fatalf("view = %v, want confirm", m.currentView)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.currentView != ViewList || m.confirm != nil {
		t.Errorf("view = %v after cancel, want list", m.currentView)
	}

	items, _ := svc.Items(context.Background(), query.Criteria{}, query.ByCreatedAt)
	if len(items) != 1 {
		t.Errorf("cancelled delete removed the item")
	}
}

func TestDeletedItemLeavesDetail(t *testing.T) {
	svc := newService(t)
	m := withItems(t, svc, "Gone soon")
	item, _ := m.itemList.SelectedItem()

	m, _ = update(t, m, itemlist.SelectedItemMsg{ID: item.ID})
	if m.currentView != ViewDetail {
		t.Fatalf("view = %v, want detail", m.currentView)
	}

	m, _ = update(t, m, m.deleteItem(item.ID)())
	if m.currentView != ViewList || m.status != "Deleted" {
		t.Errorf("view = %v, status = %q", m.currentView, m.status)
	}
}

func TestExecuteCommand_Category(t *testing.T) {
	m := New(newService(t), nil)
	m.setCategories([]*model.Category{{ID: 4, Name: "Home"}})

	m.executeCommand(command.Command{Name: command.Category, Arg: "HOME"})
	if got := m.itemList.Criteria().CategoryID; got == nil || *got != 4 {
		t.Fatalf("category filter = %v, want 4", got)
	}

	m.executeCommand(command.Command{Name: command.Category, Arg: "none"})
	if got := m.itemList.Criteria().CategoryID; got != nil {
		t.Errorf("category filter = %v, want nil", *got)
	}

	m.executeCommand(command.Command{Name: command.Category, Arg: "Garden"})
	if !m.statusErr || !strings.Contains(m.status, "Garden") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestExecuteCommand_SortFilterTagClear(t *testing.T) {
	m := New(newService(t), nil)
	m.currentView = ViewHelp

	m.executeCommand(command.Command{Name: command.Sort, Arg: "title"})
	m.executeCommand(command.Command{Name: command.Filter, Arg: "completed"})
	m.executeCommand(command.Command{Name: command.Tag, Arg: "work"})

	if m.currentView != ViewList {
		t.Errorf("view = %v, want list", m.currentView)
	}
	if m.itemList.SortKey() != query.ByTitle {
		t.Errorf("sort = %q", m.itemList.SortKey())
	}
	c := m.itemList.Criteria()
	if c.Completion != query.Completed || len(c.Tags) != 1 || c.Tags[0] != "work" {
		t.Errorf("criteria = %+v", c)
	}

	m.executeCommand(command.Command{Name: command.Clear})
	c = m.itemList.Criteria()
	if c.Completion != query.All || len(c.Tags) != 0 {
		t.Errorf("criteria after clear = %+v", c)
	}
}

func TestDarkModeIsSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &model.AppConfig{Display: model.DisplayConfig{DefaultSort: "createdAt", DefaultFilter: "all"}}
	m := New(newService(t), cfg, WithConfigPath(path))

	m, cmd := press(t, m, 'm')
	if !m.cfg.Display.DarkMode {
		t.Fatal("dark mode not toggled")
	}
	if cmd == nil {
		t.Fatal("expected save command")
	}
	if msg := cmd().(configSavedMsg); msg.err != nil {
		t.Fatalf("saving config: %v", msg.err)
	}

	loaded, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !loaded.Display.DarkMode {
		t.Error("dark mode was not persisted")
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperr.New(apperr.ErrNotFound, "item 3"), "Restore failed: the todo no longer exists"},
		{apperr.New(apperr.ErrValidation, "Title failed notblank"), "Restore failed: Title failed notblank"},
		{apperr.New(apperr.ErrStorageUnavailable, "disk"), "Restore failed: storage is unavailable"},
	}
	for _, tt := range tests {
		if got := errorText("Restore", tt.err); got != tt.want {
			t.Errorf("errorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
