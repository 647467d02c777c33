package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func newItem(title string) *model.Item {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Item{
		Title:     title,
		Priority:  model.PriorityMedium,
		Body:      model.Memo{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := newItem("Buy milk")
	item.ID = 99
	id, err := s.Items().Create(ctx, item)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if item.ID != id {
		t.Errorf("item.ID = %d, want %d", item.ID, id)
	}

	got, err := s.Items().GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Buy milk" || got.ID != id || got.Kind() != model.KindMemo {
		t.Errorf("got %+v", got)
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Items().Create(ctx, newItem("one"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Items().Create(ctx, newItem("two"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second <= first {
		t.Fatalf("ids not increasing: %d then %d", first, second)
	}

	if err := s.Items().Delete(ctx, second); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	third, err := s.Items().Create(ctx, newItem("three"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if third <= second {
		t.Errorf("id %d reused after deleting %d", third, second)
	}
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item *model.Item
	}{
		{"blank title", func() *model.Item { i := newItem("   "); return i }()},
		{"bad priority", func() *model.Item { i := newItem("x"); i.Priority = "urgent"; return i }()},
		{"missing body", func() *model.Item { i := newItem("x"); i.Body = nil; return i }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Items().Create(ctx, tt.item)
			if !apperr.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want VALIDATION", err)
			}
		})
	}

	all, err := s.Items().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("invalid records were stored: %d", len(all))
	}
}

func TestCategoryNameUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Categories().Create(ctx, &model.Category{Name: "Work"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := s.Categories().Create(ctx, &model.Category{Name: "Work"})
	if !apperr.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("err = %v, want DUPLICATE_KEY", err)
	}

	home := &model.Category{Name: "Home"}
	if _, err := s.Categories().Create(ctx, home); err != nil {
		t.Fatalf("Create: %v", err)
	}
	home.Name = "Work"
	if err := s.Categories().Update(ctx, home); !apperr.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("rename err = %v, want DUPLICATE_KEY", err)
	}

	all, err := s.Categories().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d categories, want 2", len(all))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Items().GetByID(context.Background(), 42)
	if !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := newItem("draft")
	if _, err := s.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	item.Title = "final"
	item.Body = model.Checklist{Items: []model.ChecklistEntry{{Text: "a", Completed: true}}}
	if err := s.Items().Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Items().GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "final" || got.Kind() != model.KindChecklist {
		t.Errorf("got %+v", got)
	}
	if entries := got.ChecklistItems(); len(entries) != 1 || !entries[0].Completed {
		t.Errorf("checklist = %+v", entries)
	}
}

func TestUpdateRequiresExistingRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	unset := newItem("no id")
	if err := s.Items().Update(ctx, unset); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("unset id: err = %v, want NOT_FOUND", err)
	}

	absent := newItem("ghost")
	absent.ID = 7
	if err := s.Items().Update(ctx, absent); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("absent id: err = %v, want NOT_FOUND", err)
	}

	all, _ := s.Items().GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("update created %d records", len(all))
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Items().Create(ctx, newItem("keep")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Items().Delete(ctx, 500); err != nil {
		t.Errorf("Delete absent: %v", err)
	}
	all, _ := s.Items().GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("got %d items, want 1", len(all))
	}
}

func TestQueryByIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	work := &model.Category{Name: "Work"}
	if _, err := s.Categories().Create(ctx, work); err != nil {
		t.Fatalf("Create category: %v", err)
	}

	a := newItem("a")
	a.CategoryID = ptr(work.ID)
	a.Priority = model.PriorityHigh
	b := newItem("b")
	b.Body = model.List{Items: []string{"x"}}
	c := newItem("c")
	c.CategoryID = ptr(work.ID)
	for _, it := range []*model.Item{a, b, c} {
		if _, err := s.Items().Create(ctx, it); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name  string
		index string
		value any
		want  []string
	}{
		{"category", IndexCategoryID, work.ID, []string{"a", "c"}},
		{"category pointer", IndexCategoryID, ptr(work.ID), []string{"a", "c"}},
		{"no category", IndexCategoryID, nil, []string{"b"}},
		{"typed priority", IndexPriority, model.PriorityHigh, []string{"a"}},
		{"kind", IndexType, model.KindList, []string{"b"}},
		{"no match", IndexPriority, "low", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Items().QueryByIndex(ctx, tt.index, tt.value)
			if err != nil {
				t.Fatalf("QueryByIndex: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i, item := range got {
				if item.Title != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, item.Title, tt.want[i])
				}
			}
		})
	}

	if _, err := s.Items().QueryByIndex(ctx, "color", "red"); !apperr.Is(err, apperr.ErrInvalid) {
		t.Errorf("unknown index: err = %v, want INVALID_INPUT", err)
	}
}

func TestUpdateRefreshesIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := newItem("move me")
	if _, err := s.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item.Priority = model.PriorityLow
	if err := s.Items().Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	medium, _ := s.Items().QueryByIndex(ctx, IndexPriority, model.PriorityMedium)
	low, _ := s.Items().QueryByIndex(ctx, IndexPriority, model.PriorityLow)
	if len(medium) != 0 || len(low) != 1 {
		t.Errorf("medium=%d low=%d, want 0 and 1", len(medium), len(low))
	}
}

func TestVersionsByTodoID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := newItem("tracked")
	item.ID = 3
	for n := 1; n <= 2; n++ {
		v := &model.Version{TodoID: 3, Data: *item, VersionNumber: n, CreatedAt: item.CreatedAt}
		if _, err := s.Versions().Create(ctx, v); err != nil {
			t.Fatalf("Create version: %v", err)
		}
	}
	other := &model.Version{TodoID: 4, Data: *item, VersionNumber: 1, CreatedAt: item.CreatedAt}
	if _, err := s.Versions().Create(ctx, other); err != nil {
		t.Fatalf("Create version: %v", err)
	}

	got, err := s.Versions().QueryByIndex(ctx, IndexTodoID, int64(3))
	if err != nil {
		t.Fatalf("QueryByIndex: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d versions, want 2", len(got))
	}
	if got[0].Data.Title != "tracked" || got[0].Data.ID != 3 {
		t.Errorf("data = %+v", got[0].Data)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Items().Create(ctx, newItem("persisted")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := s.ID()
	if id == "" {
		t.Fatal("empty store id")
	}
	s.Close()

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if s.ID() != id {
		t.Errorf("store id changed: %q -> %q", id, s.ID())
	}
	all, err := s.Items().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all[0].Title != "persisted" {
		t.Errorf("got %+v", all)
	}
}

func TestUpgradeFromFirstSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	ctx := context.Background()

	old, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := old.Exec(migrations[0].sql); err != nil {
		t.Fatalf("applying v1: %v", err)
	}
	_, err = old.Exec(
		`INSERT INTO items (doc, priority, type, created_at) VALUES (?, ?, ?, ?)`,
		`{"title":"legacy","content":"old","priority":"low","tags":["a"]}`, "low", "memo", "2023-01-01T00:00:00.000000000Z",
	)
	if err != nil {
		t.Fatalf("seeding legacy item: %v", err)
	}
	old.Close()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.Get(&version, "SELECT MAX(version) FROM schema_version"); err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if version != SchemaVersion() {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion())
	}

	items, err := s.Items().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(items) != 1 || items[0].Title != "legacy" || items[0].Kind() != model.KindMemo {
		t.Fatalf("legacy items = %+v", items)
	}

	v := &model.Version{TodoID: items[0].ID, Data: *items[0], VersionNumber: 1, CreatedAt: time.Now()}
	if _, err := s.Versions().Create(ctx, v); err != nil {
		t.Errorf("versions collection unusable after upgrade: %v", err)
	}
}

func TestNewSQLiteStoreUnavailable(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as a database file.
	_, err := NewSQLiteStore(dir)
	if !apperr.Is(err, apperr.ErrStorageUnavailable) {
		t.Errorf("err = %v, want STORAGE_UNAVAILABLE", err)
	}
}
