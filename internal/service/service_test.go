package service_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/service"
	"github.com/nhle/todokeeper/internal/version"
	"github.com/nhle/todokeeper/tests/testutil"
)

var t0 = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*service.Service, *testutil.Clock) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clk := testutil.NewClock(t0)
	vm, err := version.NewManager(st, version.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return service.New(st, vm, service.WithClock(clk.Now)), clk
}

func mustCreate(t *testing.T, svc *service.Service, item *model.Item) *model.Item {
	t.Helper()
	created, err := svc.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return created
}

func versionCount(t *testing.T, svc *service.Service, id int64) int {
	t.Helper()
	vs, err := svc.Versions(context.Background(), id)
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	return len(vs)
}

func TestCreateItem(t *testing.T) {
	svc, _ := newService(t)

	in := &model.Item{
		Title:     "  Buy milk ",
		Tags:      []string{" errand", "", "errand", "dairy"},
		Completed: true,
	}
	item := mustCreate(t, svc, in)

	if item.ID == 0 || item.Title != "Buy milk" {
		t.Errorf("item = %+v", item)
	}
	if item.Priority != model.PriorityMedium || item.Kind() != model.KindMemo || item.Completed {
		t.Errorf("defaults not applied: %+v", item)
	}
	if !slices.Equal(item.Tags, []string{"errand", "dairy"}) {
		t.Errorf("tags = %v", item.Tags)
	}
	if !item.CreatedAt.Equal(t0) || !item.UpdatedAt.Equal(t0) {
		t.Errorf("timestamps = %v / %v", item.CreatedAt, item.UpdatedAt)
	}
	if in.ID != 0 || in.Title != "  Buy milk " {
		t.Errorf("input was modified: %+v", in)
	}
	if n := versionCount(t, svc, item.ID); n != 1 {
		t.Errorf("versions = %d, want 1", n)
	}
}

func TestCreateItemRejectsBlankTitle(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateItem(context.Background(), &model.Item{Title: "  "})
	if !apperr.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION", err)
	}
}

func TestUpdateItem(t *testing.T) {
	svc, clk := newService(t)
	ctx := context.Background()
	item := mustCreate(t, svc, &model.Item{Title: "draft"})

	clk.Set(t0.Add(time.Hour))
	edit := item.Clone()
	edit.Title = "final"
	edit.CreatedAt = time.Time{}
	edit.Body = model.Checklist{Items: []model.ChecklistEntry{{Text: "step"}}}

	got, err := svc.UpdateItem(ctx, item.ID, edit)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
	}
	if !got.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}

	stored, err := svc.Item(ctx, item.ID)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if stored.Title != "final" || stored.Kind() != model.KindChecklist {
		t.Errorf("stored = %+v", stored)
	}
	if n := versionCount(t, svc, item.ID); n != 2 {
		t.Errorf("versions = %d, want 2", n)
	}
}

func TestUpdatedAtNeverPrecedesCreatedAt(t *testing.T) {
	svc, clk := newService(t)
	item := mustCreate(t, svc, &model.Item{Title: "clock skew"})

	clk.Set(t0.Add(-time.Hour))
	got, err := svc.ToggleComplete(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdateItem(context.Background(), 77, &model.Item{Title: "ghost"})
	if !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestToggleComplete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item := mustCreate(t, svc, &model.Item{Title: "toggle me"})

	got, err := svc.ToggleComplete(ctx, item.ID)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if !got.Completed {
		t.Error("not completed after first toggle")
	}
	got, err = svc.ToggleComplete(ctx, item.ID)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if got.Completed {
		t.Error("completed after second toggle")
	}
	if n := versionCount(t, svc, item.ID); n != 3 {
		t.Errorf("versions = %d, want 3", n)
	}
}

func TestConcurrentTogglesLastWriteWins(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item := mustCreate(t, svc, &model.Item{Title: "raced"})

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ToggleComplete(ctx, item.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ToggleComplete: %v", err)
	}

	stored, err := svc.Item(ctx, item.ID)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if stored.Title != "raced" {
		t.Errorf("item corrupted: %+v", stored)
	}
	if got := versionCount(t, svc, item.ID); got != n+1 {
		t.Errorf("versions = %d, want %d", got, n+1)
	}
}

func TestDuplicateItem(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	src := mustCreate(t, svc, &model.Item{
		Title: "Packing",
		Tags:  []string{"travel"},
		Body:  model.List{Items: []string{"passport"}},
	})
	if _, err := svc.ToggleComplete(ctx, src.ID); err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}

	dup, err := svc.DuplicateItem(ctx, src.ID)
	if err != nil {
		t.Fatalf("DuplicateItem: %v", err)
	}
	if dup.ID == src.ID || dup.Title != "Packing (Copy)" || dup.Completed {
		t.Errorf("dup = %+v", dup)
	}
	if !slices.Equal(dup.ListItems(), []string{"passport"}) || !slices.Equal(dup.Tags, []string{"travel"}) {
		t.Errorf("dup lost fields: %+v", dup)
	}
	if n := versionCount(t, svc, dup.ID); n != 1 {
		t.Errorf("dup versions = %d, want 1", n)
	}
}

func TestDeleteItemOrphansVersions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item := mustCreate(t, svc, &model.Item{Title: "short lived"})

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := svc.Item(ctx, item.ID); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if n := versionCount(t, svc, item.ID); n != 1 {
		t.Errorf("versions after delete = %d, want 1", n)
	}
}

func TestRestoreItem(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item := mustCreate(t, svc, &model.Item{Title: "v1"})

	edit := item.Clone()
	edit.Title = "v2"
	if _, err := svc.UpdateItem(ctx, item.ID, edit); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	versions, err := svc.Versions(ctx, item.ID)
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	oldest := versions[len(versions)-1]
	if oldest.VersionNumber != 1 {
		t.Fatalf("oldest version = %d", oldest.VersionNumber)
	}

	restored, err := svc.RestoreItem(ctx, item.ID, oldest.ID)
	if err != nil {
		t.Fatalf("RestoreItem: %v", err)
	}
	if restored.Title != "v1" {
		t.Errorf("restored title = %q", restored.Title)
	}
	if n := versionCount(t, svc, item.ID); n != 2 {
		t.Errorf("versions = %d, want 2", n)
	}
}

func TestItemsFiltersAndSorts(t *testing.T) {
	svc, clk := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, &model.Item{Title: "low", Priority: model.PriorityLow, Tags: []string{"a"}})
	clk.Set(t0.Add(time.Minute))
	mustCreate(t, svc, &model.Item{Title: "high", Priority: model.PriorityHigh, Tags: []string{"b"}})
	clk.Set(t0.Add(2 * time.Minute))
	mustCreate(t, svc, &model.Item{Title: "other", Priority: model.PriorityHigh, Tags: []string{"c"}})

	got, err := svc.Items(ctx, query.Criteria{Tags: []string{"a", "b"}}, query.ByPriority)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(got) != 2 || got[0].Title != "high" || got[1].Title != "low" {
		t.Errorf("got %v", got)
	}

	all, err := svc.Items(ctx, query.Criteria{}, query.ByCreatedAt)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(all) != 3 || all[0].Title != "other" {
		t.Errorf("newest first: got %v", all)
	}

	tags, err := svc.AvailableTags(ctx)
	if err != nil {
		t.Fatalf("AvailableTags: %v", err)
	}
	if !slices.Equal(tags, []string{"a", "b", "c"}) {
		t.Errorf("tags = %v", tags)
	}
}

func TestCategories(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	work, err := svc.CreateCategory(ctx, " Work ")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "Work"); !apperr.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("duplicate: err = %v, want DUPLICATE_KEY", err)
	}
	if _, err := svc.CreateCategory(ctx, ""); !apperr.Is(err, apperr.ErrValidation) {
		t.Errorf("blank: err = %v, want VALIDATION", err)
	}
	if _, err := svc.CreateCategory(ctx, "errands"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	renamed, err := svc.RenameCategory(ctx, work.ID, "Office")
	if err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if renamed.Name != "Office" {
		t.Errorf("renamed = %+v", renamed)
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	if !slices.Equal(names, []string{"errands", "Office"}) {
		t.Errorf("names = %v", names)
	}
}

func TestDeleteCategoryLeavesDanglingReference(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Temp")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	catID := cat.ID
	item := mustCreate(t, svc, &model.Item{Title: "filed", CategoryID: &catID})

	if err := svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	stored, err := svc.Item(ctx, item.ID)
	if err != nil {
		t.Fatalf("item deleted with its category: %v", err)
	}
	if stored.CategoryID == nil || *stored.CategoryID != cat.ID {
		t.Errorf("CategoryID = %v, want %d", stored.CategoryID, cat.ID)
	}

	cats, _ := svc.Categories(ctx)
	if name := model.CategoryName(cats, stored.CategoryID); name != "" {
		t.Errorf("dangling category resolved to %q", name)
	}
}
