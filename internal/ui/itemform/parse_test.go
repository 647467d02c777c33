package itemform

import (
	"reflect"
	"testing"

	"github.com/nhle/todokeeper/internal/model"
)

func TestParseTags(t *testing.T) {
	got := ParseTags(" work, ,home,work ")
	want := []string{"work", "home"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := ParseTags(""); len(got) != 0 {
		t.Errorf("ParseTags(\"\") = %v", got)
	}
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name string
		kind model.Kind
		text string
		want model.Body
	}{
		{"memo ignores text", model.KindMemo, "a\nb", model.Memo{}},
		{"list", model.KindList, "eggs\n\n  milk \n", model.List{Items: []string{"eggs", "milk"}}},
		{"checklist", model.KindChecklist, "[x] build\n[ ] test\nship\n[X] tag", model.Checklist{Items: []model.ChecklistEntry{
			{Text: "build", Completed: true},
			{Text: "test"},
			{Text: "ship"},
			{Text: "tag", Completed: true},
		}}},
		{"checklist drops empty marker", model.KindChecklist, "[x]\n", model.Checklist{Items: []model.ChecklistEntry{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEntries(tt.kind, tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFormatEntriesRoundTrip(t *testing.T) {
	body := model.Checklist{Items: []model.ChecklistEntry{
		{Text: "build", Completed: true},
		{Text: "ship"},
	}}
	text := FormatEntries(body)
	if text != "[x] build\nship" {
		t.Errorf("FormatEntries = %q", text)
	}
	if got := ParseEntries(model.KindChecklist, text); !reflect.DeepEqual(got, body) {
		t.Errorf("round trip = %#v", got)
	}
	if FormatEntries(model.Memo{}) != "" {
		t.Error("memo formatted to non-empty text")
	}
}

func TestValidators(t *testing.T) {
	if err := validateOptionalDate("2024-02-30"); err == nil {
		t.Error("accepted impossible date")
	}
	if err := validateOptionalDate(""); err != nil {
		t.Errorf("rejected empty date: %v", err)
	}
	for _, ok := range []string{"", "#ff8800", "#ABCDEF"} {
		if err := validateOptionalColor(ok); err != nil {
			t.Errorf("validateOptionalColor(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"red", "#fff", "#gg0000"} {
		if err := validateOptionalColor(bad); err == nil {
			t.Errorf("validateOptionalColor(%q) accepted", bad)
		}
	}
	if err := validateRequired("Title")("  "); err == nil {
		t.Error("blank title accepted")
	}
}

func TestBindingsItem(t *testing.T) {
	fb := &formBindings{
		title:      "  Trip ",
		kind:       model.KindList,
		categoryID: "3",
		priority:   model.PriorityHigh,
		tags:       "travel, fun",
		entries:    "passport\ncharger",
	}
	item := fb.item()
	if item.Title != "Trip" || item.CategoryID == nil || *item.CategoryID != 3 {
		t.Errorf("item = %+v", item)
	}
	if !reflect.DeepEqual(item.ListItems(), []string{"passport", "charger"}) {
		t.Errorf("entries = %v", item.ListItems())
	}

	fb.categoryID = ""
	if item := fb.item(); item.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil", *item.CategoryID)
	}
}
