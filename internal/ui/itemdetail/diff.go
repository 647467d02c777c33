package itemdetail

import (
	"strconv"
	"strings"

	"github.com/nhle/todokeeper/internal/model"
)

// FieldChange is one user-visible field that differs between two items.
type FieldChange struct {
	Field string
	From  string
	To    string
}

// Diff lists the fields that differ between from and to, in display order.
// Timestamps and identity are ignored.
func Diff(from, to *model.Item, categories []*model.Category) []FieldChange {
	var changes []FieldChange
	add := func(field, a, b string) {
		if a != b {
			changes = append(changes, FieldChange{Field: field, From: a, To: b})
		}
	}

	add("Title", from.Title, to.Title)
	add("Content", from.Content, to.Content)
	add("Type", string(from.Kind()), string(to.Kind()))
	add("Category", categoryLabel(categories, from.CategoryID), categoryLabel(categories, to.CategoryID))
	add("Priority", string(from.Priority), string(to.Priority))
	add("Due", from.DueDate, to.DueDate)
	add("Tags", strings.Join(from.Tags, ", "), strings.Join(to.Tags, ", "))
	add("Completed", strconv.FormatBool(from.Completed), strconv.FormatBool(to.Completed))
	add("Entries", entriesLabel(from), entriesLabel(to))
	add("Color", from.CustomColor, to.CustomColor)
	return changes
}

func categoryLabel(categories []*model.Category, id *int64) string {
	if id == nil {
		return ""
	}
	if name := model.CategoryName(categories, id); name != "" {
		return name
	}
	return "#" + strconv.FormatInt(*id, 10) + " (deleted)"
}

func entriesLabel(item *model.Item) string {
	switch b := item.Body.(type) {
	case model.List:
		return strings.Join(b.Items, "; ")
	case model.Checklist:
		parts := make([]string, len(b.Items))
		for i, e := range b.Items {
			mark := "[ ] "
			if e.Completed {
				mark = "[x] "
			}
			parts[i] = mark + e.Text
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}
