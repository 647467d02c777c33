package itemlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/theme"
)

// maxTags is how many tags a row shows before eliding the rest.
const maxTags = 2

// Item wraps a model.Item so it can be used in a bubbles/list.
type Item struct {
	Item *model.Item
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Item.Title }

// Title returns the item title for the list.
func (i Item) Title() string { return i.Item.Title }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{string(i.Item.Kind()), string(i.Item.Priority)}
	if i.Item.DueDate != "" {
		parts = append(parts, "due "+i.Item.DueDate)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering item rows.
type ItemDelegate struct {
	categories []*model.Category
	now        func() time.Time
}

// NewItemDelegate returns a delegate using the wall clock for overdue marks.
func NewItemDelegate() *ItemDelegate {
	return &ItemDelegate{now: time.Now}
}

// Height returns the number of lines each item takes.
func (d *ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d *ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d *ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d *ItemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(it.Item, index == m.Index()))
}

func (d *ItemDelegate) renderLine(item *model.Item, isSelected bool) string {
	prefix := "○"
	if item.Completed {
		prefix = "✓"
	}

	kindBadge := theme.KindLabelStyle(item.Kind()).Render(kindLabel(item.Kind()))
	priBadge := theme.PriorityStyle(item.Priority).Render(priorityLabel(item.Priority))

	title := item.Title
	switch {
	case item.Completed:
		title = theme.CompletedStyle.Render(title)
	case item.CustomColor != "":
		title = theme.AccentStyle(item.CustomColor).Render(title)
	}

	progress := ""
	if entries := item.ChecklistItems(); len(entries) > 0 {
		done := 0
		for _, e := range entries {
			if e.Completed {
				done++
			}
		}
		progress = theme.DimmedStyle.Render(fmt.Sprintf(" [%d/%d]", done, len(entries)))
	} else if entries := item.ListItems(); len(entries) > 0 {
		progress = theme.DimmedStyle.Render(fmt.Sprintf(" [%d]", len(entries)))
	}

	categoryBadge := ""
	if name := model.CategoryName(d.categories, item.CategoryID); name != "" {
		categoryBadge = lipgloss.NewStyle().
			Foreground(theme.ColorBlue).
			Render(" @" + name)
	}

	tagBadge := ""
	if len(item.Tags) > 0 {
		display := item.Tags
		if len(display) > maxTags {
			display = append(display[:maxTags:maxTags], "…")
		}
		tagBadge = theme.TagStyle.Render(" #" + strings.Join(display, " #"))
	}

	dueStr := ""
	if due, ok := item.Due(); ok {
		dueStr = theme.DimmedStyle.Render(" " + due.Format("Jan 02"))
		if item.IsOverdue(d.now()) {
			dueStr = theme.OverdueStyle.Render(" " + due.Format("Jan 02") + " OVERDUE")
		}
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s%s%s",
		prefix, kindBadge, priBadge, title,
		progress, categoryBadge, tagBadge, dueStr,
	)

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// kindLabel returns a short label for the given item type.
func kindLabel(k model.Kind) string {
	switch k {
	case model.KindList:
		return "LST"
	case model.KindChecklist:
		return "CHK"
	default:
		return "MEM"
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "H"
	case model.PriorityMedium:
		return "M"
	case model.PriorityLow:
		return "L"
	default:
		return "?"
	}
}
