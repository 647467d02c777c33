package itemform

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/todokeeper/internal/model"
)

const doneMarker = "[x]"

// ParseTags splits a comma separated tag string.
func ParseTags(s string) []string {
	return model.NormalizeTags(strings.Split(s, ","))
}

// ParseEntries builds a body of the given kind from one entry per line.
// Blank lines are dropped. For checklists a leading "[x]" marks an entry
// done and a leading "[ ]" is ignored.
func ParseEntries(kind model.Kind, text string) model.Body {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	switch kind {
	case model.KindList:
		return model.List{Items: lines}
	case model.KindChecklist:
		entries := make([]model.ChecklistEntry, 0, len(lines))
		for _, line := range lines {
			e := model.ChecklistEntry{Text: line}
			lower := strings.ToLower(line)
			switch {
			case strings.HasPrefix(lower, doneMarker):
				e.Text = strings.TrimSpace(line[len(doneMarker):])
				e.Completed = true
			case strings.HasPrefix(line, "[ ]"):
				e.Text = strings.TrimSpace(line[len("[ ]"):])
			}
			if e.Text != "" {
				entries = append(entries, e)
			}
		}
		return model.Checklist{Items: entries}
	default:
		return model.Memo{}
	}
}

// FormatEntries is the inverse of ParseEntries.
func FormatEntries(body model.Body) string {
	var lines []string
	switch b := body.(type) {
	case model.List:
		lines = b.Items
	case model.Checklist:
		for _, e := range b.Items {
			if e.Completed {
				lines = append(lines, doneMarker+" "+e.Text)
			} else {
				lines = append(lines, e.Text)
			}
		}
	case model.Memo, nil:
	}
	return strings.Join(lines, "\n")
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateOptionalColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("use #RRGGBB")
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fmt.Errorf("use #RRGGBB")
		}
	}
	return nil
}
