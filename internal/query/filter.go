// Package query derives the visible item list: filtering and ordering over
// items already loaded from the store. Nothing here touches storage.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/todokeeper/internal/model"
)

// Completion selects items by completion state.
type Completion string

const (
	All       Completion = "all"
	Completed Completion = "completed"
	Pending   Completion = "pending"
)

// Completions lists the completion filters in display order.
func Completions() []Completion {
	return []Completion{All, Completed, Pending}
}

// ParseCompletion maps a name to a Completion. The empty string means All.
func ParseCompletion(s string) (Completion, error) {
	switch c := Completion(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return All, nil
	case All, Completed, Pending:
		return c, nil
	default:
		return "", fmt.Errorf("unknown completion filter %q", s)
	}
}

// Next cycles all -> completed -> pending -> all.
func (c Completion) Next() Completion {
	switch c {
	case All:
		return Completed
	case Completed:
		return Pending
	default:
		return All
	}
}

// Criteria is the conjunction of filters applied to the item list. The zero
// value keeps everything.
type Criteria struct {
	// CategoryID keeps only items in this category. Nil keeps all.
	CategoryID *int64
	Completion Completion
	// Tags keeps items carrying at least one of these tags.
	Tags []string
	// Search is a case-insensitive substring matched against title,
	// content, tags and list/checklist entries.
	Search string
}

// Filter returns the items matching every criterion, in input order. The
// input slice is not modified.
func Filter(items []*model.Item, c Criteria) []*model.Item {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]*model.Item, 0, len(items))
	for _, item := range items {
		if matches(item, c, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item *model.Item, c Criteria, needle string) bool {
	if c.CategoryID != nil {
		if item.CategoryID == nil || *item.CategoryID != *c.CategoryID {
			return false
		}
	}

	switch c.Completion {
	case Completed:
		if !item.Completed {
			return false
		}
	case Pending:
		if item.Completed {
			return false
		}
	}

	if len(c.Tags) > 0 && !slices.ContainsFunc(item.Tags, func(t string) bool {
		return slices.Contains(c.Tags, t)
	}) {
		return false
	}

	if needle == "" {
		return true
	}
	for _, field := range item.SearchableText() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// AvailableTags returns every distinct tag across items, sorted.
func AvailableTags(items []*model.Item) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, item := range items {
		for _, t := range item.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags
}
