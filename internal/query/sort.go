package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/todokeeper/internal/model"
)

// SortKey names an ordering of the item list.
type SortKey string

const (
	ByCreatedAt SortKey = "createdAt"
	ByPriority  SortKey = "priority"
	ByDueDate   SortKey = "dueDate"
	ByTitle     SortKey = "title"
)

// SortKeys lists the orderings in display order.
func SortKeys() []SortKey {
	return []SortKey{ByCreatedAt, ByPriority, ByDueDate, ByTitle}
}

// ParseSortKey maps a name to a SortKey, case-insensitively. The empty
// string means ByCreatedAt.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ByCreatedAt, nil
	}
	for _, k := range SortKeys() {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Next cycles through SortKeys.
func (k SortKey) Next() SortKey {
	keys := SortKeys()
	i := slices.Index(keys, k)
	return keys[(i+1)%len(keys)]
}

// Sort returns a sorted copy of items:
//   - priority: high, medium, low, then unrecognised values
//   - dueDate: earliest first, items without a (parsable) date last
//   - title: ascending by locale collation
//   - createdAt and anything else: newest first
func Sort(items []*model.Item, key SortKey) []*model.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, comparator(key))
	return out
}

// Apply filters then sorts.
func Apply(items []*model.Item, c Criteria, key SortKey) []*model.Item {
	return Sort(Filter(items, c), key)
}

func comparator(key SortKey) func(a, b *model.Item) int {
	switch key {
	case ByPriority:
		return func(a, b *model.Item) int {
			return b.Priority.Rank() - a.Priority.Rank()
		}
	case ByDueDate:
		return func(a, b *model.Item) int {
			ad, aok := a.Due()
			bd, bok := b.Due()
			switch {
			case aok && bok:
				return ad.Compare(bd)
			case aok:
				return -1
			case bok:
				return 1
			default:
				return 0
			}
		}
	case ByTitle:
		// Collators keep internal buffers; one per sort.
		col := collate.New(language.Und)
		return func(a, b *model.Item) int {
			return col.CompareString(a.Title, b.Title)
		}
	default:
		return func(a, b *model.Item) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}
