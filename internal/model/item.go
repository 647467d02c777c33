package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind is the discriminator of an item's body.
type Kind string

// Item kinds.
const (
	KindMemo      Kind = "memo"
	KindList      Kind = "list"
	KindChecklist Kind = "checklist"
)

// Priority levels. Stored as their string names.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high(3) > medium(2) > low(1).
// Unrecognized values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// DateLayout is the format of due dates entered by the user.
const DateLayout = "2006-01-02"

// Body is the type-specific payload of an item. It is one of Memo, List
// or Checklist.
type Body interface {
	Kind() Kind
	cloneBody() Body
}

// Memo has no payload beyond the item's content.
type Memo struct{}

// List is an ordered sequence of plain entries.
type List struct {
	Items []string
}

// ChecklistEntry is a single checkable line of a checklist.
type ChecklistEntry struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist is an ordered sequence of checkable entries.
type Checklist struct {
	Items []ChecklistEntry
}

func (Memo) Kind() Kind      { return KindMemo }
func (List) Kind() Kind      { return KindList }
func (Checklist) Kind() Kind { return KindChecklist }

func (Memo) cloneBody() Body { return Memo{} }

func (l List) cloneBody() Body {
	return List{Items: cloneSlice(l.Items)}
}

func (c Checklist) cloneBody() Body {
	return Checklist{Items: cloneSlice(c.Items)}
}

// NewBody returns an empty body of the given kind.
func NewBody(k Kind) (Body, error) {
	switch k {
	case KindMemo:
		return Memo{}, nil
	case KindList:
		return List{}, nil
	case KindChecklist:
		return Checklist{}, nil
	default:
		return nil, fmt.Errorf("unknown item type %q", k)
	}
}

// Item is a todo: a memo, list or checklist owned by the user.
type Item struct {
	ID          int64  `validate:"gte=0"`
	Title       string `validate:"notblank"`
	Content     string
	CategoryID  *int64
	Priority    Priority `validate:"omitempty,oneof=low medium high"`
	DueDate     string
	Tags        []string
	Completed   bool
	CustomColor string
	Body        Body `validate:"required"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Kind returns the item's type, defaulting to memo for a nil body.
func (i *Item) Kind() Kind {
	if i.Body == nil {
		return KindMemo
	}
	return i.Body.Kind()
}

// GetID returns the item's identity.
func (i *Item) GetID() int64 { return i.ID }

// SetID assigns the item's identity.
func (i *Item) SetID(id int64) { i.ID = id }

// Clone returns a deep copy sharing no memory with i.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.Tags = cloneSlice(i.Tags)
	if i.CategoryID != nil {
		id := *i.CategoryID
		c.CategoryID = &id
	}
	if i.Body != nil {
		c.Body = i.Body.cloneBody()
	}
	return &c
}

// ListItems returns the entries of a list body, or nil.
func (i *Item) ListItems() []string {
	if l, ok := i.Body.(List); ok {
		return l.Items
	}
	return nil
}

// ChecklistItems returns the entries of a checklist body, or nil.
func (i *Item) ChecklistItems() []ChecklistEntry {
	if c, ok := i.Body.(Checklist); ok {
		return c.Items
	}
	return nil
}

// SearchableText returns every text field a free-text search matches against:
// title, content, tags, list entries and checklist entry texts.
func (i *Item) SearchableText() []string {
	fields := []string{i.Title, i.Content}
	fields = append(fields, i.Tags...)
	switch b := i.Body.(type) {
	case List:
		fields = append(fields, b.Items...)
	case Checklist:
		for _, e := range b.Items {
			fields = append(fields, e.Text)
		}
	case Memo, nil:
	}
	return fields
}

// Due parses DueDate. ok is false when the date is empty or unparsable.
func (i *Item) Due() (t time.Time, ok bool) {
	return ParseDate(i.DueDate)
}

// IsOverdue reports whether the due date lies on a day before now's day.
// Completed items are never overdue.
func (i *Item) IsOverdue(now time.Time) bool {
	due, ok := i.Due()
	if !ok || i.Completed {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := due.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	return dueDay.Before(today)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence's position.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// itemDoc is the persisted JSON document of an item. The document is flat:
// the body is spread into the listItems/checklistItems fields and
// discriminated by type.
type itemDoc struct {
	ID             int64            `json:"id,omitempty"`
	Title          string           `json:"title"`
	Content        string           `json:"content"`
	Type           Kind             `json:"type"`
	CategoryID     *int64           `json:"categoryId"`
	Priority       Priority         `json:"priority"`
	DueDate        string           `json:"dueDate"`
	ChecklistItems []ChecklistEntry `json:"checklistItems"`
	ListItems      []string         `json:"listItems"`
	Tags           []string         `json:"tags"`
	Completed      bool             `json:"completed"`
	CustomColor    string           `json:"customColor,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// MarshalJSON encodes the item in its flat document form.
func (i Item) MarshalJSON() ([]byte, error) {
	doc := itemDoc{
		ID:             i.ID,
		Title:          i.Title,
		Content:        i.Content,
		Type:           i.Kind(),
		CategoryID:     i.CategoryID,
		Priority:       i.Priority,
		DueDate:        i.DueDate,
		ChecklistItems: []ChecklistEntry{},
		ListItems:      []string{},
		Tags:           i.Tags,
		Completed:      i.Completed,
		CustomColor:    i.CustomColor,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	switch b := i.Body.(type) {
	case List:
		if b.Items != nil {
			doc.ListItems = b.Items
		}
	case Checklist:
		if b.Items != nil {
			doc.ChecklistItems = b.Items
		}
	case Memo, nil:
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the flat document form. A missing type decodes as
// a memo; an unknown type is an error.
func (i *Item) UnmarshalJSON(data []byte) error {
	var doc itemDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	kind := doc.Type
	if kind == "" {
		kind = KindMemo
	}

	var body Body
	switch kind {
	case KindMemo:
		body = Memo{}
	case KindList:
		body = List{Items: doc.ListItems}
	case KindChecklist:
		body = Checklist{Items: doc.ChecklistItems}
	default:
		return fmt.Errorf("unknown item type %q", doc.Type)
	}

	*i = Item{
		ID:          doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		CategoryID:  doc.CategoryID,
		Priority:    doc.Priority,
		DueDate:     doc.DueDate,
		Tags:        doc.Tags,
		Completed:   doc.Completed,
		CustomColor: doc.CustomColor,
		Body:        body,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	return nil
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
