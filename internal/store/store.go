package store

import (
	"time"

	"github.com/nhle/todokeeper/internal/model"
)

// Name identifies one of the fixed collections of the store.
type Name string

// Collection names.
const (
	Items      Name = "items"
	Categories Name = "categories"
	Versions   Name = "versions"
)

// Names returns every collection name in creation order.
func Names() []Name {
	return []Name{Items, Categories, Versions}
}

// Secondary index names. They match the field names of the stored documents.
const (
	IndexCategoryID = "categoryId"
	IndexPriority   = "priority"
	IndexDueDate    = "dueDate"
	IndexType       = "type"
	IndexCreatedAt  = "createdAt"
	IndexName       = "name"
	IndexTodoID     = "todoId"
)

// Record is anything stored in a collection: it carries an integer identity
// assigned by the store on create.
type Record interface {
	GetID() int64
	SetID(id int64)
}

// Index declares a secondary index: the column holding the indexed value
// and how to extract that value from a record.
type Index[T Record] struct {
	Name   string
	Column string
	Unique bool
	Key    func(T) any
}

// indexTimeLayout is fixed-width so stored timestamps compare as strings.
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatIndexTime(t time.Time) string {
	return t.UTC().Format(indexTimeLayout)
}

func itemIndexes() []Index[*model.Item] {
	return []Index[*model.Item]{
		{Name: IndexCategoryID, Column: "category_id", Key: func(i *model.Item) any {
			if i.CategoryID == nil {
				return nil
			}
			return *i.CategoryID
		}},
		{Name: IndexPriority, Column: "priority", Key: func(i *model.Item) any { return string(i.Priority) }},
		{Name: IndexDueDate, Column: "due_date", Key: func(i *model.Item) any { return i.DueDate }},
		{Name: IndexType, Column: "type", Key: func(i *model.Item) any { return string(i.Kind()) }},
		{Name: IndexCreatedAt, Column: "created_at", Key: func(i *model.Item) any { return formatIndexTime(i.CreatedAt) }},
	}
}

func categoryIndexes() []Index[*model.Category] {
	return []Index[*model.Category]{
		{Name: IndexName, Column: "name", Unique: true, Key: func(c *model.Category) any { return c.Name }},
	}
}

func versionIndexes() []Index[*model.Version] {
	return []Index[*model.Version]{
		{Name: IndexTodoID, Column: "todo_id", Key: func(v *model.Version) any { return v.TodoID }},
		{Name: IndexCreatedAt, Column: "created_at", Key: func(v *model.Version) any { return formatIndexTime(v.CreatedAt) }},
	}
}
