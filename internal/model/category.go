package model

import "time"

// Category groups items. Names are unique across categories.
type Category struct {
	ID        int64     `json:"id,omitempty" validate:"gte=0"`
	Name      string    `json:"name" validate:"notblank"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetID returns the category's identity.
func (c *Category) GetID() int64 { return c.ID }

// SetID assigns the category's identity.
func (c *Category) SetID(id int64) { c.ID = id }

// CategoryName returns the name of the category with the given id. A nil or
// dangling id yields "", which display code treats as "no category".
func CategoryName(categories []*Category, id *int64) string {
	if id == nil {
		return ""
	}
	for _, c := range categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return ""
}
