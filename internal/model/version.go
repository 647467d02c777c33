package model

import "time"

// Version is an immutable point-in-time copy of an item. VersionNumber is
// 1-based and sequential per TodoID.
type Version struct {
	ID            int64     `json:"id,omitempty" validate:"gte=0"`
	TodoID        int64     `json:"todoId" validate:"gt=0"`
	Data          Item      `json:"data"`
	VersionNumber int       `json:"versionNumber" validate:"gte=1"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GetID returns the version's identity.
func (v *Version) GetID() int64 { return v.ID }

// SetID assigns the version's identity.
func (v *Version) SetID(id int64) { v.ID = id }
