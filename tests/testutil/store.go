// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/store"
)

// NewTestStore opens a migrated in-memory store that is closed on cleanup.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing in-memory store: %v", err)
		}
	})
	return s
}

// SeedItem inserts item directly into the items collection, bypassing the
// service layer, and fails the test on error.
func SeedItem(t *testing.T, s *store.SQLiteStore, item *model.Item) *model.Item {
	t.Helper()

	if _, err := s.Items().Create(context.Background(), item); err != nil {
		t.Fatalf("seeding item %q: %v", item.Title, err)
	}
	return item
}

// Clock is a settable time source safe for concurrent use.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a Clock stopped at t.
func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
