// Package version keeps the append-only snapshot history of items and
// restores an item to one of its snapshots.
package version

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/store"
)

//go:embed item.schema.json
var itemSchema string

// Manager snapshots items into the versions collection.
//
// Snapshots are serialised by a mutex, so within one process version numbers
// for an item are gap-free and unique. The number is still derived from the
// stored count, so two processes sharing a database file can collide.
type Manager struct {
	items    *store.Collection[*model.Item]
	versions *store.Collection[*model.Version]
	schema   *jsonschema.Schema
	now      func() time.Time
	logger   *log.Logger

	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now as the source of snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger for snapshot and restore events.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager over the items and versions of s.
func NewManager(s *store.SQLiteStore, opts ...Option) (*Manager, error) {
	schema, err := jsonschema.CompileString("item.schema.json", itemSchema)
	if err != nil {
		return nil, fmt.Errorf("compiling item schema: %w", err)
	}

	m := &Manager{
		items:    s.Items(),
		versions: s.Versions(),
		schema:   schema,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Snapshot stores a deep copy of data as the next version of itemID and
// returns the new version's id. Later changes to data do not affect the
// stored copy.
func (m *Manager) Snapshot(ctx context.Context, itemID int64, data *model.Item) (int64, error) {
	if itemID <= 0 {
		return 0, apperr.Newf(apperr.ErrInvalid, "snapshot of item without id")
	}
	if data == nil {
		return 0, apperr.Newf(apperr.ErrInvalid, "snapshot of item %d without data", itemID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count, err := m.versions.CountByIndex(ctx, store.IndexTodoID, itemID)
	if err != nil {
		return 0, fmt.Errorf("counting versions of item %d: %w", itemID, err)
	}

	v := &model.Version{
		TodoID:        itemID,
		Data:          *data.Clone(),
		VersionNumber: count + 1,
		CreatedAt:     m.now(),
	}
	id, err := m.versions.Create(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("creating version of item %d: %w", itemID, err)
	}

	m.logger.Debug("snapshot", "item", itemID, "version", v.VersionNumber, "id", id)
	return id, nil
}

// ListVersions returns every version of itemID, newest first. Versions
// created at the same instant are ordered by version number, highest first.
func (m *Manager) ListVersions(ctx context.Context, itemID int64) ([]*model.Version, error) {
	versions, err := m.versions.QueryByIndex(ctx, store.IndexTodoID, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing versions of item %d: %w", itemID, err)
	}

	slices.SortStableFunc(versions, func(a, b *model.Version) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.VersionNumber, a.VersionNumber)
	})
	return versions, nil
}

// Restore overwrites item itemID with the data of version versionID and
// returns the restored item. The identity stored in the snapshot is replaced
// by itemID. Restoring does not record a new version.
//
// It fails with NOT_FOUND when the version does not exist, belongs to
// another item, or the item itself no longer exists.
func (m *Manager) Restore(ctx context.Context, itemID, versionID int64) (*model.Item, error) {
	v, err := m.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v.TodoID != itemID {
		return nil, apperr.Newf(apperr.ErrNotFound,
			"version %d belongs to item %d, not %d", versionID, v.TodoID, itemID)
	}

	restored := v.Data.Clone()
	restored.ID = itemID

	if err := m.check(restored); err != nil {
		return nil, err
	}
	if err := m.items.Update(ctx, restored); err != nil {
		return nil, err
	}

	m.logger.Info("restored item", "item", itemID, "version", v.VersionNumber)
	return restored, nil
}

// check validates the snapshot document against the item schema.
func (m *Manager) check(item *model.Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	if err := m.schema.Validate(doc); err != nil {
		return apperr.Wrap(apperr.ErrValidation, "snapshot does not match item schema", err)
	}
	return nil
}
