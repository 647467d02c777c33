// Package service holds the item and category operations the UI performs.
// It stamps timestamps, normalises input and records a version after every
// item write.
package service

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/query"
	"github.com/nhle/todokeeper/internal/store"
	"github.com/nhle/todokeeper/internal/version"
)

// CopySuffix is appended to the title of a duplicated item.
const CopySuffix = " (Copy)"

// Service coordinates the store and the version manager.
type Service struct {
	store    *store.SQLiteStore
	versions *version.Manager
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger for mutations.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Service backed by st and vm.
func New(st *store.SQLiteStore, vm *version.Manager, opts ...Option) *Service {
	s := &Service{
		store:    st,
		versions: vm,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Item returns the item with the given id.
func (s *Service) Item(ctx context.Context, id int64) (*model.Item, error) {
	return s.store.Items().GetByID(ctx, id)
}

// Items loads every item and returns those matching c, ordered by key.
func (s *Service) Items(ctx context.Context, c query.Criteria, key query.SortKey) ([]*model.Item, error) {
	all, err := s.store.Items().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(all, c, key), nil
}

// AvailableTags returns every distinct tag in use.
func (s *Service) AvailableTags(ctx context.Context) ([]string, error) {
	all, err := s.store.Items().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.AvailableTags(all), nil
}

// CreateItem stores a new item built from in and records its first version.
// The new item starts incomplete with priority medium unless one is given.
//
// If the item is stored but its version is not, both the item and an error
// are returned.
func (s *Service) CreateItem(ctx context.Context, in *model.Item) (*model.Item, error) {
	item := prepare(in)
	item.Completed = false
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := s.store.Items().Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Debug("created item", "id", item.ID, "type", item.Kind())
	return item, s.snapshot(ctx, item)
}

// UpdateItem overwrites item id with in. The stored creation time is kept.
func (s *Service) UpdateItem(ctx context.Context, id int64, in *model.Item) (*model.Item, error) {
	existing, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item := prepare(in)
	item.ID = id
	item.CreatedAt = existing.CreatedAt
	return s.write(ctx, item)
}

// ToggleComplete flips the completion state of item id. Concurrent toggles
// of the same item are not coordinated: the last write wins.
func (s *Service) ToggleComplete(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Completed = !item.Completed
	return s.write(ctx, item)
}

// DuplicateItem creates a copy of item id titled "<title> (Copy)".
func (s *Service) DuplicateItem(ctx context.Context, id int64) (*model.Item, error) {
	src, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := src.Clone()
	dup.ID = 0
	dup.Title = src.Title + CopySuffix
	return s.CreateItem(ctx, dup)
}

// DeleteItem removes item id. Its versions stay in the store.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.store.Items().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("deleted item", "id", id)
	return nil
}

// Versions returns the history of item id, newest first.
func (s *Service) Versions(ctx context.Context, id int64) ([]*model.Version, error) {
	return s.versions.ListVersions(ctx, id)
}

// RestoreItem resets item id to the data of version versionID. No version
// is recorded for the restore itself.
func (s *Service) RestoreItem(ctx context.Context, id, versionID int64) (*model.Item, error) {
	return s.versions.Restore(ctx, id, versionID)
}

// write stamps UpdatedAt, stores item and records a version.
func (s *Service) write(ctx context.Context, item *model.Item) (*model.Item, error) {
	now := s.now()
	if now.Before(item.CreatedAt) {
		now = item.CreatedAt
	}
	item.UpdatedAt = now

	if err := s.store.Items().Update(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Debug("updated item", "id", item.ID)
	return item, s.snapshot(ctx, item)
}

func (s *Service) snapshot(ctx context.Context, item *model.Item) error {
	if _, err := s.versions.Snapshot(ctx, item.ID, item); err != nil {
		s.logger.Warn("item saved without version", "id", item.ID, "err", err)
		return fmt.Errorf("recording version of item %d: %w", item.ID, err)
	}
	return nil
}

// prepare copies in and normalises the user-editable fields.
func prepare(in *model.Item) *model.Item {
	item := in.Clone()
	if item == nil {
		item = &model.Item{}
	}
	item.Title = strings.TrimSpace(item.Title)
	item.Tags = model.NormalizeTags(item.Tags)
	item.DueDate = strings.TrimSpace(item.DueDate)
	if item.Priority == "" {
		item.Priority = model.PriorityMedium
	}
	if item.Body == nil {
		item.Body = model.Memo{}
	}
	return item
}

// Categories returns every category ordered by name.
func (s *Service) Categories(ctx context.Context) ([]*model.Category, error) {
	cats, err := s.store.Categories().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(cats, func(a, b *model.Category) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return cats, nil
}

// CreateCategory adds a category. Names must be unique.
func (s *Service) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	c := &model.Category{Name: strings.TrimSpace(name), CreatedAt: s.now()}
	if _, err := s.store.Categories().Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Debug("created category", "id", c.ID, "name", c.Name)
	return c, nil
}

// RenameCategory changes the name of category id.
func (s *Service) RenameCategory(ctx context.Context, id int64, name string) (*model.Category, error) {
	c, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(name)
	if err := s.store.Categories().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes category id. Items keep referring to it.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Newf(apperr.ErrInvalid, "category id %d", id)
	}
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("deleted category", "id", id)
	return nil
}
