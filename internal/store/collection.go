package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todokeeper/internal/apperr"
)

// Collection is one named set of JSON documents keyed by an auto-increment
// id, with declared secondary indexes kept in their own columns.
type Collection[T Record] struct {
	db        *sqlx.DB
	name      Name
	newRecord func() T
	indexes   []Index[T]
}

// docRow is the physical row shape shared by every collection table.
type docRow struct {
	ID  int64  `db:"id"`
	Doc string `db:"doc"`
}

func newCollection[T Record](db *sqlx.DB, name Name, newRecord func() T, indexes []Index[T]) *Collection[T] {
	return &Collection[T]{db: db, name: name, newRecord: newRecord, indexes: indexes}
}

// Name returns the collection's name.
func (c *Collection[T]) Name() Name {
	return c.name
}

// Create validates rec, assigns it a new id and persists it. Any id already
// set on rec is ignored. Fails with DUPLICATE_KEY on a unique index clash.
func (c *Collection[T]) Create(ctx context.Context, rec T) (int64, error) {
	if err := validateRecord(rec); err != nil {
		return 0, err
	}

	prev := rec.GetID()
	rec.SetID(0)
	doc, err := json.Marshal(rec)
	rec.SetID(prev)
	if err != nil {
		return 0, fmt.Errorf("encoding %s record: %w", c.name, err)
	}

	cols := []string{"doc"}
	args := []any{string(doc)}
	for _, idx := range c.indexes {
		cols = append(cols, idx.Column)
		args = append(args, idx.Key(rec))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		c.name, strings.Join(cols, ", "), placeholders(len(cols)),
	)
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, c.writeError("creating", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new %s id: %w", c.name, err)
	}
	rec.SetID(id)
	return id, nil
}

// GetAll returns every record in the collection. Callers sort.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	var rows []docRow
	query := fmt.Sprintf("SELECT id, doc FROM %s ORDER BY id", c.name)
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.name, err)
	}
	return c.decodeRows(rows)
}

// GetByID returns the record with the given id, or a NOT_FOUND error.
func (c *Collection[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	var row docRow
	query := fmt.Sprintf("SELECT id, doc FROM %s WHERE id = ?", c.name)
	if err := c.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, apperr.Newf(apperr.ErrNotFound, "%s %d not found", c.name, id)
		}
		return zero, fmt.Errorf("getting %s %d: %w", c.name, id, err)
	}
	return c.decode(row)
}

// Update replaces the stored record wholesale. The record must carry the id
// of an existing record; otherwise it fails with NOT_FOUND (no upsert).
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	id := rec.GetID()
	if id <= 0 {
		return apperr.Newf(apperr.ErrNotFound, "%s record has no id", c.name)
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s %d: %w", c.name, id, err)
	}

	sets := []string{"doc = ?"}
	args := []any{string(doc)}
	for _, idx := range c.indexes {
		sets = append(sets, idx.Column+" = ?")
		args = append(args, idx.Key(rec))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", c.name, strings.Join(sets, ", "))
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return c.writeError(fmt.Sprintf("updating %d in", id), err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperr.Newf(apperr.ErrNotFound, "%s %d not found", c.name, id)
	}
	return nil
}

// Delete removes the record with the given id. Deleting an absent id is not
// an error.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.name)
	if _, err := c.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting %s %d: %w", c.name, id, err)
	}
	return nil
}

// QueryByIndex returns every record whose indexed field equals value. A nil
// value matches records where the field is unset.
func (c *Collection[T]) QueryByIndex(ctx context.Context, indexName string, value any) ([]T, error) {
	idx, ok := c.index(indexName)
	if !ok {
		return nil, apperr.Newf(apperr.ErrInvalid, "%s has no index %q", c.name, indexName)
	}

	v := indexValue(value)
	var (
		rows  []docRow
		query string
		args  []any
	)
	if v == nil {
		query = fmt.Sprintf("SELECT id, doc FROM %s WHERE %s IS NULL ORDER BY id", c.name, idx.Column)
	} else {
		query = fmt.Sprintf("SELECT id, doc FROM %s WHERE %s = ? ORDER BY id", c.name, idx.Column)
		args = append(args, v)
	}

	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying %s by %s: %w", c.name, indexName, err)
	}
	return c.decodeRows(rows)
}

// CountByIndex returns how many records QueryByIndex would return without
// decoding them.
func (c *Collection[T]) CountByIndex(ctx context.Context, indexName string, value any) (int, error) {
	idx, ok := c.index(indexName)
	if !ok {
		return 0, apperr.Newf(apperr.ErrInvalid, "%s has no index %q", c.name, indexName)
	}

	var n int
	var err error
	if v := indexValue(value); v == nil {
		err = c.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", c.name, idx.Column))
	} else {
		err = c.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", c.name, idx.Column), v)
	}
	if err != nil {
		return 0, fmt.Errorf("counting %s by %s: %w", c.name, indexName, err)
	}
	return n, nil
}

// Indexes returns the names of the declared secondary indexes.
func (c *Collection[T]) Indexes() []string {
	names := make([]string, len(c.indexes))
	for i, idx := range c.indexes {
		names[i] = idx.Name
	}
	return names
}

func (c *Collection[T]) index(name string) (Index[T], bool) {
	for _, idx := range c.indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index[T]{}, false
}

func (c *Collection[T]) decode(row docRow) (T, error) {
	rec := c.newRecord()
	if err := json.Unmarshal([]byte(row.Doc), rec); err != nil {
		var zero T
		return zero, fmt.Errorf("decoding %s %d: %w", c.name, row.ID, err)
	}
	rec.SetID(row.ID)
	return rec, nil
}

func (c *Collection[T]) decodeRows(rows []docRow) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := c.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Collection[T]) writeError(verb string, err error) error {
	if isUniqueViolation(err) {
		return apperr.Wrap(apperr.ErrDuplicateKey,
			fmt.Sprintf("%s %s: unique index violated", verb, c.name), err)
	}
	return fmt.Errorf("%s %s: %w", verb, c.name, err)
}

// indexValue converts a lookup value into the form stored in index columns.
func indexValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return formatIndexTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return formatIndexTime(*v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return indexValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	default:
		return value
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
