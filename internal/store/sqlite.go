package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/model"
)

// MemoryPath opens a store that lives only as long as the process.
const MemoryPath = ":memory:"

// SQLiteStore is the persistent store: three document collections in one
// local SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	id     string
	logger *log.Logger

	items      *Collection[*model.Item]
	categories *Collection[*model.Category]
	versions   *Collection[*model.Version]
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations. Opening the
// same path again attaches to the existing data. Any failure is reported
// as STORAGE_UNAVAILABLE.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}

	if dbPath != MemoryPath && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "creating database directory", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "opening sqlite db", err)
	}
	// One connection: every statement sees the same database, which is what
	// keeps ":memory:" usable and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, apperr.Wrap(apperr.ErrStorageUnavailable, fmt.Sprintf("applying %q", p), err)
		}
	}

	s.db = db
	version, err := s.runMigrations()
	if err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "running migrations", err)
	}

	if s.id, err = s.ensureStoreID(); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "reading store id", err)
	}

	s.items = newCollection(db, Items, func() *model.Item { return &model.Item{} }, itemIndexes())
	s.categories = newCollection(db, Categories, func() *model.Category { return &model.Category{} }, categoryIndexes())
	s.versions = newCollection(db, Versions, func() *model.Version { return &model.Version{} }, versionIndexes())

	s.logger.Info("store opened", "path", dbPath, "schema", version, "store_id", s.id)
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ID returns the unique identifier generated when the database was created.
func (s *SQLiteStore) ID() string {
	return s.id
}

// Items returns the items collection.
func (s *SQLiteStore) Items() *Collection[*model.Item] { return s.items }

// Categories returns the categories collection.
func (s *SQLiteStore) Categories() *Collection[*model.Category] { return s.categories }

// Versions returns the versions collection.
func (s *SQLiteStore) Versions() *Collection[*model.Version] { return s.versions }

// Ping verifies the database is still reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Wrap(apperr.ErrStorageUnavailable, "pinging database", err)
	}
	return nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order. It returns the resulting version.
func (s *SQLiteStore) runMigrations() (int, error) {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return 0, fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return 0, fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return 0, err
		}
		s.logger.Debug("applied migration", "version", m.version)
		currentVersion = m.version
	}

	return currentVersion, nil
}

func (s *SQLiteStore) applyMigration(m migration) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning migration v%d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("applying migration v%d: %w", m.version, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ensureStoreID() (string, error) {
	var id string
	err := s.db.Get(&id, "SELECT value FROM meta WHERE key = 'store_id'")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	id = uuid.NewString()
	if _, err := s.db.Exec("INSERT INTO meta (key, value) VALUES ('store_id', ?)", id); err != nil {
		return "", err
	}
	return id, nil
}
