package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// A database created at an older version is upgraded additively: existing
// collections and their rows are never touched by a later migration.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	doc         TEXT NOT NULL,
	category_id INTEGER,
	priority    TEXT NOT NULL DEFAULT '',
	due_date    TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT 'memo',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	doc  TEXT NOT NULL,
	name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_category_id ON items(category_id);
CREATE INDEX IF NOT EXISTS idx_items_priority ON items(priority);
CREATE INDEX IF NOT EXISTS idx_items_due_date ON items(due_date);
CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(name);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS versions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	doc        TEXT NOT NULL,
	todo_id    INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_versions_todo_id ON versions(todo_id);
CREATE INDEX IF NOT EXISTS idx_versions_created_at ON versions(created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}

// SchemaVersion is the version a freshly opened store ends up at.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}
