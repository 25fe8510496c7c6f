// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
//
// CONSISTENCY MODEL:
// Every cross-request invariant of this app lives here as a unique index:
// users.username, share_links.hash, and share_links.owner_id. Application
// code may pre-check for friendlier errors, but the index is what holds under
// concurrent requests. Constraint violations are translated into
// apperror.ErrConflict so services and handlers never see driver strings.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The server owns it and closes it on
// shutdown. The per-entity repositories (Users, Content, ShareLinks) are
// thin views over the same pool — each implements one repository interface,
// which keeps method sets from colliding on a single struct.
type DB struct {
	conn *sql.DB
}

// Users returns the UserRepository view of the database.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Content returns the ContentRepository view of the database.
func (db *DB) Content() *ContentDB { return &ContentDB{conn: db.conn} }

// ShareLinks returns the ShareLinkRepository view of the database.
func (db *DB) ShareLinks() *ShareLinkDB { return &ShareLinkDB{conn: db.conn} }

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/brain.db" → file-based, persistent
//   - ":memory:"      → in-memory, great for tests, lost on close
func New(dbPath string) (*DB, error) {
	// Both pragmas are per-connection in SQLite, and database/sql is a pool:
	// an Exec'd PRAGMA only reaches whichever connection happens to run it.
	// Putting them in the DSN makes the driver apply them to every
	// connection the pool opens.
	//
	// WAL lets reads proceed while a write is in flight — important under
	// many concurrent request handlers. Foreign keys are off by default in
	// SQLite; we need them on every connection, since every content item
	// and share link references an owner that must exist.
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection — a second pooled
	// connection would see a fresh, empty schema. One connection total
	// keeps ":memory:" coherent.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open doesn't actually connect; Ping forces the first connection so
	// a bad path surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent —
// safe to run on every startup.
func (db *DB) migrate() error {
	// github_id is 0 for password accounts, so its uniqueness is a partial
	// index: only rows actually linked to GitHub participate.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS content (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			link       TEXT NOT NULL,
			type       TEXT NOT NULL,
			tags       TEXT NOT NULL DEFAULT '[]',
			owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_content_owner_id ON content(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating content table: %w", err)
	}

	// hash is the primary key (unique by definition); owner_id UNIQUE caps
	// each user at one active link.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS share_links (
			hash       TEXT PRIMARY KEY,
			owner_id   TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating share_links table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
// on the given "table.column" key. The pure-Go driver exposes constraint
// errors only through the message text, so we match on the canonical
// "UNIQUE constraint failed: table.column" form.
func isUniqueViolation(err error, key string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+key)
}
