package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	short_description TEXT NOT NULL DEFAULT '',
	technologies TEXT NOT NULL DEFAULT '[]',
	images TEXT NOT NULL DEFAULT '[]',
	thumbnail TEXT NOT NULL DEFAULT '',
	links TEXT,
	category TEXT NOT NULL,
	featured INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'published',
	sort_order INTEGER NOT NULL DEFAULT 0,
	metadata TEXT,
	date_created INTEGER NOT NULL,
	date_updated INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status, featured);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	subject TEXT NOT NULL,
	message TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	read_status INTEGER NOT NULL DEFAULT 0,
	replied INTEGER NOT NULL DEFAULT 0,
	reply_date INTEGER,
	notes TEXT NOT NULL DEFAULT '',
	date_submitted INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_submitted ON contacts(date_submitted);
CREATE INDEX IF NOT EXISTS idx_contacts_read ON contacts(read_status);

CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	last_login INTEGER,
	login_count INTEGER NOT NULL DEFAULT 0,
	date_created INTEGER NOT NULL
);
`

// DB is the portfolio database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps :memory: a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Path returns the database location.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Projects returns the project store.
func (d *DB) Projects() *ProjectStore {
	return &ProjectStore{db: d.db}
}

// Contacts returns the contact message store.
func (d *DB) Contacts() *ContactStore {
	return &ContactStore{db: d.db}
}

// Admins returns the admin account store.
func (d *DB) Admins() *AdminStore {
	return &AdminStore{db: d.db}
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// likePattern escapes s for use in a LIKE ... ESCAPE '\' clause.
func likePattern(s string) string {
	r := []rune{'%'}
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(append(r, '%'))
}

// limitClause returns SQLite's "no limit" for non-positive limits.
func limitClause(limit, offset int) (string, []any) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}
