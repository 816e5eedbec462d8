// Package index provides an SQLite search catalog mirroring the content
// repository, and the filesystem watcher that keeps it fresh.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the catalog in process memory.
const MemoryDSN = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path         TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	author       TEXT NOT NULL DEFAULT '',
	date_raw     TEXT NOT NULL DEFAULT '',
	excerpt      TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	title_lower  TEXT NOT NULL DEFAULT '',
	body_lower   TEXT NOT NULL DEFAULT '',
	path_lower   TEXT NOT NULL DEFAULT '',
	date_lower   TEXT NOT NULL DEFAULT '',
	author_lower TEXT NOT NULL DEFAULT '',
	sort_lower   TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_sort ON documents(sort_lower, path);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the catalog and applies the schema. An empty dsn
// means MemoryDSN.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// Every connection to :memory: is its own database.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
