package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/search"
)

// Row represents a row in the documents table.
type Row struct {
	Path      string
	Title     string
	Author    string
	DateRaw   string
	Excerpt   string
	Checksum  string
	Body      string // plain text
	UpdatedAt time.Time
}

// RowFor builds the catalog row of doc.
func RowFor(doc *models.Document) Row {
	hit := search.ResultFor(doc)
	return Row{
		Path:      doc.Path,
		Title:     hit.Title,
		Author:    hit.Author,
		DateRaw:   hit.Date,
		Excerpt:   hit.Excerpt,
		Checksum:  doc.Checksum,
		Body:      doc.PlainText,
		UpdatedAt: doc.ModTime,
	}
}

// Upsert inserts or replaces a document row.
func (db *DB) Upsert(ctx context.Context, r Row) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO documents (path, title, author, date_raw, excerpt, checksum,
			title_lower, body_lower, path_lower, date_lower, author_lower, sort_lower, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title        = excluded.title,
			author       = excluded.author,
			date_raw     = excluded.date_raw,
			excerpt      = excluded.excerpt,
			checksum     = excluded.checksum,
			title_lower  = excluded.title_lower,
			body_lower   = excluded.body_lower,
			path_lower   = excluded.path_lower,
			date_lower   = excluded.date_lower,
			author_lower = excluded.author_lower,
			sort_lower   = excluded.sort_lower,
			updated_at   = excluded.updated_at
	`, r.Path, r.Title, r.Author, r.DateRaw, r.Excerpt, r.Checksum,
		strings.ToLower(r.Title), strings.ToLower(r.Body), strings.ToLower(r.Path),
		strings.ToLower(r.DateRaw), strings.ToLower(r.Author), strings.ToLower(r.Path), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	return nil
}

// Delete removes a document row.
func (db *DB) Delete(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a document, or empty string if
// not found.
func (db *DB) GetChecksum(ctx context.Context, path string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every row.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Count returns the number of catalogued documents.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Search answers the same query contract as search.Engine: validated,
// case-insensitive substring over title, body, path, date and author, in
// listing order.
func (db *DB) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q, err := search.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues("sqlite").Observe(time.Since(start).Seconds())
	}()

	lq := strings.ToLower(q)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, title, excerpt, date_raw, author
		FROM documents
		WHERE instr(title_lower, ?) > 0
		   OR instr(body_lower, ?) > 0
		   OR instr(path_lower, ?) > 0
		   OR instr(date_lower, ?) > 0
		   OR instr(author_lower, ?) > 0
		ORDER BY sort_lower, path
	`, lq, lq, lq, lq, lq)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Excerpt, &r.Date, &r.Author); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
