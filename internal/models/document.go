// Package models defines the domain types for quire.
package models

import "time"

// Metadata is the typed form of a document's YAML header.
type Metadata struct {
	Title   string         `json:"title"`
	Author  string         `json:"author,omitempty"`
	Date    time.Time      `json:"date,omitzero"`
	DateRaw string         `json:"date_raw,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Dated reports whether the header carried a parseable date.
func (m Metadata) Dated() bool {
	return !m.Date.IsZero()
}

// Document is a parsed Markdown file below the content root.
type Document struct {
	Path      string    `json:"path"`
	Metadata  Metadata  `json:"metadata"`
	BodyHTML  string    `json:"body_html"`
	RawBody   string    `json:"-"`
	PlainText string    `json:"-"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
}

// FileInfo is a lightweight representation returned by storage listings.
type FileInfo struct {
	Path    string // slash-separated, relative to the content root, with extension
	Size    int64
	ModTime time.Time
}

// SearchResult is one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Date    string `json:"date,omitempty"`
	Author  string `json:"author,omitempty"`
}
