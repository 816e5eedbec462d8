// Package parser splits a Markdown document into its YAML metadata header and
// its body.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/quire/internal/models"
)

const delim = "---"

// DateLayout is the only accepted textual date format (day-month-year).
const DateLayout = "02-01-2006"

// Result holds the output of parsing a Markdown file.
type Result struct {
	Metadata map[string]any
	Body     string
	// Err is a *MetadataError when a header was present but did not decode.
	// Body is still valid in that case.
	Err error
}

// MetadataError reports a header that could not be decoded as a YAML mapping.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string {
	return "parser: decode metadata: " + e.Err.Error()
}

func (e *MetadataError) Unwrap() error { return e.Err }

// Parse separates the metadata header from the body of raw Markdown bytes.
// It never fails outright: a malformed header yields empty metadata, the
// remainder as body, and Result.Err set.
func Parse(data []byte) Result {
	block, body, ok := splitFrontmatter(data)
	if !ok {
		return Result{Body: string(data)}
	}

	var meta map[string]any
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return Result{Body: body, Err: &MetadataError{Err: err}}
	}
	return Result{Metadata: meta, Body: body}
}

// splitFrontmatter returns the header block and the body when data opens with
// a delimiter line and a closing delimiter line follows.
func splitFrontmatter(data []byte) ([]byte, string, bool) {
	var rest []byte
	switch {
	case bytes.HasPrefix(data, []byte(delim+"\n")):
		rest = data[len(delim)+1:]
	case bytes.HasPrefix(data, []byte(delim+"\r\n")):
		rest = data[len(delim)+2:]
	default:
		return nil, "", false
	}

	for off := 0; off < len(rest); {
		line := rest[off:]
		next := len(rest)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = off + i + 1
		}
		if string(bytes.TrimSuffix(line, []byte("\r"))) == delim {
			return rest[:off], string(rest[next:]), true
		}
		off = next
	}
	// No closing delimiter: the whole text is body.
	return nil, "", false
}

// Typed converts a decoded header into models.Metadata. fallbackTitle is
// used when the header has no usable title.
func Typed(meta map[string]any, fallbackTitle string) models.Metadata {
	md := models.Metadata{Title: fallbackTitle}
	for key, value := range meta {
		switch key {
		case "title":
			if s := scalar(value); strings.TrimSpace(s) != "" {
				md.Title = s
			}
		case "author":
			md.Author = scalar(value)
		case "date":
			md.Date, md.DateRaw = parseDate(value)
		default:
			if md.Extra == nil {
				md.Extra = make(map[string]any)
			}
			md.Extra[key] = value
		}
	}
	return md
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// parseDate returns the parsed date (zero when undated) and the raw text.
func parseDate(v any) (time.Time, string) {
	switch t := v.(type) {
	case time.Time:
		return t, t.Format(DateLayout)
	case string:
		raw := strings.TrimSpace(t)
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return time.Time{}, raw
		}
		return d, raw
	default:
		return time.Time{}, scalar(v)
	}
}
