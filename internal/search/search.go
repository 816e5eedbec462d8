// Package search answers case-insensitive substring queries over the
// document set.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/repository"
)

const (
	// MaxQueryLength is the longest accepted query, in characters.
	MaxQueryLength = 100
	// ExcerptLength is the excerpt size, in characters.
	ExcerptLength = 200
)

// Searcher is implemented by every search backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Source is the read side of the content repository.
type Source interface {
	ListDocuments(ctx context.Context) ([]string, error)
	GetDocument(ctx context.Context, path string) repository.Lookup
}

// ValidateQuery trims query and checks its length. Errors wrap
// apperr.ErrInvalidQuery.
func ValidateQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	err := validation.Validate(q,
		validation.Required,
		validation.RuneLength(1, MaxQueryLength),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidQuery, err)
	}
	return q, nil
}

// Matches reports whether lowerQuery occurs in any searchable field of doc.
// lowerQuery must already be lower-cased.
func Matches(doc *models.Document, lowerQuery string) bool {
	for _, field := range Fields(doc) {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// Fields returns the searchable fields of doc: title, plain-text body, path,
// date and author.
func Fields(doc *models.Document) []string {
	return []string{
		doc.Metadata.Title,
		doc.PlainText,
		doc.Path,
		doc.Metadata.DateRaw,
		doc.Metadata.Author,
	}
}

// ResultFor builds the search hit for doc.
func ResultFor(doc *models.Document) models.SearchResult {
	return models.SearchResult{
		Path:    doc.Path,
		Title:   doc.Metadata.Title,
		Excerpt: render.Excerpt(doc.PlainText, ExcerptLength),
		Date:    doc.Metadata.DateRaw,
		Author:  doc.Metadata.Author,
	}
}

// Engine scans every listed document on each query.
type Engine struct {
	src    Source
	logger *slog.Logger
}

// New creates a scanning engine over src.
func New(src Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, logger: logger}
}

// Search returns matching documents in listing order.
func (e *Engine) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q, err := ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	}()

	paths, err := e.src.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: list: %w", err)
	}

	lq := strings.ToLower(q)
	results := []models.SearchResult{}
	for _, p := range paths {
		l := e.src.GetDocument(ctx, p)
		if !l.Found() {
			e.logger.Debug("search: skip unavailable document", slog.String("path", p))
			continue
		}
		if Matches(l.Document, lq) {
			results = append(results, ResultFor(l.Document))
		}
	}
	return results, nil
}
