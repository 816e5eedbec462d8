// Package docservice is the read facade shared by the API, the site and the
// MCP server.
package docservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/breadcrumb"
	"github.com/starford/quire/internal/category"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/pathsafe"
	"github.com/starford/quire/internal/repository"
	"github.com/starford/quire/internal/search"
)

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	Path        string             `json:"path"`
	Metadata    models.Metadata    `json:"metadata"`
	BodyHTML    string             `json:"body_html"`
	Markdown    string             `json:"markdown"`
	Checksum    string             `json:"checksum"`
	Size        int64              `json:"size"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Degraded    bool               `json:"degraded,omitempty"`
	Breadcrumbs []breadcrumb.Crumb `json:"breadcrumbs"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Date      string    `json:"date,omitempty"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryView is one category with its immediate documents resolved.
type CategoryView struct {
	Key           string             `json:"key"`
	Name          string             `json:"name"`
	Root          bool               `json:"root"`
	Subcategories []category.Sub     `json:"subcategories"`
	Documents     []DocumentListItem `json:"documents"`
	Breadcrumbs   []breadcrumb.Crumb `json:"breadcrumbs"`
}

// MaxPreviewBytes bounds the Markdown source accepted by Preview.
const MaxPreviewBytes = 1 << 20

// PreviewResult is ad-hoc Markdown rendered with the document pipeline.
type PreviewResult struct {
	Metadata  models.Metadata `json:"metadata"`
	BodyHTML  string          `json:"body_html"`
	PlainText string          `json:"plain_text"`
	Degraded  bool            `json:"degraded,omitempty"`
}

// Service coordinates the repository and the search backend.
type Service struct {
	repo     *repository.Repository
	searcher search.Searcher
	logger   *slog.Logger
}

// NewService creates a new document service.
func NewService(repo *repository.Repository, searcher search.Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, searcher: searcher, logger: logger}
}

// ListDocuments returns documents sorted by order. limit <= 0 means no
// limit. The second value is the total before pagination.
func (s *Service) ListDocuments(ctx context.Context, order repository.Order, limit, offset int) ([]DocumentListItem, int, error) {
	docs, err := s.repo.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	repository.Sort(docs, order)
	total := len(docs)

	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	items := make([]DocumentListItem, 0, end-offset)
	for _, d := range docs[offset:end] {
		items = append(items, listItem(d))
	}
	return items, total, nil
}

// GetDocument returns the document at path, or apperr.ErrNotFound.
func (s *Service) GetDocument(ctx context.Context, path string) (*DocumentDetail, error) {
	l := s.repo.GetDocument(ctx, path)
	if !l.Found() {
		return nil, apperr.ErrNotFound
	}
	d := l.Document
	return &DocumentDetail{
		Path:        d.Path,
		Metadata:    d.Metadata,
		BodyHTML:    d.BodyHTML,
		Markdown:    d.RawBody,
		Checksum:    d.Checksum,
		Size:        d.Size,
		UpdatedAt:   d.ModTime,
		Degraded:    l.Status == repository.StatusDegraded,
		Breadcrumbs: breadcrumb.Build(d.Path),
	}, nil
}

// Categories groups every listed document.
func (s *Service) Categories(ctx context.Context) (category.Index, error) {
	paths, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return category.Group(paths), nil
}

// Category returns one category. An empty key is the root category.
func (s *Service) Category(ctx context.Context, key string) (*CategoryView, error) {
	if key != "" && !pathsafe.IsSafe(key) {
		return nil, apperr.ErrNotFound
	}
	idx, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := idx.Lookup(key)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	view := &CategoryView{
		Key:           c.Key,
		Name:          c.Name,
		Root:          c.IsRoot(),
		Subcategories: c.Subs(),
		Documents:     make([]DocumentListItem, 0, len(c.Documents)),
		Breadcrumbs:   []breadcrumb.Crumb{},
	}
	if !c.IsRoot() {
		view.Breadcrumbs = breadcrumb.BuildCategory(c.Key)
	}
	for _, p := range c.Documents {
		if l := s.repo.GetDocument(ctx, p); l.Found() {
			view.Documents = append(view.Documents, listItem(l.Document))
		}
	}
	return view, nil
}

// Search runs query against the configured backend.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return s.searcher.Search(ctx, query)
}

// Breadcrumbs returns the trail for a document path.
func (s *Service) Breadcrumbs(_ context.Context, path string) ([]breadcrumb.Crumb, error) {
	if !pathsafe.IsSafe(path) {
		return nil, apperr.ErrNotFound
	}
	return breadcrumb.Build(path), nil
}

// Preview renders Markdown source, header included, exactly as a stored
// document would be, sanitizing included. Nothing is cached or written.
func (s *Service) Preview(_ context.Context, source string) (*PreviewResult, error) {
	if len(source) > MaxPreviewBytes {
		return nil, fmt.Errorf("%w: preview source exceeds %d bytes", apperr.ErrTooLarge, MaxPreviewBytes)
	}
	l, err := s.repo.Preview([]byte(source))
	if err != nil {
		return nil, err
	}
	if l.Err != nil {
		s.logger.Debug("preview: malformed metadata", slog.String("error", l.Err.Error()))
	}
	return &PreviewResult{
		Metadata:  l.Document.Metadata,
		BodyHTML:  l.Document.BodyHTML,
		PlainText: l.Document.PlainText,
		Degraded:  l.Status == repository.StatusDegraded,
	}, nil
}

// Invalidate drops every cached document and listing.
func (s *Service) Invalidate() {
	s.repo.InvalidateAll()
}

func listItem(d *models.Document) DocumentListItem {
	return DocumentListItem{
		Path:      d.Path,
		Title:     d.Metadata.Title,
		Author:    d.Metadata.Author,
		Date:      d.Metadata.DateRaw,
		Checksum:  d.Checksum,
		UpdatedAt: d.ModTime,
	}
}
