// Package repository owns the mapping from logical document path to parsed
// document, and the cached listing of every known path.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/cache"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/pathsafe"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/storage"
)

// Status is the outcome of a document lookup.
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	// StatusDegraded means the metadata header failed to decode; the
	// document is served with default metadata.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusDegraded:
		return "degraded"
	default:
		return "not_found"
	}
}

// Lookup is the result of GetDocument. Document is nil only for
// StatusNotFound.
type Lookup struct {
	Status   Status
	Document *models.Document
	// Err carries the *parser.MetadataError of a degraded document.
	Err error
}

// Found reports whether a document is present, degraded or not.
func (l Lookup) Found() bool {
	return l.Status != StatusNotFound
}

type entry struct {
	doc      *models.Document
	parseErr error
}

func (e entry) lookup() Lookup {
	if e.parseErr != nil {
		return Lookup{Status: StatusDegraded, Document: e.doc, Err: e.parseErr}
	}
	return Lookup{Status: StatusFound, Document: e.doc}
}

var errNotFound = errors.New("repository: document not found")

const listingKey = "listing"

// PreviewTitle is the fallback title of a previewed document.
const PreviewTitle = "Preview"

// Repository reads documents from a storage.Provider and caches parsed
// results. It never writes to the content root.
type Repository struct {
	store    storage.Provider
	renderer *render.Renderer
	logger   *slog.Logger

	docs    *cache.Cache[entry]
	listing *cache.Cache[[]string]
}

// New creates a repository over store.
func New(store storage.Provider, renderer *render.Renderer, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		store:    store,
		renderer: renderer,
		logger:   logger,
		docs:     cache.New[entry](),
		listing:  cache.New[[]string](),
	}
}

// ListDocuments returns every document path, ordered case-insensitively with
// exact byte order breaking ties. The result is a copy of the cached listing.
func (r *Repository) ListDocuments(ctx context.Context) ([]string, error) {
	paths, hit, err := r.listing.GetOrCompute(listingKey, func() ([]string, error) {
		return r.walk(context.WithoutCancel(ctx))
	})
	recordCache("listing", hit)
	if err != nil {
		return nil, err
	}
	return slices.Clone(paths), nil
}

func (r *Repository) walk(ctx context.Context) ([]string, error) {
	files, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("repository: list: %w", err)
	}
	ext := r.store.Extension()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, ok := pathsafe.FromFile(f.Path, ext)
		if !ok {
			r.logger.Debug("repository: skip file with unsafe name", slog.String("file", f.Path))
			continue
		}
		paths = append(paths, p)
	}
	slices.SortFunc(paths, pathsafe.Compare)
	metrics.DocumentsListed.Set(float64(len(paths)))
	return paths, nil
}

// GetDocument looks up, parses and caches the document at path. Unsafe and
// hidden paths, missing, empty and unreadable files are StatusNotFound.
func (r *Repository) GetDocument(_ context.Context, path string) Lookup {
	l := r.getDocument(path)
	metrics.DocumentLookups.WithLabelValues(l.Status.String()).Inc()
	return l
}

func (r *Repository) getDocument(path string) Lookup {
	if !pathsafe.IsSafe(path) {
		return Lookup{}
	}
	rel := path + r.store.Extension()
	if r.store.Hidden(rel) {
		return Lookup{}
	}

	if e, ok := r.docs.Get(path); ok {
		info, err := r.store.Stat(rel)
		switch {
		case err != nil:
			r.evict(path)
			r.logStatErr(path, err)
			return Lookup{}
		case info.Size == 0:
			r.evict(path)
			return Lookup{}
		case info.Size == e.doc.Size && info.ModTime.Equal(e.doc.ModTime):
			recordCache("documents", true)
			return e.lookup()
		}
		// Changed on disk since it was cached.
		r.evict(path)
	}

	e, hit, err := r.docs.GetOrCompute(path, func() (entry, error) {
		return r.load(path, rel)
	})
	recordCache("documents", hit)
	if err != nil {
		return Lookup{}
	}
	if !hit {
		metrics.DocumentsCached.Set(float64(r.docs.Len()))
	}
	return e.lookup()
}

// Document is GetDocument for callers that only need found/not found.
// Degraded documents are returned without error.
func (r *Repository) Document(ctx context.Context, path string) (*models.Document, error) {
	l := r.GetDocument(ctx, path)
	if !l.Found() {
		return nil, apperr.ErrNotFound
	}
	return l.Document, nil
}

// All returns every listed document in listing order. Documents that vanish
// between listing and lookup are skipped.
func (r *Repository) All(ctx context.Context) ([]*models.Document, error) {
	paths, err := r.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(paths))
	for _, p := range paths {
		if l := r.GetDocument(ctx, p); l.Found() {
			docs = append(docs, l.Document)
		}
	}
	return docs, nil
}

// InvalidateAll drops both caches.
func (r *Repository) InvalidateAll() {
	r.docs.Invalidate()
	r.listing.Invalidate()
	metrics.CacheInvalidations.Inc()
	metrics.DocumentsCached.Set(0)
	r.logger.Debug("repository: caches invalidated")
}

func (r *Repository) load(path, rel string) (entry, error) {
	info, err := r.store.Stat(rel)
	if err != nil {
		r.logStatErr(path, err)
		return entry{}, errNotFound
	}
	if info.Size == 0 {
		return entry{}, errNotFound
	}
	data, err := r.store.Read(rel)
	if err != nil {
		r.logStatErr(path, err)
		return entry{}, errNotFound
	}
	if len(data) == 0 {
		return entry{}, errNotFound
	}

	doc, parseErr, err := r.build(path, pathsafe.Last(path), data)
	if err != nil {
		r.logger.Warn("repository: render failed", slog.String("path", path), slog.String("error", err.Error()))
		return entry{}, errNotFound
	}
	if parseErr != nil {
		r.logger.Warn("repository: malformed metadata, using defaults",
			slog.String("path", path), slog.String("error", parseErr.Error()))
	}
	doc.Size = info.Size
	doc.ModTime = info.ModTime
	return entry{doc: doc, parseErr: parseErr}, nil
}

// build parses and renders source. parseErr is the *parser.MetadataError of
// a malformed header; err is a render failure.
func (r *Repository) build(path, fallbackTitle string, source []byte) (doc *models.Document, parseErr, err error) {
	res := parser.Parse(source)
	html, err := r.renderer.Render(res.Body)
	if err != nil {
		return nil, nil, err
	}
	return &models.Document{
		Path:      path,
		Metadata:  parser.Typed(res.Metadata, fallbackTitle),
		BodyHTML:  html,
		RawBody:   res.Body,
		PlainText: r.renderer.PlainText(html),
		Checksum:  checksum.Sum(source),
		Size:      int64(len(source)),
	}, res.Err, nil
}

// Preview renders source as if it were a document, without touching the
// content root or the caches. A malformed header yields StatusDegraded.
func (r *Repository) Preview(source []byte) (Lookup, error) {
	doc, parseErr, err := r.build("", PreviewTitle, source)
	if err != nil {
		return Lookup{}, fmt.Errorf("repository: preview: %w", err)
	}
	return entry{doc: doc, parseErr: parseErr}.lookup(), nil
}

func (r *Repository) evict(path string) {
	r.docs.Delete(path)
	metrics.DocumentsCached.Set(float64(r.docs.Len()))
}

func (r *Repository) logStatErr(path string, err error) {
	if storage.IsNotExist(err) {
		return
	}
	r.logger.Warn("repository: read failed", slog.String("path", path), slog.String("error", err.Error()))
}

func recordCache(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.CacheRequests.WithLabelValues(name, result).Inc()
}
