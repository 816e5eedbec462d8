package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/repository"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the logical path from the URL (everything after the
// route prefix). Supports encoded slashes (e.g. tech%2Frust-lang).
func wildcardPath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents with optional sorting and pagination
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort order"	Enums(path, title, date)
//	@Success		200		{object}	DocumentListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := repository.ParseOrder(q.Get("sort"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("sort must be one of path, title, date"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListDocuments(r.Context(), order, limit, offset)
	if err != nil {
		writeError(w, err, "list documents")
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{
		Documents: items,
		Total:     total,
	})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a single document by logical path
//	@Tags			documents
//	@Produce		json
//	@Param			path			path		string	true	"Logical document path"
//	@Param			If-None-Match	header		string	false	"Checksum from a previous ETag"
//	@Success		200				{object}	DocumentDetail
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		writeError(w, err, "get document", slog.String("path", path))
		return
	}

	w.Header().Set("ETag", checksum.ETag(doc.Checksum))
	if match := r.Header.Get("If-None-Match"); match != "" && checksum.Matches(match, doc.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListCategories handles GET /api/categories.
//
//	@Summary		Get the full category grouping
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryIndexResponse
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	idx, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, err, "list categories")
		return
	}
	writeJSON(w, http.StatusOK, CategoryIndexResponse{Categories: idx})
}

// GetCategory handles GET /api/categories/*. An empty path is the root
// category.
//
//	@Summary		Get one category with its documents and subcategories
//	@Tags			categories
//	@Produce		json
//	@Param			path	path		string	true	"Category path"
//	@Success		200		{object}	CategoryView
//	@Failure		404		{object}	errResponse
//	@Router			/categories/{path} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	key := wildcardPath(r)
	view, err := h.svc.Category(r.Context(), key)
	if err != nil {
		writeError(w, err, "get category", slog.String("category", key))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Search handles GET /api/search.
//
//	@Summary		Case-insensitive substring search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query (1-100 characters)"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeError(w, err, "search", slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   strings.TrimSpace(q),
		Results: results,
	})
}

// Breadcrumbs handles GET /api/breadcrumbs/*.
//
//	@Summary		Get the breadcrumb trail for a document path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Logical document path"
//	@Success		200		{object}	BreadcrumbResponse
//	@Failure		404		{object}	errResponse
//	@Router			/breadcrumbs/{path} [get]
func (h *Handler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	crumbs, err := h.svc.Breadcrumbs(r.Context(), path)
	if err != nil {
		writeError(w, err, "breadcrumbs", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, BreadcrumbResponse{Path: path, Breadcrumbs: crumbs})
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Content string `json:"content" example:"# Hello" validate:"required"`
}

// Render handles POST /api/render: a live preview of Markdown that is not
// stored anywhere. The source goes through the document pipeline, so the
// returned HTML is sanitized like any served document.
//
//	@Summary		Render Markdown to sanitized HTML without storing it
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Markdown source"
//	@Success		200		{object}	PreviewResult
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	// JSON escaping can grow the source; the service enforces the exact limit.
	r.Body = http.MaxBytesReader(w, r.Body, 2*docservice.MaxPreviewBytes)
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	preview, err := h.svc.Preview(r.Context(), req.Content)
	if err != nil {
		writeError(w, err, "render preview")
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
