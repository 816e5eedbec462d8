package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *docservice.Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Documents.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/*", h.GetCategory)

	// Search.
	r.Get("/search", h.Search)

	// Breadcrumbs.
	r.Get("/breadcrumbs/*", h.Breadcrumbs)

	// Live preview.
	r.Post("/render", h.Render)

	return r
}
