package api

import (
	"github.com/starford/quire/internal/breadcrumb"
	"github.com/starford/quire/internal/category"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/models"
)

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// CategoryView is a single category response (aliased from the domain layer).
type CategoryView = docservice.CategoryView

// PreviewResult is the rendered preview response type (aliased from the domain layer).
type PreviewResult = docservice.PreviewResult

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// CategoryIndexResponse wraps the full category grouping, keyed by category
// path; the root category is keyed "_root".
type CategoryIndexResponse struct {
	Categories category.Index `json:"categories" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string                `json:"query" example:"rust" validate:"required"`
	Results []models.SearchResult `json:"results" validate:"required"`
}

// BreadcrumbResponse wraps a breadcrumb trail.
type BreadcrumbResponse struct {
	Path        string             `json:"path" example:"tech/rust-lang" validate:"required"`
	Breadcrumbs []breadcrumb.Crumb `json:"breadcrumbs" validate:"required"`
}
