// Package web serves the server-rendered HTML site.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/breadcrumb"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/repository"
)

//go:embed templates
var templateFS embed.FS

var pageNames = []string{"home", "category", "document", "search", "preview", "error"}

const previewPlaceholder = "# Welcome to the preview\n\nStart typing Markdown here."

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Title  string
	Footer string
}

// page is the data passed to every template.
type page struct {
	Site        SiteConfig
	Title       string
	Query       string
	Breadcrumbs []breadcrumb.Crumb
	Data        any
	Error       string
}

type previewData struct {
	Source string
	Result *docservice.PreviewResult
}

type homeData struct {
	Root *docservice.CategoryView
	All  []docservice.DocumentListItem
}

// Site renders documents and categories as HTML pages.
type Site struct {
	svc    *docservice.Service
	cfg    SiteConfig
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses the embedded templates.
func New(svc *docservice.Service, cfg SiteConfig, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcs := template.FuncMap{
		// body marks a document body as trusted; it was sanitized at render time.
		"body": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Site{svc: svc, cfg: cfg, pages: pages, logger: logger}, nil
}

// Routes returns the site router.
func (s *Site) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.Home)
	r.Get("/category/*", s.Category)
	r.Get("/docs/*", s.Document)
	r.Get("/search", s.Search)
	r.Get("/preview", s.Preview)
	r.Post("/preview", s.Preview)
	r.Get("/static/site.css", s.Stylesheet)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, apperr.ErrNotFound)
	})
	return r
}

// Home handles GET /: the root category plus every document.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	root, err := s.svc.Category(r.Context(), "")
	if err != nil {
		s.fail(w, err)
		return
	}
	all, _, err := s.svc.ListDocuments(r.Context(), repository.OrderPath, 0, 0)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "home", page{Data: homeData{Root: root, All: all}})
}

// Category handles GET /category/*.
func (s *Site) Category(w http.ResponseWriter, r *http.Request) {
	key := wildcardPath(r)
	if key == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	view, err := s.svc.Category(r.Context(), key)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "category", page{
		Title:       view.Name,
		Breadcrumbs: view.Breadcrumbs,
		Data:        view,
	})
}

// Document handles GET /docs/*.
func (s *Site) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GetDocument(r.Context(), wildcardPath(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "document", page{
		Title:       doc.Metadata.Title,
		Breadcrumbs: doc.Breadcrumbs,
		Data:        doc,
	})
}

// Search handles GET /search. An absent query shows the empty form.
func (s *Site) Search(w http.ResponseWriter, r *http.Request) {
	raw, present := r.URL.Query()["q"]
	if !present {
		s.render(w, http.StatusOK, "search", page{Title: "Search"})
		return
	}
	q := strings.Join(raw, " ")
	p := page{Title: "Search", Query: strings.TrimSpace(q)}

	results, err := s.svc.Search(r.Context(), q)
	switch {
	case errors.Is(err, apperr.ErrInvalidQuery):
		p.Error = "Queries must be between 1 and 100 characters."
		s.render(w, http.StatusBadRequest, "search", p)
		return
	case err != nil:
		s.fail(w, err)
		return
	}
	p.Data = results
	s.render(w, http.StatusOK, "search", p)
}

// Preview handles GET and POST /preview: a form whose submitted Markdown is
// rendered next to it. Nothing is stored.
func (s *Site) Preview(w http.ResponseWriter, r *http.Request) {
	source := previewPlaceholder
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, 4*docservice.MaxPreviewBytes)
		if err := r.ParseForm(); err != nil {
			s.render(w, http.StatusBadRequest, "preview", page{Title: "Preview", Error: "The form could not be read."})
			return
		}
		source = r.PostForm.Get("content")
	}
	p := page{Title: "Preview"}
	result, err := s.svc.Preview(r.Context(), source)
	switch {
	case errors.Is(err, apperr.ErrTooLarge):
		p.Error = "The document is too large to preview."
		p.Data = previewData{Source: source}
		s.render(w, http.StatusRequestEntityTooLarge, "preview", p)
		return
	case err != nil:
		s.fail(w, err)
		return
	}
	p.Data = previewData{Source: source, Result: result}
	s.render(w, http.StatusOK, "preview", p)
}

// Stylesheet serves the embedded stylesheet.
func (s *Site) Stylesheet(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, templateFS, "templates/site.css")
}

func (s *Site) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		s.render(w, http.StatusNotFound, "error", page{Title: "Not found", Error: "The page you requested does not exist."})
		return
	}
	s.logger.Error("web: request failed", slog.String("error", err.Error()))
	s.render(w, http.StatusInternalServerError, "error", page{Title: "Something went wrong", Error: "Please try again later."})
}

func (s *Site) render(w http.ResponseWriter, status int, name string, p page) {
	p.Site = s.cfg
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("web: template failed", slog.String("page", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func wildcardPath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
