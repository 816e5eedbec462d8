// Package breadcrumb builds navigation trails for document paths.
package breadcrumb

import (
	"strings"

	"github.com/starford/quire/internal/category"
	"github.com/starford/quire/internal/pathsafe"
)

// Crumb is one step of a trail.
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CategoryURL is the site link of a category view.
func CategoryURL(prefix string) string {
	return "/category/" + prefix
}

// DocumentURL is the site link of a document view.
func DocumentURL(path string) string {
	return "/docs/" + path
}

// Build returns one crumb per segment of path. Every crumb but the last links
// to the category of the accumulated prefix; the last links to the document.
func Build(path string) []Crumb {
	segs := pathsafe.Segments(path)
	crumbs := make([]Crumb, 0, len(segs))
	for i, seg := range segs {
		prefix := strings.Join(segs[:i+1], "/")
		url := CategoryURL(prefix)
		if i == len(segs)-1 {
			url = DocumentURL(prefix)
		}
		crumbs = append(crumbs, Crumb{Name: category.DisplayName(seg), URL: url})
	}
	return crumbs
}

// BuildCategory is Build for a category view: every crumb, the last
// included, links to a category.
func BuildCategory(prefix string) []Crumb {
	crumbs := Build(prefix)
	if n := len(crumbs); n > 0 {
		crumbs[n-1].URL = CategoryURL(prefix)
	}
	return crumbs
}
