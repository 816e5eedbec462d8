// Package category derives the category hierarchy from document paths.
package category

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/quire/internal/pathsafe"
)

// RootKey names the implicit category of documents with no "/" in their
// path. It can never collide with a real path segment.
const RootKey = "_root"

// Category is a derived grouping of documents sharing a path prefix.
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	// Subcategories maps each subcategory's full path to the number of
	// documents anywhere beneath it.
	Subcategories map[string]int `json:"subcategories"`
	// Documents are the immediate documents, in input order.
	Documents []string `json:"documents"`
}

// Sub is one entry of Category.Subs.
type Sub struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SubcategoryPaths returns the subcategory paths in listing order.
func (c *Category) SubcategoryPaths() []string {
	paths := make([]string, 0, len(c.Subcategories))
	for p := range c.Subcategories {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, pathsafe.Compare)
	return paths
}

// Subs returns the subcategories with display names and counts, in listing
// order.
func (c *Category) Subs() []Sub {
	paths := c.SubcategoryPaths()
	subs := make([]Sub, len(paths))
	for i, p := range paths {
		subs[i] = Sub{Path: p, Name: DisplayName(pathsafe.Last(p)), Count: c.Subcategories[p]}
	}
	return subs
}

// IsRoot reports whether c is the root category.
func (c *Category) IsRoot() bool {
	return c.Key == RootKey
}

// Index maps category keys to categories. The root category is always
// present, even when empty.
type Index map[string]*Category

// Lookup returns the category for key. An empty key means the root.
func (idx Index) Lookup(key string) (*Category, bool) {
	if key == "" || key == RootKey {
		c := idx.Root()
		return c, c != nil
	}
	c, ok := idx[key]
	return c, ok
}

// Root returns the root category.
func (idx Index) Root() *Category {
	return idx[RootKey]
}

// Keys returns every category key except the root, in listing order.
func (idx Index) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		if k != RootKey {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, pathsafe.Compare)
	return keys
}

// Group builds the category index for paths. For a document at a/b/c the
// root reports subcategory a, category a reports subcategory a/b, and
// category a/b lists a/b/c as an immediate document.
func Group(paths []string) Index {
	idx := Index{RootKey: newCategory(RootKey)}
	for _, p := range paths {
		segs := pathsafe.Segments(p)
		if len(segs) == 0 {
			continue
		}
		for depth := 0; depth < len(segs); depth++ {
			key := RootKey
			if depth > 0 {
				key = strings.Join(segs[:depth], "/")
			}
			c := idx.ensure(key)
			if depth == len(segs)-1 {
				c.Documents = append(c.Documents, p)
				continue
			}
			c.Subcategories[strings.Join(segs[:depth+1], "/")]++
		}
	}
	return idx
}

func (idx Index) ensure(key string) *Category {
	c, ok := idx[key]
	if !ok {
		c = newCategory(key)
		idx[key] = c
	}
	return c
}

func newCategory(key string) *Category {
	name := ""
	if key != RootKey {
		name = DisplayName(pathsafe.Last(key))
	}
	return &Category{
		Key:           key,
		Name:          name,
		Subcategories: map[string]int{},
		Documents:     []string{},
	}
}

// DisplayName formats a path segment for display: "-" becomes a space and
// each word is title-cased, so "rust-lang" reads "Rust Lang".
func DisplayName(segment string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(segment, "-", " "))
}
