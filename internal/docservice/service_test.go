package docservice_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/breadcrumb"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/repository"
	"github.com/starford/quire/internal/search"
	"github.com/starford/quire/internal/testutil"
)

func newService(t *testing.T, files map[string]string) *docservice.Service {
	t.Helper()
	_, repo := testutil.TestRepository(t, files)
	return docservice.NewService(repo, search.New(repo, testutil.Logger()), testutil.Logger())
}

var fixture = map[string]string{
	"about.md":          "---\ntitle: About\n---\nAbout page.",
	"tech/go.md":        "---\ntitle: Go Notes\ndate: 10-01-2024\n---\nGo body.",
	"tech/rust-lang.md": "---\ntitle: Rust\ndate: 05-06-2024\nauthor: Ferris\n---\nRust body.",
	"tech/web/css.md":   "---\ntitle: Cascading\n---\nStyles.",
	"broken.md":         "---\ntitle: [oops\n---\nStill readable.",
}

func TestListDocuments_Sort(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	items, total, err := svc.ListDocuments(ctx, repository.OrderPath, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, "about", items[0].Path)

	byDate, _, err := svc.ListDocuments(ctx, repository.OrderDate, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "tech/rust-lang", byDate[0].Path)
	assert.Equal(t, "tech/go", byDate[1].Path)
}

func TestListDocuments_Paginate(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	page, total, err := svc.ListDocuments(ctx, repository.OrderPath, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "broken", page[0].Path)
	assert.Equal(t, "tech/go", page[1].Path)

	empty, _, err := svc.ListDocuments(ctx, repository.OrderPath, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetDocument(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	doc, err := svc.GetDocument(ctx, "tech/rust-lang")
	require.NoError(t, err)
	assert.Equal(t, "Rust", doc.Metadata.Title)
	assert.False(t, doc.Degraded)
	assert.Equal(t, []breadcrumb.Crumb{
		{Name: "Tech", URL: "/category/tech"},
		{Name: "Rust Lang", URL: "/docs/tech/rust-lang"},
	}, doc.Breadcrumbs)

	broken, err := svc.GetDocument(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, broken.Degraded)
	assert.Equal(t, "broken", broken.Metadata.Title)

	_, err = svc.GetDocument(ctx, "../secret")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCategory(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	root, err := svc.Category(ctx, "")
	require.NoError(t, err)
	assert.True(t, root.Root)
	require.Len(t, root.Subcategories, 1)
	assert.Equal(t, "tech", root.Subcategories[0].Path)
	assert.Equal(t, 3, root.Subcategories[0].Count)
	assert.Len(t, root.Documents, 2)

	tech, err := svc.Category(ctx, "tech")
	require.NoError(t, err)
	assert.Equal(t, "Tech", tech.Name)
	require.Len(t, tech.Documents, 2)
	assert.Equal(t, "Go Notes", tech.Documents[0].Title)
	assert.Equal(t, []breadcrumb.Crumb{{Name: "Tech", URL: "/category/tech"}}, tech.Breadcrumbs)

	_, err = svc.Category(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Category(ctx, "../x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearchAndBreadcrumbs(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	results, err := svc.Search(ctx, "ferris")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tech/rust-lang", results[0].Path)

	_, err = svc.Search(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidQuery)

	crumbs, err := svc.Breadcrumbs(ctx, "tech/web/css")
	require.NoError(t, err)
	assert.Len(t, crumbs, 3)

	_, err = svc.Breadcrumbs(ctx, "a//b")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPreview(t *testing.T) {
	svc := newService(t, fixture)
	ctx := context.Background()

	res, err := svc.Preview(ctx, "---\ntitle: Draft\n---\n# Hi\n\n<script>alert(1)</script><b onclick=\"x()\">bold</b>")
	require.NoError(t, err)
	assert.Equal(t, "Draft", res.Metadata.Title)
	assert.Contains(t, res.BodyHTML, "<h1")
	assert.Contains(t, res.BodyHTML, "bold")
	assert.NotContains(t, res.BodyHTML, "<script")
	assert.NotContains(t, res.BodyHTML, "alert(1)")
	assert.NotContains(t, res.BodyHTML, "onclick")
	assert.False(t, res.Degraded)

	res, err = svc.Preview(ctx, "no header at all")
	require.NoError(t, err)
	assert.Equal(t, repository.PreviewTitle, res.Metadata.Title)

	res, err = svc.Preview(ctx, "---\ntitle: [oops\n---\nbody")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Contains(t, res.BodyHTML, "body")

	_, err = svc.Preview(ctx, strings.Repeat("x", docservice.MaxPreviewBytes+1))
	assert.ErrorIs(t, err, apperr.ErrTooLarge)

	// Previews never become documents.
	_, total, err := svc.ListDocuments(ctx, repository.OrderPath, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
