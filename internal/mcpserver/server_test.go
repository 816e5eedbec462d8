package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quire/internal/breadcrumb"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/search"
	"github.com/starford/quire/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, repo := testutil.TestRepository(t, map[string]string{
		"about.md":          "---\ntitle: About\n---\nHello there.",
		"tech/rust-lang.md": "---\ntitle: Rust\ndate: 01-02-2024\n---\nOwnership *rules*.",
		"tech/go.md":        "---\ntitle: Go\ndate: 01-03-2024\n---\nGoroutines.",
	})
	svc := docservice.NewService(repo, search.New(repo, testutil.Logger()), testutil.Logger())
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "get_breadcrumbs":
		result, err = srv.getBreadcrumbs(ctx, req)
	case "render_markdown":
		result, err = srv.renderMarkdown(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListDocuments(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_documents", map[string]interface{}{"sort": "date"})
	var items []docservice.DocumentListItem
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 3 || items[0].Path != "tech/go" || items[2].Path != "about" {
		t.Errorf("items = %+v", items)
	}

	r = callTool(t, srv, "list_documents", map[string]interface{}{"sort": "size"})
	if !r.IsError {
		t.Error("expected error for unknown sort")
	}
}

func TestReadDocument(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "tech/rust-lang"})
	var doc docservice.DocumentDetail
	if err := json.Unmarshal([]byte(resultText(r)), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Metadata.Title != "Rust" || !strings.Contains(doc.BodyHTML, "<em>rules</em>") {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Markdown != "Ownership *rules*." {
		t.Errorf("markdown = %q", doc.Markdown)
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv := testServer(t)
	for _, p := range []string{"nope", "../etc/passwd"} {
		r := callTool(t, srv, "read_document", map[string]interface{}{"path": p})
		if !r.IsError {
			t.Errorf("%s: expected error for missing document", p)
		}
	}
}

func TestSearchDocuments(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_documents", map[string]interface{}{"query": "OWNERSHIP"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"path": "tech/rust-lang"`) {
		t.Errorf("results = %s", resultText(r))
	}

	r = callTool(t, srv, "search_documents", map[string]interface{}{"query": "zzz"})
	if resultText(r) != "no documents found" {
		t.Errorf("empty result = %q", resultText(r))
	}

	r = callTool(t, srv, "search_documents", map[string]interface{}{"query": strings.Repeat("q", 101)})
	if !r.IsError {
		t.Error("expected error for over-long query")
	}
}

func TestListCategories(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	var entries []categoryEntry
	if err := json.Unmarshal([]byte(resultText(r)), &entries); err != nil {
		t.Fatalf("decode outline: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "_root" || entries[1].Key != "tech" {
		t.Fatalf("outline = %+v", entries)
	}
	if len(entries[0].Documents) != 1 || entries[0].Documents[0] != "about" {
		t.Errorf("root documents = %v", entries[0].Documents)
	}
	if len(entries[0].Subcategories) != 1 || entries[0].Subcategories[0] != "tech" {
		t.Errorf("root subcategories = %v", entries[0].Subcategories)
	}

	r = callTool(t, srv, "list_categories", map[string]interface{}{"category": "tech"})
	var view docservice.CategoryView
	if err := json.Unmarshal([]byte(resultText(r)), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Documents) != 2 {
		t.Errorf("tech documents = %+v", view.Documents)
	}

	r = callTool(t, srv, "list_categories", map[string]interface{}{"category": "missing"})
	if !r.IsError {
		t.Error("expected error for missing category")
	}
}

func TestGetBreadcrumbs(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_breadcrumbs", map[string]interface{}{"path": "tech/rust-lang"})
	var crumbs []breadcrumb.Crumb
	if err := json.Unmarshal([]byte(resultText(r)), &crumbs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(crumbs) != 2 || crumbs[0].Name != "Tech" || crumbs[1].Name != "Rust Lang" {
		t.Errorf("crumbs = %+v", crumbs)
	}
}

func TestGetDocumentFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_document_format", nil)
	if !strings.Contains(resultText(r), "DD-MM-YYYY") {
		t.Error("format description missing date layout")
	}
}

func TestRenderMarkdown(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "render_markdown", map[string]interface{}{
		"content": "---\ntitle: Draft\n---\n**bold** <script>alert(1)</script>",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var preview docservice.PreviewResult
	if err := json.Unmarshal([]byte(resultText(r)), &preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if preview.Metadata.Title != "Draft" || !strings.Contains(preview.BodyHTML, "<strong>bold</strong>") {
		t.Errorf("preview = %+v", preview)
	}
	if strings.Contains(preview.BodyHTML, "<script") || strings.Contains(preview.BodyHTML, "alert(1)") {
		t.Errorf("script survived: %s", preview.BodyHTML)
	}

	r = callTool(t, srv, "render_markdown", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without content")
	}
}
