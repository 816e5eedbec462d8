// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes quire's read tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/category"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/repository"
)

const formatURI = "quire://document-format"

// Server wraps the MCP server with quire tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all quire tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents with their titles, dates and authors."),
		mcp.WithString("sort", mcp.Description("Sort order: path (default), title or date (newest first)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read one document: metadata, Markdown source, sanitized HTML and breadcrumbs."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical document path without extension (e.g. tech/rust-lang)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Case-insensitive substring search over titles, bodies, paths, dates and authors."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, 1-100 characters")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("Show a category with its subcategories and documents. "+
			"Without a category, the whole hierarchy is returned."),
		mcp.WithString("category", mcp.Description("Optional category path (e.g. tech/web)")),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_breadcrumbs",
		mcp.WithDescription("Return the navigation trail for a document path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical document path")),
	), s.getBreadcrumbs)

	s.mcp.AddTool(mcp.NewTool("render_markdown",
		mcp.WithDescription("Render Markdown (optionally with a metadata header) exactly as a stored document "+
			"would be rendered, sanitizing included. Nothing is saved."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown source, at most 1 MiB")),
	), s.renderMarkdown)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Describe how documents, paths and metadata headers are interpreted."),
	), s.getDocumentFormat)

	// Resource: document format description.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("How quire reads Markdown documents and their metadata."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error, subject string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", subject))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	order, err := repository.ParseOrder(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, _, err := s.svc.ListDocuments(ctx, order, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = strings.Trim(path, "/")
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(doc)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query)
	if err != nil {
		return errorResult(err, query), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return jsonResult(results)
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := strings.Trim(req.GetString("category", ""), "/")
	if key == "" {
		idx, err := s.svc.Categories(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(outline(idx))
	}
	view, err := s.svc.Category(ctx, key)
	if err != nil {
		return errorResult(err, key), nil
	}
	return jsonResult(view)
}

// categoryEntry is one line of the category outline.
type categoryEntry struct {
	Key           string   `json:"key"`
	Name          string   `json:"name,omitempty"`
	Documents     []string `json:"documents"`
	Subcategories []string `json:"subcategories"`
}

// outline flattens idx into the root followed by every category in path
// order.
func outline(idx category.Index) []categoryEntry {
	cats := []*category.Category{idx.Root()}
	for _, k := range idx.Keys() {
		cats = append(cats, idx[k])
	}
	out := make([]categoryEntry, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryEntry{
			Key:           c.Key,
			Name:          c.Name,
			Documents:     append([]string{}, c.Documents...),
			Subcategories: c.SubcategoryPaths(),
		})
	}
	return out
}

func (s *Server) renderMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preview, err := s.svc.Preview(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(preview)
}

func (s *Server) getBreadcrumbs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	crumbs, err := s.svc.Breadcrumbs(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(crumbs)
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
