// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the conversion report for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/pageservice"
)

const outputFormatURI = "wikihugo://output-format"

// Server wraps the MCP server with wikihugo tools.
type Server struct {
	mcp *server.MCPServer
	svc *pageservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *pageservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"wikihugo",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List converted pages, optionally filtered by category or status."),
		mcp.WithString("category", mcp.Description("Only pages filed in this category")),
		mcp.WithString("status", mcp.Description("Only pages with this status: written, unchanged or redirect")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of pages (default 50)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a converted page: its front matter fields, generated content, "+
			"resolved wikilinks and backlinks."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the page (e.g. Gitara/Akord.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through converted page content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("list_broken_links",
		mcp.WithDescription("List wikilinks that did not resolve, with the reason for each."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of links (default all)")),
	), s.listBrokenLinks)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages whose wikilinks resolved to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the page to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("resolve_wikilink",
		mcp.WithDescription("Resolve one wikilink destination as if it were written on the given page. "+
			"Reports the resolution kind (page, redirect, category or broken), the target page "+
			"and the Markdown that would replace the link."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Path of the page the link is written on")),
		mcp.WithString("dest", mcp.Required(), mcp.Description("Wikilink destination, e.g. Stary_chwyt")),
	), s.resolveWikilink)

	s.mcp.AddTool(mcp.NewTool("get_output_contract",
		mcp.WithDescription("Returns the format of the generated Hugo pages. "+
			"Call this before interpreting page content or front matter."),
	), s.getOutputContract)

	// Resource: output format contract.
	s.mcp.AddResource(
		mcp.NewResource(outputFormatURI, "Output Format Contract",
			mcp.WithResourceDescription("Format of the Hugo pages produced by the converter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readOutputFormatResource,
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

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListPages(ctx, req.GetInt("limit", 50), 0,
		req.GetString("category", ""), req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"pages": items, "total": total})
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page)
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listBrokenLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links, err := s.svc.BrokenLinks(ctx, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(links) == 0 {
		return mcp.NewToolResultText("no broken links"), nil
	}
	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = fmt.Sprintf("%s: [%s](%s): %s", l.Source, l.Anchor, l.Destination, l.Diagnostic)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	sources := make([]string, 0, len(bl))
	seen := make(map[string]bool, len(bl))
	for _, l := range bl {
		if !seen[l.Source] {
			seen[l.Source] = true
			sources = append(sources, l.Source)
		}
	}
	return mcp.NewToolResultText(strings.Join(sources, "\n")), nil
}

func (s *Server) resolveWikilink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dest, err := req.RequireString("dest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ResolveLink(ctx, from, dest)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) getOutputContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OutputFormatContract), nil
}

func (s *Server) readOutputFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      outputFormatURI,
			MIMEType: "text/markdown",
			Text:     OutputFormatContract,
		},
	}, nil
}
