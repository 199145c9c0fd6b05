// Package mcp exposes the resolution engine to an MCP host over stdio.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/resolve"
)

//go:embed instructions.md
var instructions string

const resourceScheme = "tekladoc://"

type Server struct {
	mcpServer *server.MCPServer
	engine    *resolve.Engine
	docsDir   string
}

func NewServer(engine *resolve.Engine, docsDir string) *Server {
	s := &Server{engine: engine, docsDir: docsDir}

	mcpServer := server.NewMCPServer(
		"tekladoc",
		"1.0.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("search_api",
			mcp.WithDescription("Search the Tekla Structures API reference by free text. Matches class, method, property and namespace names with typo tolerance."),
			mcp.WithString("query",
				mcp.Description("Search query (name, namespace or keyword)"),
				mcp.Required(),
			),
			mcp.WithString("kind",
				mcp.Description(`Restrict results to one kind (e.g. "class", "method"); "all" disables filtering`),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 10)"),
			),
		),
		s.handleSearch,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_class_details",
			mcp.WithDescription("Resolve a single class by name. Optionally includes constructors, properties, methods, inheritance chain and code examples from the class page."),
			mcp.WithString("name",
				mcp.Description(`Class name, e.g. "Beam" or "Tekla.Structures.Model.Beam"`),
				mcp.Required(),
			),
			mcp.WithBoolean("include_members",
				mcp.Description("Include the full member breakdown (default false)"),
			),
		),
		s.handleClassDetails,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_method_details",
			mcp.WithDescription("Resolve a method by name, optionally scoped to a class."),
			mcp.WithString("name",
				mcp.Description(`Method name, e.g. "Insert"`),
				mcp.Required(),
			),
			mcp.WithString("class_name",
				mcp.Description("Optional class name fragment to scope the lookup"),
			),
		),
		s.handleMethodDetails,
	)

	mcpServer.AddTool(
		mcp.NewTool("browse_namespace",
			mcp.WithDescription(`List the API reference under a namespace prefix, e.g. "Tekla.Structures.Model".`),
			mcp.WithString("namespace",
				mcp.Description("Namespace prefix to browse"),
				mcp.Required(),
			),
			mcp.WithBoolean("include_members",
				mcp.Description("Also list methods, properties and other members (default: types only)"),
			),
		),
		s.handleBrowseNamespace,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_code_examples",
			mcp.WithDescription("Find sample programs that reference an API element, with code snippets."),
			mcp.WithString("element",
				mcp.Description(`API element name, e.g. "Beam"`),
				mcp.Required(),
			),
			mcp.WithString("language",
				mcp.Description(`Snippet language filter ("csharp", "vb", or "all")`),
			),
		),
		s.handleCodeExamples,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_example_categories",
			mcp.WithDescription("List the categories of the example corpus."),
		),
		s.handleExampleCategories,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_statistics",
			mcp.WithDescription("Report dataset statistics: record counts per kind, example and snippet counts."),
		),
		s.handleStatistics,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			resourceScheme+"{page}",
			"Tekla API documentation page",
			mcp.WithTemplateDescription("Read a full documentation page as Markdown. Search results reference pages through their source_page field."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	kind := model.KindAll
	if k, ok := args["kind"].(string); ok && k != "" {
		kind = k
	}
	limit := 0
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	results := s.engine.Search(ctx, query, kind, limit)
	return jsonResult(results)
}

func (s *Server) handleClassDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	includeMembers, _ := args["include_members"].(bool)

	rec := s.engine.GetClassDetails(ctx, name, includeMembers)
	if rec == nil {
		return mcp.NewToolResultText(fmt.Sprintf("no class found matching %q", name)), nil
	}
	return jsonResult(rec)
}

func (s *Server) handleMethodDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	className, _ := args["class_name"].(string)

	rec := s.engine.GetMethodDetails(ctx, name, className)
	if rec == nil {
		return mcp.NewToolResultText(fmt.Sprintf("no method found matching %q", name)), nil
	}
	return jsonResult(rec)
}

func (s *Server) handleBrowseNamespace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	namespace, _ := args["namespace"].(string)
	if namespace == "" {
		return mcp.NewToolResultError("missing required parameter: namespace"), nil
	}
	includeMembers, _ := args["include_members"].(bool)

	records := s.engine.BrowseNamespace(namespace, includeMembers)
	return jsonResult(records)
}

func (s *Server) handleCodeExamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	element, _ := args["element"].(string)
	if element == "" {
		return mcp.NewToolResultError("missing required parameter: element"), nil
	}
	language := model.KindAll
	if l, ok := args["language"].(string); ok && l != "" {
		language = l
	}

	views := s.engine.GetCodeExamples(element, language)
	return jsonResult(views)
}

func (s *Server) handleExampleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.GetExampleCategories())
}

func (s *Server) handleStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.GetStatistics())
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	page := strings.TrimPrefix(uri, resourceScheme)
	if page == "" || strings.Contains(page, "..") {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	html, err := os.ReadFile(filepath.Join(s.docsDir, filepath.FromSlash(page)))
	if err != nil {
		return nil, fmt.Errorf("reading page %s: %w", page, err)
	}

	markdown, err := htmltomarkdown.ConvertString(string(html))
	if err != nil {
		return nil, fmt.Errorf("converting page %s: %w", page, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     markdown,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
