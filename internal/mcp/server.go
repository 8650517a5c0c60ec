// Package mcp exposes the binding table over the Model Context Protocol
// with a stdio transport, so editors and agents can query code-behind
// bindings for a workspace.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codebind/internal/binding"
	"github.com/standardbeagle/codebind/internal/config"
	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/project"
	"github.com/standardbeagle/codebind/internal/provider"
	"github.com/standardbeagle/codebind/internal/types"
	"github.com/standardbeagle/codebind/internal/version"
)

// Server wires the binding service into an MCP server over stdio.
type Server struct {
	cfg      *config.Config
	service  *binding.Service
	model    *project.Model
	registry *provider.Registry
	server   *mcp.Server
}

// NewServer creates the MCP server and registers the binding tools.
func NewServer(cfg *config.Config, svc *binding.Service, model *project.Model, registry *provider.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		service:  svc,
		model:    model,
		registry: registry,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codebind-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves MCP requests over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	debug.SetMCPMode(true)
	debug.LogMCP("serving over stdio\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "binding_for_file",
		Description: "Get the code-behind binding for a markup file: the backing class if resolved, or the unresolved class name with a spelling suggestion.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Markup file path, absolute or relative to the project root",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleBindingForFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "bound_classes",
		Description: "List every class currently bound as code-behind in the project.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleBoundClasses)

	s.server.AddTool(&mcp.Tool{
		Name:        "code_behind_only",
		Description: "Check whether a source file contains only code-behind classes, i.e. every class declared in it backs some markup file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Source file path, absolute or relative to the project root",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleCodeBehindOnly)

	s.server.AddTool(&mcp.Tool{
		Name:        "status",
		Description: "Get server status: open collection, file and binding counts, and the active providers.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleStatus)
}

// pathParams is the argument shape shared by the per-file tools.
type pathParams struct {
	Path string `json:"path"`
}

func (s *Server) handleBindingForFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params pathParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("binding_for_file", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Path == "" {
		return createErrorResponse("binding_for_file", fmt.Errorf("path is required"))
	}

	f := s.fileByPath(params.Path)
	if f == nil {
		return createErrorResponse("binding_for_file", fmt.Errorf("file not in collection: %s", params.Path))
	}

	b := s.service.Binding(f)
	result := map[string]interface{}{
		"success": true,
		"path":    f.Path,
		"bound":   !b.IsZero(),
	}
	switch {
	case b.IsZero():
		// Not a code-behind file
	case b.IsUnresolved():
		result["resolved"] = false
		result["class_name"] = b.FullName()
		if suggestion, ok := s.service.Suggest(b.FullName()); ok {
			result["suggestion"] = suggestion
		}
	default:
		result["resolved"] = true
		result["class_name"] = b.FullName()
		result["class"] = describeClass(b.Class())
	}
	return createJSONResponse(result)
}

func (s *Server) handleBoundClasses(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	coll := s.model.Collection()
	if coll == nil {
		return createErrorResponse("bound_classes", fmt.Errorf("no collection is open"))
	}

	classes := []map[string]interface{}{}
	for _, p := range coll.Projects {
		for _, cls := range s.service.BoundClasses(p) {
			classes = append(classes, describeClass(cls))
		}
	}
	return createJSONResponse(map[string]interface{}{
		"success": true,
		"count":   len(classes),
		"classes": classes,
	})
}

func (s *Server) handleCodeBehindOnly(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params pathParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("code_behind_only", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Path == "" {
		return createErrorResponse("code_behind_only", fmt.Errorf("path is required"))
	}

	f := s.fileByPath(params.Path)
	if f == nil {
		return createErrorResponse("code_behind_only", fmt.Errorf("file not in collection: %s", params.Path))
	}

	return createJSONResponse(map[string]interface{}{
		"success":          true,
		"path":             f.Path,
		"code_behind_only": s.service.ContainsOnlyCodeBehind(f),
	})
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	providers := []string{}
	for _, p := range s.registry.Providers() {
		providers = append(providers, p.Name())
	}

	result := map[string]interface{}{
		"success":   true,
		"version":   version.FullInfo(),
		"root":      s.cfg.Project.Root,
		"bindings":  s.service.Len(),
		"providers": providers,
	}

	if coll := s.model.Collection(); coll != nil {
		files := 0
		for _, p := range coll.Projects {
			files += len(p.Files())
		}
		result["collection"] = coll.Name
		result["projects"] = len(coll.Projects)
		result["files"] = files
	} else {
		result["collection"] = nil
	}
	return createJSONResponse(result)
}

// fileByPath looks the path up in the model, resolving relative paths
// against the project root.
func (s *Server) fileByPath(path string) *types.ProjectFile {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cfg.Project.Root, path)
	}
	return s.model.FileByPath(filepath.ToSlash(path))
}

func describeClass(cls *types.ClassDescriptor) map[string]interface{} {
	return map[string]interface{}{
		"full_name": cls.FullName,
		"file":      cls.FilePath,
		"line":      cls.Line,
		"end_line":  cls.EndLine,
		"kind":      cls.Kind.String(),
	}
}
