// Package mcp exposes the §6.5 in-process API (internal/project) as a
// Model Context Protocol server, the same way the teacher's
// internal/mcp/server.go exposes MasterIndex search over stdio for editor
// integrations.
package mcp

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cmsis-rte/rtecore/internal/config"
	"github.com/cmsis-rte/rtecore/internal/project"
	"github.com/cmsis-rte/rtecore/internal/toolchain"
)

// Server wraps one in-memory project.Project, created on demand by the
// create_project tool, behind stdio MCP tool calls.
type Server struct {
	server  *mcp.Server
	proj    *project.Project
	toolCfg *config.Config
}

// NewServer builds an MCP server with no project loaded yet; create_project
// must be called before resolve/apply_and_generate/check_pack_requirements.
func NewServer(cfg *config.Config) *Server {
	s := &Server{toolCfg: cfg}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "rtecore-mcp-server",
		Version: "0.1.0",
	}, nil)
	s.registerTools()
	return s
}

// Run serves the MCP protocol over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "create_project",
		Description: "Load every installed pack under pack_root and bind a project to the given *.cprj file, ready to resolve.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"cprj_file": {Type: "string", Description: "Path to the *.cprj project file"},
				"pack_root": {Type: "string", Description: "Directory containing installed *.pdsc packs"},
				"toolchain": {Type: "string", Description: "Compiler family name, e.g. AC6 or GCC"},
				"toolchain_version": {Type: "string", Description: "Installed compiler version, e.g. 6.18.0"},
			},
			Required: []string{"cprj_file", "pack_root"},
		},
	}, s.handleCreateProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "resolve",
		Description: "Pin required components and run the dependency solver's fixed-point loop against the current project.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleResolve)

	s.server.AddTool(&mcp.Tool{
		Name:        "check_pack_requirements",
		Description: "List the project's required packs that are not currently installed.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleCheckPackRequirements)

	s.server.AddTool(&mcp.Tool{
		Name:        "apply_and_generate",
		Description: "Write the project's .cpinstall/.cpinstall.json missing-pack reports and, if SVD peripherals were supplied, the CMSIS header/partition/SFD/memory-map artifacts to output_dir.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"output_dir":  {Type: "string", Description: "Directory artifacts are written to"},
				"device_name": {Type: "string", Description: "Device name used in generated filenames"},
			},
			Required: []string{"output_dir", "device_name"},
		},
	}, s.handleApplyAndGenerate)

	s.server.AddTool(&mcp.Tool{
		Name:        "set_package_filter",
		Description: "Validate and apply a package-filter JSON body (use_all_packs/selected_packs/latest_packs) to the current project's model; a canonical_vendors entry is validated but not applied.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"use_all_packs":  {Type: "boolean"},
				"selected_packs": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				"latest_packs":   {Type: "boolean"},
			},
		},
	}, s.handleSetPackageFilter)
}

func (s *Server) handleCreateProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		CprjFile         string `json:"cprj_file"`
		PackRoot         string `json:"pack_root"`
		Toolchain        string `json:"toolchain"`
		ToolchainVersion string `json:"toolchain_version"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResult("create_project", err), nil
	}

	registry := toolchain.NewRegistry()
	if params.Toolchain != "" {
		if err := registry.Install(params.Toolchain, params.ToolchainVersion); err != nil {
			return errorResult("create_project", err), nil
		}
	}

	proj, err := project.CreateProject(params.CprjFile, params.PackRoot, registry)
	if err != nil {
		return errorResult("create_project", err), nil
	}
	s.proj = proj

	return jsonResult(map[string]any{
		"required_packs":      len(proj.RequiredPacks),
		"required_components": len(proj.RequiredComponents),
	})
}

func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.proj == nil {
		return errorResult("resolve", errNoProject), nil
	}
	report := s.proj.Resolve()

	results := make(map[string]string, len(report.Results))
	for aggID, r := range report.Results {
		results[string(aggID)] = r.String()
	}
	diags := make([]string, len(report.Diagnostics))
	for i, d := range report.Diagnostics {
		diags[i] = d.String()
	}
	return jsonResult(map[string]any{"results": results, "diagnostics": diags})
}

func (s *Server) handleCheckPackRequirements(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.proj == nil {
		return errorResult("check_pack_requirements", errNoProject), nil
	}
	missing := s.proj.CheckPackRequirements()
	ids := make([]string, len(missing))
	for i, m := range missing {
		ids[i] = m.PackID()
	}
	return jsonResult(map[string]any{"missing_packs": ids})
}

func (s *Server) handleApplyAndGenerate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.proj == nil {
		return errorResult("apply_and_generate", errNoProject), nil
	}
	var params struct {
		OutputDir  string `json:"output_dir"`
		DeviceName string `json:"device_name"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResult("apply_and_generate", err), nil
	}
	if err := s.proj.ApplyAndGenerate(params.OutputDir, params.DeviceName); err != nil {
		return errorResult("apply_and_generate", err), nil
	}
	return jsonResult(map[string]any{"output_dir": params.OutputDir})
}

func (s *Server) handleSetPackageFilter(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.proj == nil {
		return errorResult("set_package_filter", errNoProject), nil
	}
	filter, err := config.ValidatePackageFilter(req.Params.Arguments)
	if err != nil {
		return errorResult("set_package_filter", err), nil
	}
	s.proj.Filter(filter.ToModelFilter())
	return jsonResult(map[string]any{"applied": true})
}

var errNoProject = errors.New("no project loaded: call create_project first")
