// Package mcp exposes the troubleshooter as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/diagnosis"
)

// Backend is the troubleshooting surface the tools call
type Backend interface {
	Diagnose(ctx context.Context, job api.Job, failure string) (*diagnosis.Report, error)
	FailureLabels(ctx context.Context) ([]string, error)
	RunCheck(ctx context.Context, name, partitionID, channel string) (bool, error)
}

// Tool is one MCP tool implementation
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// Server wraps the mcp-go server with the troubleshooting tools
type Server struct {
	mcpServer *server.MCPServer
	tools     map[string]Tool
}

// NewServer creates the MCP server and registers every tool
func NewServer(backend Backend, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Troubleshooter MCP Server",
			version,
			server.WithToolCapabilities(false),
			server.WithLogging(),
		),
		tools: map[string]Tool{},
	}
	s.registerTools(backend)
	s.registerPrompts()
	return s
}

// MCPServer returns the underlying server for transport setup
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool returns a registered tool by name
func (s *Server) Tool(name string) (Tool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

func (s *Server) registerTools(backend Backend) {
	s.registerTool(
		"diagnose",
		"Walk the causal graph of a failure mode, run every bound diagnostic check for one job, and return the implicated root cause chains",
		&DiagnoseTool{backend: backend},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"failure": map[string]interface{}{
					"type":        "string",
					"description": "Failure mode label, as returned by list_failures",
				},
				"partition_id": map[string]interface{}{
					"type":        "string",
					"description": "Warehouse partition of the job. Alternatively give serial_number, job_number and job_start",
				},
				"serial_number": map[string]interface{}{"type": "string", "description": "Optional: tool serial number"},
				"job_number":    map[string]interface{}{"type": "string", "description": "Optional: job number"},
				"job_start": map[string]interface{}{
					"type":        "string",
					"description": "Optional: job start, 'YYYY-MM-DD HH:MM:SS.ffffff' or a natural date",
				},
				"include_details": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional: include the full depth map and correlation (default false)",
				},
			},
			"required": []string{"failure"},
		},
	)

	s.registerTool(
		"list_failures",
		"List the failure modes known to the knowledge graph",
		&ListFailuresTool{backend: backend},
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	)

	s.registerTool(
		"run_check",
		"Run a single diagnostic check by name against one partition",
		&RunCheckTool{backend: backend},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"check": map[string]interface{}{
					"type":        "string",
					"description": "Check name, e.g. threshold_sup_10450, limit_check, large_pump",
				},
				"partition_id": map[string]interface{}{"type": "string", "description": "Warehouse partition of the job"},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "Optional: data channel or event name for channel-scoped checks",
				},
			},
			"required": []string{"check", "partition_id"},
		},
	)
}

func (s *Server) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal schema for tool %s: %v", name, err))
	}
	s.mcpServer.AddTool(mcp.NewToolWithRawSchema(name, description, schemaJSON), createToolHandler(tool))
}

func createToolHandler(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func (s *Server) registerPrompts() {
	prompt := mcp.Prompt{
		Name:        "troubleshoot_job",
		Description: "Investigate a failed job",
		Arguments: []mcp.PromptArgument{
			{Name: "failure", Description: "Observed failure mode", Required: true},
			{Name: "partition_id", Description: "Warehouse partition of the job", Required: true},
		},
	}

	s.mcpServer.AddPrompt(prompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		failure := request.Params.Arguments["failure"]
		partition := request.Params.Arguments["partition_id"]
		text := fmt.Sprintf("The job in partition %s failed with %q. Call diagnose for it and explain each root cause chain. "+
			"If no chain is confirmed, use run_check on the unmapped triggers' channels where a check exists.", partition, failure)

		return &mcp.GetPromptResult{
			Description: "Failed job investigation",
			Messages: []mcp.PromptMessage{{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			}},
		}, nil
	})
}
