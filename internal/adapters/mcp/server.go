package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okian/robonalysis/pkg/logger"
)

// ServerName is advertised to MCP clients.
const ServerName = "robonalysis"

// NewServer builds a stdio-ready MCP server over deps.
func NewServer(deps Dependencies, version string, l logger.Logger) *server.DefaultServer {
	tools := NewTools(deps, l)
	s := server.NewDefaultServer(ServerName, version)

	s.HandleListTools(func(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
		return &mcp.ListToolsResult{Tools: tools.List()}, nil
	})
	s.HandleCallTool(tools.Call)

	return s
}
