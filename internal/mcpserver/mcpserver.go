package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all czi analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all czi tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "czi",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds all czi analyzer tools to the server.
func (s *Server) registerTools() {
	// Zombie code classification
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_zombies",
		Description: describeZombies(),
	}, handleAnalyzeZombies)

	// Dependency graph with structural metrics
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_graph",
		Description: describeGraph(),
	}, handleAnalyzeGraph)

	// Symbol lookup with dependency traversal
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_symbol",
		Description: describeQuerySymbol(),
	}, handleQuerySymbol)
}
