package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes czi's analyzers
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "czi": {
        "command": "czi",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_zombies   Dead symbol classification with confidence scores
  - analyze_graph     Cross-language dependency graph and metrics
  - query_symbol      Symbol lookup with dependency traversal`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server manifest (server.json) and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
