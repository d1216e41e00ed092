package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/service/analysis"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory to analyze. Defaults to current directory if empty."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ZombiesInput adds classification options.
type ZombiesInput struct {
	AnalyzeInput
	MinConfidence float64 `json:"min_confidence,omitempty" jsonschema:"Minimum confidence threshold (0.0-1.0). Default 0."`
	NoGit         bool    `json:"no_git,omitempty" jsonschema:"Skip git history signals even inside a repository."`
	Top           int     `json:"top,omitempty" jsonschema:"Limit output to the N highest-confidence items. 0 means all."`
}

// GraphInput adds graph-specific options.
type GraphInput struct {
	AnalyzeInput
	IncludeCentrality bool `json:"include_centrality,omitempty" jsonschema:"Include PageRank centrality for the top symbols."`
	CentralityTop     int  `json:"centrality_top,omitempty" jsonschema:"Number of symbols to rank by centrality. Default 10."`
}

// QuerySymbolInput identifies a symbol to look up.
type QuerySymbolInput struct {
	AnalyzeInput
	Name     string `json:"name" jsonschema:"Symbol name to look up."`
	Indirect bool   `json:"indirect,omitempty" jsonschema:"Follow dependencies and dependents transitively."`
}

// Helper functions

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func newService() *analysis.Service {
	return analysis.New(analysis.WithConfig(config.LoadOrDefault()))
}

// Tool handlers

func handleAnalyzeZombies(ctx context.Context, req *mcp.CallToolRequest, input ZombiesInput) (*mcp.CallToolResult, any, error) {
	path := getPath(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	svc := newService()
	defer svc.Close()
	if input.MinConfidence > 0 {
		svc.Config().Analysis.MinConfidence = input.MinConfidence
	}

	report, err := svc.AnalyzeZombies(ctx, path, analysis.ZombieOptions{NoGit: input.NoGit})
	if err != nil {
		return toolError(err.Error())
	}
	if report.Metrics.TotalNodes == 0 {
		return toolError("no source files found")
	}

	if input.Top > 0 && len(report.Items) > input.Top {
		report.Items = report.Items[:input.Top]
	}

	return toolResult(report, format)
}

func handleAnalyzeGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	path := getPath(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	svc := newService()
	defer svc.Close()

	result, err := svc.BuildGraph(ctx, path, analysis.GraphOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	if result.Graph.NodeCount() == 0 {
		return toolError("no source files found")
	}

	snapshot := graph.NewSnapshot(result, "")

	if input.IncludeCentrality {
		top := input.CentralityTop
		if top <= 0 {
			top = 10
		}
		central, err := graph.Centrality(ctx, result.Graph, top)
		if err != nil {
			return toolError(err.Error())
		}
		out := struct {
			Snapshot   *graph.Snapshot           `json:"snapshot" toon:"snapshot"`
			Centrality []models.SymbolCentrality `json:"centrality" toon:"centrality"`
		}{snapshot, central}
		return toolResult(out, format)
	}

	return toolResult(snapshot, format)
}

// symbolMatch is one query_symbol result entry. Relations carry the
// connecting edge, so callers see relationship type and confidence.
type symbolMatch struct {
	Symbol       models.Symbol    `json:"symbol" toon:"symbol"`
	Dependencies []graph.Relation `json:"dependencies,omitempty" toon:"dependencies,omitempty"`
	Dependents   []graph.Relation `json:"dependents,omitempty" toon:"dependents,omitempty"`
}

func handleQuerySymbol(ctx context.Context, req *mcp.CallToolRequest, input QuerySymbolInput) (*mcp.CallToolResult, any, error) {
	path := getPath(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	if input.Name == "" {
		return toolError("name is required")
	}

	svc := newService()
	defer svc.Close()

	result, err := svc.BuildGraph(ctx, path, analysis.GraphOptions{})
	if err != nil {
		return toolError(err.Error())
	}

	q := graph.NewQuery(result.Graph)
	found := q.SymbolsByName(input.Name)
	if len(found) == 0 {
		return toolError(fmt.Sprintf("symbol %q not found", input.Name))
	}

	matches := make([]symbolMatch, 0, len(found))
	for _, sym := range found {
		deps, err := q.Dependencies(sym.ID, input.Indirect)
		if err != nil {
			return toolError(err.Error())
		}
		dependents, err := q.Dependents(sym.ID, input.Indirect)
		if err != nil {
			return toolError(err.Error())
		}
		matches = append(matches, symbolMatch{
			Symbol:       sym,
			Dependencies: deps,
			Dependents:   dependents,
		})
	}

	out := struct {
		Matches []symbolMatch `json:"matches" toon:"matches"`
	}{matches}
	return toolResult(out, format)
}
