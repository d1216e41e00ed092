package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Build the symbol dependency graph",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print structural metrics",
			},
			&cli.IntFlag{
				Name:  "centrality",
				Usage: "Rank the top N symbols by PageRank (0 = off)",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Write a snapshot of the graph to a file",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Load a previously saved snapshot instead of scanning",
			},
			&cli.BoolFlag{
				Name:  "binary",
				Usage: "Save the snapshot in binary form instead of JSON",
			},
			&cli.StringFlag{
				Name:  "dot",
				Usage: "Diagram syntax for text output: mermaid or dot",
				Value: "mermaid",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	result, err := obtainGraph(c)
	if err != nil {
		return err
	}
	if result.Graph.NodeCount() == 0 {
		color.Yellow("No source files found")
		return nil
	}

	snapshot := graph.NewSnapshot(result, "")

	if save := c.String("save"); save != "" {
		if err := saveSnapshot(snapshot, save, c.Bool("binary")); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	var central []models.SymbolCentrality
	if top := c.Int("centrality"); top > 0 {
		central, err = graph.Centrality(c.Context, result.Graph, top)
		if err != nil {
			return fmt.Errorf("centrality failed: %w", err)
		}
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText {
		if len(central) > 0 {
			return formatter.Output(struct {
				Snapshot   *graph.Snapshot           `json:"snapshot" toon:"snapshot"`
				Centrality []models.SymbolCentrality `json:"centrality" toon:"centrality"`
			}{snapshot, central})
		}
		return formatter.Output(snapshot)
	}

	return renderGraph(formatter, result, snapshot, central, c.String("dot"), c.Bool("metrics"))
}

// obtainGraph either restores a snapshot or scans and links a directory.
func obtainGraph(c *cli.Context) (*graph.BuildResult, error) {
	if load := c.String("load"); load != "" {
		snapshot, err := graph.Load(load)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return snapshot.Restore()
	}

	path := "."
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}
	return buildGraphAt(c, path)
}

func saveSnapshot(snapshot *graph.Snapshot, path string, binary bool) error {
	if binary {
		if err := snapshot.SaveBinary(path); err != nil {
			return err
		}
		color.Green("Snapshot saved to %s (%d symbols, %d edges)",
			path, len(snapshot.Symbols), len(snapshot.Edges))
		return nil
	}

	if err := snapshot.SaveJSON(path); err != nil {
		return err
	}
	data, _ := json.Marshal(snapshot)
	color.Green("Snapshot saved to %s (%d symbols, %d edges, ~%s tokens)",
		path, len(snapshot.Symbols), len(snapshot.Edges),
		output.FormatTokenCount(output.EstimateTokens(string(data))))
	return nil
}

func renderGraph(formatter *output.Formatter, result *graph.BuildResult, snapshot *graph.Snapshot, central []models.SymbolCentrality, syntax string, showMetrics bool) error {
	w := formatter.Writer()

	if syntax == "dot" {
		fmt.Fprintln(w, result.Graph.ToDOT())
	} else {
		fmt.Fprintln(w, "```mermaid")
		fmt.Fprint(w, result.Graph.ToMermaid())
		fmt.Fprintln(w, "```")
	}

	if showMetrics {
		m := snapshot.Metrics
		fmt.Fprintln(w)
		formatter.Info("Graph Metrics:")
		fmt.Fprintf(w, "  Nodes: %d\n", m.TotalNodes)
		fmt.Fprintf(w, "  Edges: %d\n", m.TotalEdges)
		fmt.Fprintf(w, "  Orphans: %d\n", m.OrphanNodes)
		fmt.Fprintf(w, "  Components: %d\n", m.StronglyConnectedComponents)
		fmt.Fprintf(w, "  Avg Out Degree: %.2f\n", m.AverageOutDegree)
		fmt.Fprintf(w, "  Max Depth: %d\n", m.MaxDepth)
		fmt.Fprintf(w, "  Unresolved: %d\n", m.UnresolvedReferences)
	}

	if len(central) > 0 {
		fmt.Fprintln(w)
		formatter.Info("Top Symbols by PageRank:")
		rows := make([][]string, 0, len(central))
		for _, sc := range central {
			rows = append(rows, []string{
				sc.Name,
				fmt.Sprintf("%.4f", sc.PageRank),
				fmt.Sprintf("%d", sc.InDegree),
				fmt.Sprintf("%d", sc.OutDeg),
			})
		}
		table := output.NewTable("", []string{"Symbol", "PageRank", "In", "Out"}, rows, nil, central)
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	return nil
}
