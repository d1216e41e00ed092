package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

func symbolCmd() *cli.Command {
	return &cli.Command{
		Name:      "symbol",
		Aliases:   []string{"sym"},
		Usage:     "Look up a symbol and its dependencies and dependents",
		ArgsUsage: "<name> [path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "indirect",
				Usage: "Follow relations transitively",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Query a saved snapshot instead of scanning",
			},
		},
		Action: runSymbolCmd,
	}
}

// symbolRelations is the serializable result of one symbol lookup. Each
// relation carries the connecting edge, so type and confidence survive
// into the output.
type symbolRelations struct {
	Symbol       models.Symbol    `json:"symbol" toon:"symbol"`
	Dependencies []graph.Relation `json:"dependencies,omitempty" toon:"dependencies,omitempty"`
	Dependents   []graph.Relation `json:"dependents,omitempty" toon:"dependents,omitempty"`
}

func runSymbolCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("symbol name is required")
	}
	name := c.Args().First()

	result, err := obtainSymbolGraph(c)
	if err != nil {
		return err
	}

	q := graph.NewQuery(result.Graph)
	found := q.SymbolsByName(name)
	if len(found) == 0 {
		return fmt.Errorf("symbol %q not found", name)
	}

	indirect := c.Bool("indirect")
	relations := make([]symbolRelations, 0, len(found))
	for _, sym := range found {
		deps, err := q.Dependencies(sym.ID, indirect)
		if err != nil {
			return err
		}
		dependents, err := q.Dependents(sym.ID, indirect)
		if err != nil {
			return err
		}
		relations = append(relations, symbolRelations{
			Symbol:       sym,
			Dependencies: deps,
			Dependents:   dependents,
		})
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText {
		return formatter.Output(struct {
			Matches []symbolRelations `json:"matches" toon:"matches"`
		}{relations})
	}

	return renderSymbolRelations(formatter, relations)
}

// obtainSymbolGraph builds or restores the graph for a symbol query. The
// directory argument, when present, is the second positional.
func obtainSymbolGraph(c *cli.Context) (*graph.BuildResult, error) {
	if load := c.String("load"); load != "" {
		snapshot, err := graph.Load(load)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return snapshot.Restore()
	}
	return buildGraphAt(c, symbolPathArg(c))
}

func symbolPathArg(c *cli.Context) string {
	if c.Args().Len() > 1 {
		return c.Args().Get(1)
	}
	return "."
}

func renderSymbolRelations(formatter *output.Formatter, relations []symbolRelations) error {
	w := formatter.Writer()
	for i, rel := range relations {
		if i > 0 {
			fmt.Fprintln(w)
		}
		formatter.Info("%s (%s) at %s", rel.Symbol.Name, rel.Symbol.Kind, rel.Symbol.Location())

		if len(rel.Dependencies) > 0 {
			fmt.Fprintln(w, "  Depends on:")
			for _, dep := range rel.Dependencies {
				fmt.Fprintf(w, "    %s  %s  %s\n", dep.Symbol.Name, formatEdge(dep.Edge), dep.Symbol.Location())
			}
		}
		if len(rel.Dependents) > 0 {
			fmt.Fprintln(w, "  Depended on by:")
			for _, dep := range rel.Dependents {
				fmt.Fprintf(w, "    %s  %s  %s\n", dep.Symbol.Name, formatEdge(dep.Edge), dep.Symbol.Location())
			}
		}
		if len(rel.Dependencies) == 0 && len(rel.Dependents) == 0 {
			fmt.Fprintln(w, "  No references in either direction")
		}
	}
	return nil
}

func formatEdge(edge models.DependencyEdge) string {
	return fmt.Sprintf("(%s, %.0f%%)", edge.Type, edge.Confidence*100)
}
