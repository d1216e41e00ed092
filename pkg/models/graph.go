package models

import (
	"fmt"
	"strings"
)

// DependencyGraph is a directed multigraph over symbols. Nodes and edges
// live in arenas addressed by stable integer indices; the symbol-id index is
// a separate map so node data stays free of live references and the whole
// value serializes cleanly. Cycles are legal.
type DependencyGraph struct {
	nodes []Symbol
	edges []DependencyEdge
	index map[string]int32
	out   [][]int32
	in    [][]int32
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		index: make(map[string]int32),
	}
}

// AddSymbol inserts a symbol node. Re-adding an id returns the existing
// index with added=false; the stored symbol is not overwritten.
func (g *DependencyGraph) AddSymbol(sym Symbol) (int32, bool) {
	if idx, ok := g.index[sym.ID]; ok {
		return idx, false
	}
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, sym)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[sym.ID] = idx
	return idx, true
}

// AddEdge inserts a typed edge. Both endpoints must already exist as
// symbols; a missing endpoint returns ErrUnknownSymbol wrapped with the id.
func (g *DependencyGraph) AddEdge(edge DependencyEdge) (int32, error) {
	if err := edge.Validate(); err != nil {
		return -1, err
	}
	src, ok := g.index[edge.SourceSymbolID]
	if !ok {
		return -1, fmt.Errorf("source %s: %w", edge.SourceSymbolID, ErrUnknownSymbol)
	}
	dst, ok := g.index[edge.TargetSymbolID]
	if !ok {
		return -1, fmt.Errorf("target %s: %w", edge.TargetSymbolID, ErrUnknownSymbol)
	}
	idx := int32(len(g.edges))
	g.edges = append(g.edges, edge)
	g.out[src] = append(g.out[src], idx)
	g.in[dst] = append(g.in[dst], idx)
	return idx, nil
}

// NodeCount returns the number of symbol nodes.
func (g *DependencyGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *DependencyGraph) EdgeCount() int { return len(g.edges) }

// Node returns the symbol at an arena index.
func (g *DependencyGraph) Node(idx int32) *Symbol { return &g.nodes[idx] }

// Edge returns the edge at an arena index.
func (g *DependencyGraph) Edge(idx int32) *DependencyEdge { return &g.edges[idx] }

// NodeIndex resolves a symbol id to its arena index.
func (g *DependencyGraph) NodeIndex(symbolID string) (int32, bool) {
	idx, ok := g.index[symbolID]
	return idx, ok
}

// NodeByID resolves a symbol id to its node.
func (g *DependencyGraph) NodeByID(symbolID string) (*Symbol, bool) {
	idx, ok := g.index[symbolID]
	if !ok {
		return nil, false
	}
	return &g.nodes[idx], true
}

// Outgoing returns edge indices leaving a node, in discovery order.
// The returned slice is owned by the graph and must not be mutated.
func (g *DependencyGraph) Outgoing(idx int32) []int32 { return g.out[idx] }

// Incoming returns edge indices entering a node, in discovery order.
func (g *DependencyGraph) Incoming(idx int32) []int32 { return g.in[idx] }

// OutDegree returns the number of edges leaving a node.
func (g *DependencyGraph) OutDegree(idx int32) int { return len(g.out[idx]) }

// InDegree returns the number of edges entering a node.
func (g *DependencyGraph) InDegree(idx int32) int { return len(g.in[idx]) }

// Symbols returns the node arena in insertion order. Read-only.
func (g *DependencyGraph) Symbols() []Symbol { return g.nodes }

// Edges returns the edge arena in insertion order. Read-only.
func (g *DependencyGraph) Edges() []DependencyEdge { return g.edges }

// ToMermaid renders the graph as a Mermaid flowchart for terminal and
// markdown output.
func (g *DependencyGraph) ToMermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for i := range g.nodes {
		n := &g.nodes[i]
		fmt.Fprintf(&sb, "    %s[%q]\n", mermaidID(n.ID), n.Name)
	}
	for i := range g.edges {
		e := &g.edges[i]
		arrow := "-->"
		if !e.Strong {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s|%s| %s\n",
			mermaidID(e.SourceSymbolID), arrow, e.Type, mermaidID(e.TargetSymbolID))
	}
	return sb.String()
}

// ToDOT renders the graph in Graphviz DOT format. One-way export, not
// required to round-trip.
func (g *DependencyGraph) ToDOT() string {
	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("    rankdir=LR;\n")
	for i := range g.nodes {
		n := &g.nodes[i]
		fmt.Fprintf(&sb, "    %q [label=%q];\n", n.ID, n.Name)
	}
	for i := range g.edges {
		e := &g.edges[i]
		style := "solid"
		if !e.Strong {
			style = "dashed"
		}
		fmt.Fprintf(&sb, "    %q -> %q [label=%q, style=%s];\n",
			e.SourceSymbolID, e.TargetSymbolID, string(e.Type), style)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func mermaidID(id string) string {
	if len(id) > 8 {
		return "n" + id[:8]
	}
	return "n" + id
}
