package graph

import (
	"fmt"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// Query answers symbol and dependency lookups against a built graph.
type Query struct {
	g *models.DependencyGraph
}

// NewQuery wraps a graph for querying.
func NewQuery(g *models.DependencyGraph) *Query {
	return &Query{g: g}
}

// Relation pairs a related symbol with the edge that connects it. For
// transitive results the edge is the one by which the symbol was first
// discovered.
type Relation struct {
	Symbol models.Symbol         `json:"symbol" toon:"symbol"`
	Edge   models.DependencyEdge `json:"edge" toon:"edge"`
}

// Symbol returns a symbol by id.
func (q *Query) Symbol(symbolID string) (*models.Symbol, error) {
	sym, ok := q.g.NodeByID(symbolID)
	if !ok {
		return nil, fmt.Errorf("symbol %s: %w", symbolID, models.ErrUnknownSymbol)
	}
	return sym, nil
}

// SymbolsByName returns every symbol with the given name, in insertion
// order.
func (q *Query) SymbolsByName(name string) []models.Symbol {
	var out []models.Symbol
	for _, sym := range q.g.Symbols() {
		if sym.Name == name {
			out = append(out, sym)
		}
	}
	return out
}

// Dependencies returns the symbols a symbol depends on, each paired with
// its connecting edge. With indirect set, the whole transitive closure is
// returned; each node is visited once, so cycles terminate.
func (q *Query) Dependencies(symbolID string, indirect bool) ([]Relation, error) {
	return q.traverse(symbolID, indirect, q.g.Outgoing, func(e *models.DependencyEdge) string {
		return e.TargetSymbolID
	})
}

// Dependents returns the symbols that depend on a symbol, optionally
// transitively.
func (q *Query) Dependents(symbolID string, indirect bool) ([]Relation, error) {
	return q.traverse(symbolID, indirect, q.g.Incoming, func(e *models.DependencyEdge) string {
		return e.SourceSymbolID
	})
}

func (q *Query) traverse(symbolID string, indirect bool, edgesOf func(int32) []int32, endpoint func(*models.DependencyEdge) string) ([]Relation, error) {
	start, ok := q.g.NodeIndex(symbolID)
	if !ok {
		return nil, fmt.Errorf("symbol %s: %w", symbolID, models.ErrUnknownSymbol)
	}

	visited := map[int32]bool{start: true}
	frontier := []int32{start}
	var out []Relation

	for len(frontier) > 0 {
		var next []int32
		for _, idx := range frontier {
			for _, edgeIdx := range edgesOf(idx) {
				edge := q.g.Edge(edgeIdx)
				otherIdx, ok := q.g.NodeIndex(endpoint(edge))
				if !ok || visited[otherIdx] {
					continue
				}
				visited[otherIdx] = true
				out = append(out, Relation{Symbol: *q.g.Node(otherIdx), Edge: *edge})
				next = append(next, otherIdx)
			}
		}
		if !indirect {
			break
		}
		frontier = next
	}
	return out, nil
}
