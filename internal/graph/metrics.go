package graph

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// ComputeMetrics derives the structural summary of a graph. Metrics are
// recomputed from scratch on every call; nothing is cached against the
// graph.
func ComputeMetrics(g *models.DependencyGraph, roots []models.RootNode, unresolved int) models.GraphMetrics {
	m := models.GraphMetrics{
		TotalNodes:           g.NodeCount(),
		TotalEdges:           g.EdgeCount(),
		UnresolvedReferences: unresolved,
	}
	if m.TotalNodes == 0 {
		return m
	}

	for i := int32(0); i < int32(m.TotalNodes); i++ {
		if g.InDegree(i) == 0 && g.OutDegree(i) == 0 {
			m.OrphanNodes++
		}
	}

	m.AverageOutDegree = float64(m.TotalEdges) / float64(m.TotalNodes)
	m.StronglyConnectedComponents = len(topo.TarjanSCC(mirror(g)))
	m.MaxDepth = maxDepth(g, roots)
	return m
}

// mirror projects the arena graph onto a gonum directed graph, collapsing
// multi-edges. Arena indices double as gonum node ids.
func mirror(g *models.DependencyGraph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := 0; i < g.NodeCount(); i++ {
		dg.AddNode(simple.Node(i))
	}
	for i := range g.Edges() {
		e := g.Edge(int32(i))
		src, ok := g.NodeIndex(e.SourceSymbolID)
		if !ok {
			continue
		}
		dst, ok := g.NodeIndex(e.TargetSymbolID)
		if !ok || src == dst {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(dst)})
	}
	return dg
}

// maxDepth is the deepest BFS layer reachable from the root set, following
// edges caller to callee. No roots means no measurable depth.
func maxDepth(g *models.DependencyGraph, roots []models.RootNode) int {
	frontier := rootIndices(g, roots)
	if len(frontier) == 0 {
		return 0
	}

	visited := make([]bool, g.NodeCount())
	for _, idx := range frontier {
		visited[idx] = true
	}

	depth := 0
	for len(frontier) > 0 {
		var next []int32
		for _, idx := range frontier {
			for _, edgeIdx := range g.Outgoing(idx) {
				target, ok := g.NodeIndex(g.Edge(edgeIdx).TargetSymbolID)
				if !ok || visited[target] {
					continue
				}
				visited[target] = true
				next = append(next, target)
			}
		}
		if len(next) > 0 {
			depth++
		}
		frontier = next
	}
	return depth
}

func rootIndices(g *models.DependencyGraph, roots []models.RootNode) []int32 {
	var out []int32
	seen := make(map[int32]bool)
	for _, root := range roots {
		idx, ok := g.NodeIndex(root.SymbolID)
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// Centrality ranks symbols by PageRank over the dependency structure. Useful
// for spotting load-bearing symbols before acting on a zombie report. The
// context is checked before the (blocking) power iteration starts.
func Centrality(ctx context.Context, g *models.DependencyGraph, limit int) ([]models.SymbolCentrality, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.NodeCount() == 0 {
		return nil, nil
	}

	ranks := network.PageRank(mirror(g), 0.85, 1e-6)

	out := make([]models.SymbolCentrality, 0, g.NodeCount())
	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(int32(i))
		out = append(out, models.SymbolCentrality{
			SymbolID: node.ID,
			Name:     node.Name,
			PageRank: ranks[int64(i)],
			InDegree: g.InDegree(int32(i)),
			OutDeg:   g.OutDegree(int32(i)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PageRank != out[j].PageRank {
			return out[i].PageRank > out[j].PageRank
		}
		return out[i].SymbolID < out[j].SymbolID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
