// Package analyzer classifies unreferenced symbols. Reachability flows from
// the root set through the dependency graph; whatever the wave never touches
// is scored and reported.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// Confidence weights. Structural evidence dominates; staleness and naming
// only sharpen the score. A missing signal contributes zero, never a guess.
const (
	weightStructural = 0.60
	weightStaleness  = 0.25
	weightNaming     = 0.15

	structuralUnreachable = 1.0
	structuralDeadCode    = 0.6
)

// contextPathDepth bounds the caller chain attached to each item.
const contextPathDepth = 3

// FileSignal carries per-file version-control evidence.
type FileSignal struct {
	LastModified       time.Time
	PrimaryContributor string
}

// Classifier runs reachability and scores the leftovers.
type Classifier struct {
	cfg *config.Config

	// now is injectable so staleness scoring is testable.
	now func() time.Time
}

// NewClassifier creates a classifier.
func NewClassifier(cfg *config.Config) *Classifier {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Classifier{cfg: cfg, now: time.Now}
}

// Classify computes reachability from the roots and returns the zombie
// report. signals may be nil when version-control evidence is unavailable;
// classification then rests on structure and naming alone.
func (c *Classifier) Classify(ctx context.Context, result *graph.BuildResult, signals map[string]FileSignal) (*models.ZombieReport, error) {
	g := result.Graph

	reached, layers, err := c.reach(ctx, result)
	if err != nil {
		return nil, err
	}

	report := &models.ZombieReport{
		Metrics:    graph.ComputeMetrics(g, result.Roots, result.Unresolved),
		Reachable:  int(reached.GetCardinality()),
		Roots:      len(result.Roots),
		FileErrors: result.FileErrors,
	}
	if len(layers) > 0 {
		report.IsolationDistances = make(map[string]uint32, len(layers))
		for idx, layer := range layers {
			report.IsolationDistances[g.Node(idx).ID] = layer
		}
	}

	for i := int32(0); i < int32(g.NodeCount()); i++ {
		if reached.Contains(uint32(i)) {
			continue
		}
		sym := g.Node(i)
		// Module symbols are bookkeeping, not deletable code.
		if sym.Kind == models.SymbolModule {
			continue
		}

		item := c.classifyNode(g, i, sym, signals)
		if item.Confidence < c.cfg.Analysis.MinConfidence {
			continue
		}
		report.Items = append(report.Items, item)
	}

	sort.Slice(report.Items, func(i, j int) bool {
		if report.Items[i].Confidence != report.Items[j].Confidence {
			return report.Items[i].Confidence > report.Items[j].Confidence
		}
		return report.Items[i].SymbolID < report.Items[j].SymbolID
	})
	return report, nil
}

// reach runs a multi-source BFS from the root set, caller to callee. Each
// visited node records its BFS layer, roots at layer 0. The context is
// checked between layers so a large graph cancels promptly.
func (c *Classifier) reach(ctx context.Context, result *graph.BuildResult) (*roaring.Bitmap, map[int32]uint32, error) {
	g := result.Graph
	reached := roaring.New()
	layers := make(map[int32]uint32)

	var frontier []int32
	for _, root := range result.Roots {
		idx, ok := g.NodeIndex(root.SymbolID)
		if !ok || reached.Contains(uint32(idx)) {
			continue
		}
		reached.Add(uint32(idx))
		layers[idx] = 0
		frontier = append(frontier, idx)
	}

	layer := uint32(0)
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		layer++
		var next []int32
		for _, idx := range frontier {
			for _, edgeIdx := range g.Outgoing(idx) {
				target, ok := g.NodeIndex(g.Edge(edgeIdx).TargetSymbolID)
				if !ok || reached.Contains(uint32(target)) {
					continue
				}
				reached.Add(uint32(target))
				layers[target] = layer
				next = append(next, target)
			}
		}
		frontier = next
	}
	return reached, layers, nil
}

func (c *Classifier) classifyNode(g *models.DependencyGraph, idx int32, sym *models.Symbol, signals map[string]FileSignal) models.ZombieCodeItem {
	orphan := g.InDegree(idx) == 0 && g.OutDegree(idx) == 0

	// Zombies have no root-relative distance, so IsolationDistance stays
	// nil for both classes.
	item := models.ZombieCodeItem{
		SymbolID: sym.ID,
		Name:     sym.Name,
		Location: sym.Location(),
	}

	structural := structuralDeadCode
	if orphan {
		item.ZombieType = models.ZombieUnreachable
		item.Notes = "no incoming or outgoing references"
		structural = structuralUnreachable
	} else {
		item.ZombieType = models.ZombieDeadCode
		if g.InDegree(idx) == 0 {
			item.Notes = "never referenced"
		} else {
			item.Notes = "referenced only by other dead code"
		}
		item.ContextPath = contextPath(g, idx)
	}

	staleness := 0.0
	if sig, ok := signals[sym.FilePath]; ok {
		staleness = c.stalenessScore(sig.LastModified)
		if !sig.LastModified.IsZero() {
			last := sig.LastModified
			item.LastModified = &last
		}
		item.PrimaryContributor = sig.PrimaryContributor
	}

	confidence := weightStructural*structural +
		weightStaleness*staleness +
		weightNaming*namingScore(sym.Name)
	item.Confidence = clamp01(confidence)
	return item
}

// stalenessScore normalizes file age over the configured horizon. A file
// untouched for the whole horizon scores 1.
func (c *Classifier) stalenessScore(lastModified time.Time) float64 {
	if lastModified.IsZero() {
		return 0
	}
	horizon := time.Duration(c.cfg.Signals.StalenessHorizonDays) * 24 * time.Hour
	if horizon <= 0 {
		return 0
	}
	age := c.now().Sub(lastModified)
	if age <= 0 {
		return 0
	}
	return clamp01(float64(age) / float64(horizon))
}

// contextPath walks incoming references a few hops up so the report shows
// who still names the symbol, even if those callers are dead themselves.
func contextPath(g *models.DependencyGraph, idx int32) []string {
	var path []string
	seen := map[int32]bool{idx: true}

	cur := idx
	for depth := 0; depth < contextPathDepth; depth++ {
		incoming := g.Incoming(cur)
		if len(incoming) == 0 {
			break
		}
		edge := g.Edge(incoming[0])
		srcIdx, ok := g.NodeIndex(edge.SourceSymbolID)
		if !ok || seen[srcIdx] {
			break
		}
		seen[srcIdx] = true
		src := g.Node(srcIdx)
		path = append(path, fmt.Sprintf("%s (%s)", src.Name, edge.Type))
		cur = srcIdx
	}
	return path
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
