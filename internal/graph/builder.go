// Package graph assembles dependency graphs from extraction batches: the
// merge and linking passes, structural metrics, traversal queries and
// snapshot persistence.
package graph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/extractor"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// Resolution tiers recorded on edge metadata.
const (
	tierSameFile = "same-file"
	tierSameRepo = "same-repo"
	tierImport   = "import"
)

// weakFloor bounds how low split confidence goes for ambiguous references.
const weakFloor = 0.1

// BuildResult is the output of a merge-and-link pass.
type BuildResult struct {
	Graph      *models.DependencyGraph
	Roots      []models.RootNode
	Unresolved int
	FileErrors []models.ParseError
}

// Builder accumulates per-file batches from workers and produces one linked
// graph. Workers never touch the builder; the coordinator owns it and feeds
// it batches after the parallel phase completes.
type Builder struct {
	cfg     *config.Config
	batches []*extractor.FileBatch
	errors  []models.ParseError
}

// NewBuilder creates a builder.
func NewBuilder(cfg *config.Config) *Builder {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Builder{cfg: cfg}
}

// Add records one extraction batch.
func (b *Builder) Add(batch *extractor.FileBatch) {
	if batch != nil {
		b.batches = append(b.batches, batch)
	}
}

// AddError records a recoverable per-file failure for the report.
func (b *Builder) AddError(err models.ParseError) {
	b.errors = append(b.errors, err)
}

// Build merges batches sorted by file path so insertion order, and therefore
// every arena index and candidate ordering downstream, is independent of
// worker scheduling. Linking then resolves raw facts into typed edges.
func (b *Builder) Build() *BuildResult {
	sort.Slice(b.batches, func(i, j int) bool {
		return b.batches[i].Path < b.batches[j].Path
	})

	g := models.NewDependencyGraph()
	idx := newSymbolIndex()

	for _, batch := range b.batches {
		for i := range batch.Symbols {
			sym := batch.Symbols[i]
			if nodeIdx, added := g.AddSymbol(sym); added {
				idx.add(g.Node(nodeIdx))
			}
		}
	}

	unresolved := 0
	for _, batch := range b.batches {
		for i := range batch.Facts {
			if !b.linkFact(g, idx, batch, &batch.Facts[i]) {
				unresolved++
			}
		}
	}

	return &BuildResult{
		Graph:      g,
		Roots:      b.collectRoots(g),
		Unresolved: unresolved,
		FileErrors: b.errors,
	}
}

// symbolIndex supports the resolution tiers: per-file names, per-repo
// names, and module symbols keyed by import stem. The name index is keyed
// by repo id so bare names never link across repositories; only resolved
// imports cross that boundary.
type symbolIndex struct {
	byFile  map[string]map[string][]string
	byRepo  map[string]map[string][]string
	modules map[string][]string
}

func newSymbolIndex() *symbolIndex {
	return &symbolIndex{
		byFile:  make(map[string]map[string][]string),
		byRepo:  make(map[string]map[string][]string),
		modules: make(map[string][]string),
	}
}

func (idx *symbolIndex) add(sym *models.Symbol) {
	if sym.Kind == models.SymbolModule {
		idx.modules[sym.Name] = append(idx.modules[sym.Name], sym.ID)
		return
	}
	names := idx.byFile[sym.FilePath]
	if names == nil {
		names = make(map[string][]string)
		idx.byFile[sym.FilePath] = names
	}
	names[sym.Name] = append(names[sym.Name], sym.ID)

	repoNames := idx.byRepo[sym.RepoID]
	if repoNames == nil {
		repoNames = make(map[string][]string)
		idx.byRepo[sym.RepoID] = repoNames
	}
	repoNames[sym.Name] = append(repoNames[sym.Name], sym.ID)
}

// linkFact resolves one raw fact into edges. A unique match produces one
// strong edge; N candidates split into N weak edges; zero candidates drop
// the fact and count it unresolved.
func (b *Builder) linkFact(g *models.DependencyGraph, idx *symbolIndex, batch *extractor.FileBatch, fact *extractor.RawFact) bool {
	var candidates []string
	var tier string

	if fact.Kind == models.EdgeImports {
		candidates = idx.modules[importStem(fact.Name)]
		tier = tierImport
	} else {
		candidates = idx.byFile[batch.Path][fact.Name]
		tier = tierSameFile
		if len(candidates) == 0 {
			candidates = idx.byRepo[batch.RepoID][fact.Name]
			tier = tierSameRepo
		}
	}

	if len(candidates) == 0 {
		return false
	}

	split := 0.5 / float64(len(candidates))
	if split < weakFloor {
		split = weakFloor
	}

	linked := false
	for _, targetID := range candidates {
		kind := refineEdgeType(g, fact.Kind, targetID)
		edge := models.NewEdge(fact.SourceSymbolID, targetID, kind, fact.Line)
		if len(candidates) == 1 {
			edge.MarkStrong(0.9)
		} else {
			edge.MarkWeak(split)
		}
		edge.Metadata = models.NewEdgeMetadata().
			Resolution(tier).
			Context(fact.Context).
			Build()
		if _, err := g.AddEdge(edge); err == nil {
			linked = true
		}
	}
	return linked
}

// refineEdgeType retypes a call fact by what it actually resolved to: naming
// a class at a call site is instantiation, naming a variable is a reference.
func refineEdgeType(g *models.DependencyGraph, kind models.EdgeType, targetID string) models.EdgeType {
	if kind != models.EdgeCalls {
		return kind
	}
	target, ok := g.NodeByID(targetID)
	if !ok {
		return kind
	}
	switch target.Kind {
	case models.SymbolClass:
		return models.EdgeInstantiates
	case models.SymbolVariable:
		return models.EdgeReferences
	}
	return kind
}

// importStem reduces an import spec to the module name it should resolve
// against: path imports by base name sans extension, dotted imports by the
// last segment.
func importStem(name string) string {
	if strings.ContainsAny(name, "/\\") {
		base := filepath.Base(name)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	switch filepath.Ext(name) {
	case ".js", ".mjs", ".py", ".sh":
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// collectRoots merges structural root hints from extraction with
// visibility-based exported API detection and configured overrides,
// deduplicated by kind and symbol.
func (b *Builder) collectRoots(g *models.DependencyGraph) []models.RootNode {
	seen := make(map[string]bool)
	var roots []models.RootNode

	addRoot := func(root models.RootNode) {
		key := string(root.Kind) + "\x00" + root.SymbolID
		if seen[key] {
			return
		}
		seen[key] = true
		roots = append(roots, root)
	}

	for _, batch := range b.batches {
		for _, hint := range batch.RootHints {
			if _, ok := g.NodeByID(hint.SymbolID); !ok {
				continue
			}
			addRoot(models.RootNode{Kind: hint.Kind, SymbolID: hint.SymbolID})
		}
	}

	if b.cfg.Roots.DetectExported {
		for _, sym := range g.Symbols() {
			if sym.IsRootCandidate() {
				addRoot(models.RootNode{Kind: models.RootExportedAPI, SymbolID: sym.ID})
			}
		}
	}

	for _, override := range b.cfg.Roots.Overrides {
		if override.SymbolID != "" {
			if _, ok := g.NodeByID(override.SymbolID); ok {
				addRoot(models.RootNode{
					Kind:     models.RootManualOverride,
					SymbolID: override.SymbolID,
				})
			}
			continue
		}
		if override.Matcher == "" {
			continue
		}
		for _, sym := range g.Symbols() {
			if !matchesOverride(&sym, override.Matcher) {
				continue
			}
			addRoot(models.RootNode{
				Kind:     models.RootManualOverride,
				SymbolID: sym.ID,
				Matcher:  override.Matcher,
			})
		}
	}

	sort.Slice(roots, func(i, j int) bool {
		if roots[i].SymbolID != roots[j].SymbolID {
			return roots[i].SymbolID < roots[j].SymbolID
		}
		return roots[i].Kind < roots[j].Kind
	})
	return roots
}

func matchesOverride(sym *models.Symbol, matcher string) bool {
	if ok, _ := filepath.Match(matcher, sym.Name); ok {
		return true
	}
	if sym.QualifiedScope != "" {
		qualified := sym.QualifiedScope + "." + sym.Name
		if ok, _ := filepath.Match(matcher, qualified); ok {
			return true
		}
	}
	return false
}
