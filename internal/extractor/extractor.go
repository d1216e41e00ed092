// Package extractor turns syntax trees into symbols and raw relationship
// facts. One driver loop serves every language; language-specific behavior
// lives entirely in the per-language query sets.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/parser"
)

// RawFact is an unresolved relationship: a name observed at a site, not yet
// linked to a target symbol id.
type RawFact struct {
	Name           string
	Kind           models.EdgeType
	SourceSymbolID string
	Line           uint32
	Context        string
}

// RootHint is a structural entry-point signal found during extraction.
type RootHint struct {
	Kind     models.RootKind
	SymbolID string
	Pattern  string
	Line     uint32
}

// FileBatch is the immutable per-file output of one worker: local symbols
// and facts with no shared state, merged later by a single coordinator.
type FileBatch struct {
	Path      string
	RepoID    string
	Language  parser.Language
	Symbols   []models.Symbol
	Facts     []RawFact
	RootHints []RootHint
	HasErrors bool
}

// Extractor drives declaration, call, import, instantiation and inheritance
// queries over parsed files.
type Extractor struct {
	registry *parser.Registry
	cfg      *config.Config
}

// New creates an extractor sharing a session-scoped query registry.
func New(registry *parser.Registry, cfg *config.Config) *Extractor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Extractor{registry: registry, cfg: cfg}
}

// declInfo tracks a declaration's span so facts can be attributed to their
// innermost enclosing declaration.
type declInfo struct {
	startByte uint32
	endByte   uint32
	symbolID  string
}

// ExtractFile reads, parses and extracts one file. The returned error is
// recoverable; the caller records it and continues the batch.
func (e *Extractor) ExtractFile(ctx context.Context, psr *parser.Parser, path string) (*FileBatch, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if max := e.cfg.Analysis.MaxFileSize; max > 0 && int64(len(source)) > max {
		return nil, &models.ParseError{File: path, Message: fmt.Sprintf("file exceeds %d bytes", max)}
	}

	parseCtx := ctx
	if timeout := e.cfg.Analysis.ParseTimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		parseCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	result, err := psr.Parse(parseCtx, source, path)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	return e.extract(result)
}

// ExtractSource extracts from already-materialized source text, the form
// collaborators feed the engine directly.
func (e *Extractor) ExtractSource(ctx context.Context, psr *parser.Parser, source []byte, path string) (*FileBatch, error) {
	result, err := psr.Parse(ctx, source, path)
	if err != nil {
		return nil, err
	}
	defer result.Close()
	return e.extract(result)
}

func (e *Extractor) extract(result *parser.Result) (*FileBatch, error) {
	qs, err := e.registry.QuerySet(result.Language)
	if err != nil {
		return nil, err
	}

	repoID := e.cfg.Analysis.RepoID
	batch := &FileBatch{
		Path:      result.Path,
		RepoID:    repoID,
		Language:  result.Language,
		HasErrors: result.HasErrors,
	}

	// Every file gets a module symbol. Top-level facts (imports, script
	// statements) attach to it, and import linking resolves against it.
	module := models.NewSymbol(repoID, result.Path, "", moduleName(result.Path), models.SymbolModule, 1)
	module.Language = string(result.Language)
	module.Exported = true
	batch.Symbols = append(batch.Symbols, module)

	root := result.Tree.RootNode()
	decls := e.collectDeclarations(batch, qs, root, result)

	e.collectFacts(batch, qs.Calls, models.EdgeCalls, "call.name", decls, module.ID, result)
	e.collectFacts(batch, qs.Imports, models.EdgeImports, "import.name", decls, module.ID, result)
	e.collectFacts(batch, qs.Instantiations, models.EdgeInstantiates, "new.name", decls, module.ID, result)
	e.collectFacts(batch, qs.Inherits, models.EdgeInherits, "inherit.name", decls, module.ID, result)

	e.collectRootHints(batch, decls, module.ID, result)

	return batch, nil
}

// collectDeclarations runs the declaration query and emits one symbol per
// match, with qualified scope built from enclosing declaration context.
func (e *Extractor) collectDeclarations(batch *FileBatch, qs *parser.QuerySet, root *sitter.Node, result *parser.Result) []declInfo {
	var decls []declInfo

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(qs.Declarations, root)

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, result.Source)

		var declNode, nameNode *sitter.Node
		for _, capture := range match.Captures {
			switch qs.Declarations.CaptureNameForId(capture.Index) {
			case "decl":
				declNode = capture.Node
			case "decl.name":
				nameNode = capture.Node
			}
		}
		if declNode == nil || nameNode == nil {
			continue
		}

		kind, ok := qs.DeclKinds[declNode.Type()]
		if !ok {
			continue
		}

		name := parser.NodeText(nameNode, result.Source)
		scope := qualifiedScope(declNode, qs, result.Source)

		// A def nested inside a class is a method, not a free function.
		if result.Language == parser.LangPython && kind == models.SymbolFunction && scope != "" {
			kind = models.SymbolMethod
		}

		sym := models.NewSymbol(batch.RepoID, batch.Path, scope, name, kind, declNode.StartPoint().Row+1)
		sym.Column = declNode.StartPoint().Column
		sym.Language = string(result.Language)
		sym.Visibility, sym.Exported = visibilityOf(declNode, name, result)

		batch.Symbols = append(batch.Symbols, sym)
		decls = append(decls, declInfo{
			startByte: declNode.StartByte(),
			endByte:   declNode.EndByte(),
			symbolID:  sym.ID,
		})
	}

	return decls
}

// collectFacts runs one relationship query, attributing each fact to the
// innermost enclosing declaration, or to the module symbol at top level.
func (e *Extractor) collectFacts(batch *FileBatch, query *sitter.Query, kind models.EdgeType, captureName string, decls []declInfo, moduleID string, result *parser.Result) {
	if query == nil {
		return
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, result.Tree.RootNode())

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, result.Source)

		for _, capture := range match.Captures {
			if query.CaptureNameForId(capture.Index) != captureName {
				continue
			}
			node := capture.Node
			name := parser.NodeText(node, result.Source)
			if kind == models.EdgeImports {
				name = trimImportName(name)
			}
			if name == "" {
				continue
			}

			source := enclosingDecl(decls, node.StartByte(), node.EndByte())
			if source == "" {
				source = moduleID
			}

			batch.Facts = append(batch.Facts, RawFact{
				Name:           name,
				Kind:           kind,
				SourceSymbolID: source,
				Line:           node.StartPoint().Row + 1,
				Context:        extractContext(result.Source, node.StartByte(), node.EndByte()),
			})
		}
	}
}

// qualifiedScope walks enclosing declarations outward and joins their names
// so identically named symbols in different scopes get distinct ids.
func qualifiedScope(node *sitter.Node, qs *parser.QuerySet, source []byte) string {
	var parts []string
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if !qs.ScopeTypes[cur.Type()] {
			continue
		}
		nameNode := cur.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		parts = append([]string{parser.NodeText(nameNode, source)}, parts...)
	}
	return strings.Join(parts, ".")
}

// enclosingDecl returns the symbol id of the smallest declaration span
// containing [start, end), or "" when the site is at top level.
func enclosingDecl(decls []declInfo, start, end uint32) string {
	best := ""
	bestSize := uint32(0)
	for i := range decls {
		d := &decls[i]
		if d.startByte <= start && end <= d.endByte {
			size := d.endByte - d.startByte
			if best == "" || size < bestSize {
				best = d.symbolID
				bestSize = size
			}
		}
	}
	return best
}

// visibilityOf derives visibility and exportedness per language convention.
func visibilityOf(declNode *sitter.Node, name string, result *parser.Result) (models.Visibility, bool) {
	switch result.Language {
	case parser.LangJava:
		vis := javaVisibility(declNode, result.Source)
		return vis, vis == models.VisibilityPublic
	case parser.LangPython:
		if strings.HasPrefix(name, "_") {
			return models.VisibilityPrivate, false
		}
		return models.VisibilityDefault, true
	case parser.LangJavaScript:
		for cur := declNode.Parent(); cur != nil; cur = cur.Parent() {
			if cur.Type() == "export_statement" {
				return models.VisibilityPublic, true
			}
		}
		return models.VisibilityDefault, false
	default:
		return models.VisibilityDefault, true
	}
}

func javaVisibility(node *sitter.Node, source []byte) models.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "modifiers" {
			continue
		}
		text := child.Content(source)
		switch {
		case strings.Contains(text, "public"):
			return models.VisibilityPublic
		case strings.Contains(text, "protected"):
			return models.VisibilityProtected
		case strings.Contains(text, "private"):
			return models.VisibilityPrivate
		}
	}
	return models.VisibilityDefault
}

// moduleName derives the module symbol name from the file path.
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// trimImportName normalizes an import capture: string quotes stripped for
// JS sources, path prefixes reduced for shell-style sourcing.
func trimImportName(name string) string {
	name = strings.Trim(name, `"'`)
	name = strings.TrimSpace(name)
	return name
}
