package parser

import (
	"context"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// Parser turns source text into concrete syntax trees. Each worker owns its
// own Parser; a Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// New creates a parser.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// Result is one parsed file. HasErrors reports that the tree contains error
// nodes; extraction still proceeds on the parseable subset and the flag is
// surfaced for reporting.
type Result struct {
	Tree      *sitter.Tree
	Language  Language
	Source    []byte
	Path      string
	HasErrors bool
}

// Close releases the syntax tree.
func (r *Result) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// Parse parses source text, resolving the language from the file extension.
// Unknown extensions fail with UnsupportedLanguageError.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*Result, error) {
	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, &models.UnsupportedLanguageError{Path: path, Ext: filepath.Ext(path)}
	}
	return p.ParseLanguage(ctx, source, path, lang)
}

// ParseLanguage parses source text with an explicit language tag. The
// context bounds parse time; cancellation or deadline expiry aborts the
// parse with a ParseError.
func (p *Parser) ParseLanguage(ctx context.Context, source []byte, path string, lang Language) (*Result, error) {
	sl := sitterLanguage(lang)
	if sl == nil {
		return nil, &models.UnsupportedLanguageError{Path: path, Ext: filepath.Ext(path)}
	}
	p.parser.SetLanguage(sl)

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &models.ParseError{File: path, Message: err.Error()}
	}
	if tree == nil {
		return nil, &models.ParseError{File: path, Message: "parser produced no tree"}
	}

	return &Result{
		Tree:      tree,
		Language:  lang,
		Source:    source,
		Path:      path,
		HasErrors: tree.RootNode().HasError(),
	}, nil
}

// NodeText returns the source text covered by a node.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
