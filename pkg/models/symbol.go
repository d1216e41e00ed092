// Package models defines the core analysis data model: symbols, typed
// dependency edges, the dependency graph, and classification results.
package models

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// SymbolKind classifies a declared symbol.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolMethod    SymbolKind = "method"
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolEnum      SymbolKind = "enum"
	SymbolVariable  SymbolKind = "variable"
	SymbolModule    SymbolKind = "module"
)

// Visibility is the declared access level where the language has one.
type Visibility string

const (
	VisibilityDefault   Visibility = "default"
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Symbol is one declared entity. Its id is a pure function of repo, file,
// scope and name, so re-extracting the same file yields the same ids.
type Symbol struct {
	ID             string            `json:"id" toon:"id"`
	RepoID         string            `json:"repo_id" toon:"repo_id"`
	FilePath       string            `json:"file_path" toon:"file_path"`
	QualifiedScope string            `json:"qualified_scope,omitempty" toon:"qualified_scope,omitempty"`
	Name           string            `json:"name" toon:"name"`
	Kind           SymbolKind        `json:"kind" toon:"kind"`
	Language       string            `json:"language,omitempty" toon:"language,omitempty"`
	Line           uint32            `json:"line" toon:"line"`
	Column         uint32            `json:"column,omitempty" toon:"column,omitempty"`
	Visibility     Visibility        `json:"visibility" toon:"visibility"`
	Exported       bool              `json:"exported" toon:"exported"`
	Metadata       map[string]string `json:"metadata,omitempty" toon:"metadata,omitempty"`
}

// SymbolID derives the deterministic symbol id. Components are joined with
// NUL so no concatenation of distinct components can collide.
func SymbolID(repoID, filePath, qualifiedScope, name string) string {
	h := blake3.New()
	h.Write([]byte(repoID))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(qualifiedScope))
	h.Write([]byte{0})
	h.Write([]byte(name))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// NewSymbol builds a symbol with its id derived from the identity fields.
func NewSymbol(repoID, filePath, qualifiedScope, name string, kind SymbolKind, line uint32) Symbol {
	return Symbol{
		ID:             SymbolID(repoID, filePath, qualifiedScope, name),
		RepoID:         repoID,
		FilePath:       filePath,
		QualifiedScope: qualifiedScope,
		Name:           name,
		Kind:           kind,
		Line:           line,
		Visibility:     VisibilityDefault,
	}
}

// Validate checks the identity fields are present and consistent.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Reason: "empty"}
	}
	if s.FilePath == "" {
		return &ValidationError{Field: "file_path", Reason: "empty"}
	}
	if s.ID != SymbolID(s.RepoID, s.FilePath, s.QualifiedScope, s.Name) {
		return &ValidationError{Field: "id", Reason: "does not match identity fields"}
	}
	return nil
}

// Location formats the symbol's source position for reports.
func (s *Symbol) Location() string {
	return fmt.Sprintf("%s:%d", s.FilePath, s.Line)
}

// AddMetadata attaches a key, allocating the map lazily.
func (s *Symbol) AddMetadata(key, value string) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]string)
	}
	s.Metadata[key] = value
}

// IsRootCandidate reports whether the symbol's kind and visibility make it
// eligible for exported-API root detection. Only declared-public callables
// and type declarations qualify; data symbols and language-default exports
// never seed reachability.
func (s *Symbol) IsRootCandidate() bool {
	switch s.Kind {
	case SymbolFunction, SymbolMethod, SymbolClass, SymbolInterface, SymbolEnum:
	default:
		return false
	}
	return s.Visibility == VisibilityPublic
}
