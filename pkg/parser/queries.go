package parser

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// QuerySet bundles the compiled structural queries for one language plus
// the language-specific tables the shared driver loop consults. Queries that
// do not apply to a language (shell has no classes) are nil.
type QuerySet struct {
	Declarations   *sitter.Query
	Calls          *sitter.Query
	Imports        *sitter.Query
	Instantiations *sitter.Query
	Inherits       *sitter.Query

	// DeclKinds maps a matched declaration node type to the symbol kind it
	// produces.
	DeclKinds map[string]models.SymbolKind

	// ScopeTypes lists node types whose names contribute to the qualified
	// scope of nested declarations.
	ScopeTypes map[string]bool
}

// Close releases the compiled queries.
func (qs *QuerySet) Close() {
	for _, q := range []*sitter.Query{qs.Declarations, qs.Calls, qs.Imports, qs.Instantiations, qs.Inherits} {
		if q != nil {
			q.Close()
		}
	}
}

// Registry owns one lazily-compiled QuerySet per language for the lifetime
// of an analysis session. Compile once, share across workers, Close at
// session end.
type Registry struct {
	mu   sync.Mutex
	sets map[Language]*QuerySet
}

// NewRegistry creates an empty query registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[Language]*QuerySet)}
}

// QuerySet returns the compiled queries for a language, building them on
// first use. Safe for concurrent use.
func (r *Registry) QuerySet(lang Language) (*QuerySet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if qs, ok := r.sets[lang]; ok {
		return qs, nil
	}
	qs, err := buildQuerySet(lang)
	if err != nil {
		return nil, err
	}
	r.sets[lang] = qs
	return qs, nil
}

// Close releases every compiled query set.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qs := range r.sets {
		qs.Close()
	}
	r.sets = make(map[Language]*QuerySet)
}

func buildQuerySet(lang Language) (*QuerySet, error) {
	switch lang {
	case LangJava:
		return buildJavaQueries()
	case LangJavaScript:
		return buildJavaScriptQueries()
	case LangPython:
		return buildPythonQueries()
	case LangShell:
		return buildShellQueries()
	default:
		return nil, fmt.Errorf("no query set for language %q", lang)
	}
}

func compile(lang Language, name, pattern string) (*sitter.Query, error) {
	q, err := sitter.NewQuery([]byte(pattern), sitterLanguage(lang))
	if err != nil {
		return nil, fmt.Errorf("compile %s %s query: %w", lang, name, err)
	}
	return q, nil
}

func buildJavaQueries() (*QuerySet, error) {
	decl, err := compile(LangJava, "declaration", `
		(method_declaration name: (identifier) @decl.name) @decl
		(constructor_declaration name: (identifier) @decl.name) @decl
		(class_declaration name: (identifier) @decl.name) @decl
		(interface_declaration name: (identifier) @decl.name) @decl
		(enum_declaration name: (identifier) @decl.name) @decl
		(field_declaration (variable_declarator name: (identifier) @decl.name)) @decl
	`)
	if err != nil {
		return nil, err
	}
	calls, err := compile(LangJava, "call", `
		(method_invocation name: (identifier) @call.name) @call
	`)
	if err != nil {
		return nil, err
	}
	imports, err := compile(LangJava, "import", `
		(import_declaration (scoped_identifier) @import.name) @import
	`)
	if err != nil {
		return nil, err
	}
	instantiations, err := compile(LangJava, "instantiation", `
		(object_creation_expression type: (type_identifier) @new.name) @new
	`)
	if err != nil {
		return nil, err
	}
	inherits, err := compile(LangJava, "inheritance", `
		(superclass (type_identifier) @inherit.name)
		(super_interfaces (type_list (type_identifier) @inherit.name))
	`)
	if err != nil {
		return nil, err
	}

	return &QuerySet{
		Declarations:   decl,
		Calls:          calls,
		Imports:        imports,
		Instantiations: instantiations,
		Inherits:       inherits,
		DeclKinds: map[string]models.SymbolKind{
			"method_declaration":      models.SymbolMethod,
			"constructor_declaration": models.SymbolMethod,
			"class_declaration":       models.SymbolClass,
			"interface_declaration":   models.SymbolInterface,
			"enum_declaration":        models.SymbolEnum,
			"field_declaration":       models.SymbolVariable,
		},
		ScopeTypes: map[string]bool{
			"class_declaration":     true,
			"interface_declaration": true,
			"enum_declaration":      true,
		},
	}, nil
}

func buildJavaScriptQueries() (*QuerySet, error) {
	decl, err := compile(LangJavaScript, "declaration", `
		(function_declaration name: (identifier) @decl.name) @decl
		(method_definition name: (property_identifier) @decl.name) @decl
		(class_declaration name: (identifier) @decl.name) @decl
	`)
	if err != nil {
		return nil, err
	}
	calls, err := compile(LangJavaScript, "call", `
		(call_expression function: (identifier) @call.name) @call
		(call_expression function: (member_expression property: (property_identifier) @call.name)) @call
	`)
	if err != nil {
		return nil, err
	}
	imports, err := compile(LangJavaScript, "import", `
		(import_statement source: (string) @import.name) @import
	`)
	if err != nil {
		return nil, err
	}
	instantiations, err := compile(LangJavaScript, "instantiation", `
		(new_expression constructor: (identifier) @new.name) @new
	`)
	if err != nil {
		return nil, err
	}
	inherits, err := compile(LangJavaScript, "inheritance", `
		(class_heritage (identifier) @inherit.name)
	`)
	if err != nil {
		return nil, err
	}

	return &QuerySet{
		Declarations:   decl,
		Calls:          calls,
		Imports:        imports,
		Instantiations: instantiations,
		Inherits:       inherits,
		DeclKinds: map[string]models.SymbolKind{
			"function_declaration": models.SymbolFunction,
			"method_definition":    models.SymbolMethod,
			"class_declaration":    models.SymbolClass,
		},
		ScopeTypes: map[string]bool{
			"class_declaration": true,
		},
	}, nil
}

func buildPythonQueries() (*QuerySet, error) {
	decl, err := compile(LangPython, "declaration", `
		(function_definition name: (identifier) @decl.name) @decl
		(class_definition name: (identifier) @decl.name) @decl
	`)
	if err != nil {
		return nil, err
	}
	calls, err := compile(LangPython, "call", `
		(call function: (identifier) @call.name) @call
		(call function: (attribute attribute: (identifier) @call.name)) @call
	`)
	if err != nil {
		return nil, err
	}
	imports, err := compile(LangPython, "import", `
		(import_statement name: (dotted_name) @import.name) @import
		(import_from_statement module_name: (dotted_name) @import.name) @import
	`)
	if err != nil {
		return nil, err
	}
	inherits, err := compile(LangPython, "inheritance", `
		(class_definition superclasses: (argument_list (identifier) @inherit.name))
	`)
	if err != nil {
		return nil, err
	}

	return &QuerySet{
		Declarations: decl,
		Calls:        calls,
		Imports:      imports,
		Inherits:     inherits,
		DeclKinds: map[string]models.SymbolKind{
			"function_definition": models.SymbolFunction,
			"class_definition":    models.SymbolClass,
		},
		ScopeTypes: map[string]bool{
			"class_definition":    true,
			"function_definition": true,
		},
	}, nil
}

func buildShellQueries() (*QuerySet, error) {
	decl, err := compile(LangShell, "declaration", `
		(function_definition name: (word) @decl.name) @decl
	`)
	if err != nil {
		return nil, err
	}
	calls, err := compile(LangShell, "call", `
		(command name: (command_name) @call.name) @call
	`)
	if err != nil {
		return nil, err
	}
	imports, err := compile(LangShell, "import", `
		(command
			name: (command_name) @import.cmd
			argument: (word) @import.name
			(#match? @import.cmd "^(source|\\.)$")
		) @import
	`)
	if err != nil {
		return nil, err
	}

	return &QuerySet{
		Declarations: decl,
		Calls:        calls,
		Imports:      imports,
		DeclKinds: map[string]models.SymbolKind{
			"function_definition": models.SymbolFunction,
		},
		ScopeTypes: map[string]bool{},
	}, nil
}
