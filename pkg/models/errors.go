package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol is returned when an edge references a symbol id that was
// never added to the graph.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ParseError is a recoverable per-file failure. The file is skipped and the
// error surfaces in the report; it never aborts a batch.
type ParseError struct {
	File    string `json:"file" toon:"file"`
	Line    uint32 `json:"line,omitempty" toon:"line,omitempty"`
	Message string `json:"message" toon:"message"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Message)
}

// UnsupportedLanguageError marks a file whose extension maps to no grammar.
type UnsupportedLanguageError struct {
	Path string
	Ext  string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language for %s (extension %q)", e.Path, e.Ext)
}

// ValidationError reports a structurally invalid model value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
