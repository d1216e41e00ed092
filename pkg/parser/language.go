package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Language is a supported language tag.
type Language string

const (
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangShell      Language = "shell"
	LangUnknown    Language = "unknown"
)

// Languages lists every supported language in registry order.
func Languages() []Language {
	return []Language{LangJava, LangJavaScript, LangPython, LangShell}
}

// extension table is total and explicit; anything not listed is unknown.
var extToLanguage = map[string]Language{
	".java": LangJava,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".jsx":  LangJavaScript,
	".py":   LangPython,
	".pyw":  LangPython,
	".sh":   LangShell,
	".bash": LangShell,
	".zsh":  LangShell,
}

// DetectLanguage maps a file path to its language tag by extension.
// Unknown extensions return LangUnknown, never a guess.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return LangUnknown
}

// Extensions returns the file extensions for a language, without dots.
func (l Language) Extensions() []string {
	var exts []string
	for ext, lang := range extToLanguage {
		if lang == l {
			exts = append(exts, strings.TrimPrefix(ext, "."))
		}
	}
	return exts
}

// sitterLanguage returns the tree-sitter grammar for a language tag.
func sitterLanguage(lang Language) *sitter.Language {
	switch lang {
	case LangJava:
		return java.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangPython:
		return python.GetLanguage()
	case LangShell:
		return bash.GetLanguage()
	default:
		return nil
	}
}
