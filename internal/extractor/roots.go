package extractor

import (
	"strings"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/parser"
)

// rootPattern pairs a substring pattern with the root kind it signals.
type rootPattern struct {
	kind    models.RootKind
	pattern string
}

// Pattern tables per language. Substring matching is deliberate: root-hint
// detection trades precision for coverage across frameworks, and false
// positives only widen the reachable set.
var rootPatterns = map[parser.Language][]rootPattern{
	parser.LangJava: {
		{models.RootMainFunction, "public static void main"},
		{models.RootExportedAPI, "@RestController"},
		{models.RootExportedAPI, "@Controller"},
		{models.RootExportedAPI, "@RequestMapping"},
		{models.RootExportedAPI, "@GetMapping"},
		{models.RootExportedAPI, "@PostMapping"},
		{models.RootExportedAPI, "@PutMapping"},
		{models.RootExportedAPI, "@DeleteMapping"},
		{models.RootExportedAPI, "@Scheduled"},
		{models.RootTestEntry, "@Test"},
		{models.RootCliCommand, "CommandLine.run"},
	},
	parser.LangPython: {
		{models.RootMainFunction, `if __name__ == "__main__"`},
		{models.RootMainFunction, "if __name__ == '__main__'"},
		{models.RootExportedAPI, "@app.route"},
		{models.RootExportedAPI, "@bp.route"},
		{models.RootExportedAPI, "@router."},
		{models.RootTestEntry, "def test_"},
		{models.RootCliCommand, "@click.command"},
		{models.RootCliCommand, "add_argument("},
	},
	parser.LangJavaScript: {
		{models.RootMainFunction, "function main"},
		{models.RootExportedAPI, "app.get("},
		{models.RootExportedAPI, "app.post("},
		{models.RootExportedAPI, "router.get("},
		{models.RootExportedAPI, "router.post("},
		{models.RootExportedAPI, "addEventListener("},
		{models.RootTestEntry, "describe("},
		{models.RootTestEntry, "it("},
		{models.RootCliCommand, "process.argv"},
	},
	parser.LangShell: {
		// A shell script is itself an entry point.
		{models.RootMainFunction, "#!"},
	},
}

// collectRootHints scans source for entry-point patterns and ties each hit
// to the innermost declaration at that line, falling back to the module
// symbol for top-level matches.
func (e *Extractor) collectRootHints(batch *FileBatch, decls []declInfo, moduleID string, result *parser.Result) {
	patterns := rootPatterns[result.Language]
	if len(patterns) == 0 {
		return
	}

	content := string(result.Source)
	roots := e.cfg.Roots
	seen := make(map[string]bool)

	for _, rp := range patterns {
		switch rp.kind {
		case models.RootMainFunction:
			if !roots.DetectMain {
				continue
			}
		case models.RootExportedAPI:
			if !roots.DetectExported {
				continue
			}
		case models.RootTestEntry:
			if !roots.DetectTests {
				continue
			}
		case models.RootCliCommand:
			if !roots.DetectCli {
				continue
			}
		}

		// Every occurrence counts: each hit attributes to its own
		// enclosing declaration, so a file of test functions seeds one
		// root per function.
		for base := 0; ; {
			offset := strings.Index(content[base:], rp.pattern)
			if offset < 0 {
				break
			}
			start := base + offset
			base = start + len(rp.pattern)

			symbolID := enclosingDecl(decls, uint32(start), uint32(base))
			if symbolID == "" {
				symbolID = moduleID
			}
			key := string(rp.kind) + "\x00" + symbolID
			if seen[key] {
				continue
			}
			seen[key] = true

			batch.RootHints = append(batch.RootHints, RootHint{
				Kind:     rp.kind,
				SymbolID: symbolID,
				Pattern:  rp.pattern,
				Line:     uint32(strings.Count(content[:start], "\n")) + 1,
			})
		}
	}
}
