package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/parser"
)

func extractString(t *testing.T, source, path string) *FileBatch {
	t.Helper()
	registry := parser.NewRegistry()
	t.Cleanup(registry.Close)
	psr := parser.New()
	t.Cleanup(psr.Close)

	ex := New(registry, config.DefaultConfig())
	batch, err := ex.ExtractSource(context.Background(), psr, []byte(source), path)
	require.NoError(t, err)
	return batch
}

func findSymbol(batch *FileBatch, name string) *models.Symbol {
	// The module symbol is named after the file stem, which can collide with
	// a declaration (Worker.java / class Worker). Prefer the declaration and
	// fall back to the module symbol only when no declaration matches.
	var module *models.Symbol
	for i := range batch.Symbols {
		if batch.Symbols[i].Name != name {
			continue
		}
		if batch.Symbols[i].Kind == models.SymbolModule {
			if module == nil {
				module = &batch.Symbols[i]
			}
			continue
		}
		return &batch.Symbols[i]
	}
	return module
}

func TestExtractPythonDeclarations(t *testing.T) {
	src := `
class Greeter:
    def greet(self):
        return "hi"

def standalone():
    pass

def _hidden():
    pass
`
	batch := extractString(t, src, "app/greeter.py")

	module := findSymbol(batch, "greeter")
	require.NotNil(t, module)
	assert.Equal(t, models.SymbolModule, module.Kind)

	greeter := findSymbol(batch, "Greeter")
	require.NotNil(t, greeter)
	assert.Equal(t, models.SymbolClass, greeter.Kind)
	assert.True(t, greeter.Exported)

	greet := findSymbol(batch, "greet")
	require.NotNil(t, greet)
	assert.Equal(t, models.SymbolMethod, greet.Kind)
	assert.Equal(t, "Greeter", greet.QualifiedScope)

	standalone := findSymbol(batch, "standalone")
	require.NotNil(t, standalone)
	assert.Equal(t, models.SymbolFunction, standalone.Kind)
	assert.Equal(t, "", standalone.QualifiedScope)

	hidden := findSymbol(batch, "_hidden")
	require.NotNil(t, hidden)
	assert.False(t, hidden.Exported)
	assert.Equal(t, models.VisibilityPrivate, hidden.Visibility)
}

func TestExtractPythonCallAttribution(t *testing.T) {
	src := `
def helper():
    pass

def caller():
    helper()

helper()
`
	batch := extractString(t, src, "calls.py")

	caller := findSymbol(batch, "caller")
	module := findSymbol(batch, "calls")
	require.NotNil(t, caller)
	require.NotNil(t, module)

	var fromCaller, fromModule int
	for _, fact := range batch.Facts {
		if fact.Kind != models.EdgeCalls || fact.Name != "helper" {
			continue
		}
		switch fact.SourceSymbolID {
		case caller.ID:
			fromCaller++
		case module.ID:
			fromModule++
		}
	}
	assert.Equal(t, 1, fromCaller)
	assert.Equal(t, 1, fromModule)
}

func TestExtractPythonImports(t *testing.T) {
	src := `
import os.path
from collections import OrderedDict
`
	batch := extractString(t, src, "imports.py")

	var names []string
	for _, fact := range batch.Facts {
		if fact.Kind == models.EdgeImports {
			names = append(names, fact.Name)
		}
	}
	assert.Contains(t, names, "os.path")
	assert.Contains(t, names, "collections")
}

func TestExtractJavaVisibilityAndInheritance(t *testing.T) {
	src := `
public class Worker extends Base implements Runnable {
    public void run() {
        helper();
    }

    private void helper() {
        Task t = new Task();
    }
}
`
	batch := extractString(t, src, "Worker.java")

	worker := findSymbol(batch, "Worker")
	require.NotNil(t, worker)
	assert.Equal(t, models.SymbolClass, worker.Kind)
	assert.True(t, worker.Exported)

	run := findSymbol(batch, "run")
	require.NotNil(t, run)
	assert.Equal(t, "Worker", run.QualifiedScope)
	assert.Equal(t, models.VisibilityPublic, run.Visibility)

	helper := findSymbol(batch, "helper")
	require.NotNil(t, helper)
	assert.Equal(t, models.VisibilityPrivate, helper.Visibility)
	assert.False(t, helper.Exported)

	var inherits, instantiates []string
	for _, fact := range batch.Facts {
		switch fact.Kind {
		case models.EdgeInherits:
			inherits = append(inherits, fact.Name)
		case models.EdgeInstantiates:
			instantiates = append(instantiates, fact.Name)
		}
	}
	assert.ElementsMatch(t, []string{"Base", "Runnable"}, inherits)
	assert.Equal(t, []string{"Task"}, instantiates)
}

func TestExtractJavaScriptExports(t *testing.T) {
	src := `
import { helper } from './util.js';

export function visible() {
    helper();
}

function internal() {
    return new Widget();
}
`
	batch := extractString(t, src, "mod.js")

	visible := findSymbol(batch, "visible")
	require.NotNil(t, visible)
	assert.True(t, visible.Exported)

	internal := findSymbol(batch, "internal")
	require.NotNil(t, internal)
	assert.False(t, internal.Exported)

	var imports []string
	for _, fact := range batch.Facts {
		if fact.Kind == models.EdgeImports {
			imports = append(imports, fact.Name)
		}
	}
	assert.Equal(t, []string{"./util.js"}, imports)
}

func TestExtractShellFunctionsAndSourcing(t *testing.T) {
	src := `#!/bin/bash
source lib/common.sh

deploy() {
    build
}

deploy
`
	batch := extractString(t, src, "deploy.sh")

	deploy := findSymbol(batch, "deploy")
	require.NotNil(t, deploy)
	assert.Equal(t, models.SymbolFunction, deploy.Kind)

	var imports []string
	for _, fact := range batch.Facts {
		if fact.Kind == models.EdgeImports {
			imports = append(imports, fact.Name)
		}
	}
	assert.Equal(t, []string{"lib/common.sh"}, imports)
}

func TestRootHintsPython(t *testing.T) {
	src := `
def test_widget():
    assert True

def main():
    pass

if __name__ == "__main__":
    main()
`
	batch := extractString(t, src, "cli.py")

	var kinds []models.RootKind
	for _, hint := range batch.RootHints {
		kinds = append(kinds, hint.Kind)
	}
	assert.Contains(t, kinds, models.RootMainFunction)
	assert.Contains(t, kinds, models.RootTestEntry)
}

func TestRootHintsEveryOccurrence(t *testing.T) {
	src := `
def test_alpha():
    assert True

def test_beta():
    assert True
`
	batch := extractString(t, src, "test_suite.py")

	alpha := findSymbol(batch, "test_alpha")
	beta := findSymbol(batch, "test_beta")
	require.NotNil(t, alpha)
	require.NotNil(t, beta)

	hinted := make(map[string]bool)
	for _, hint := range batch.RootHints {
		if hint.Kind == models.RootTestEntry {
			hinted[hint.SymbolID] = true
		}
	}
	assert.True(t, hinted[alpha.ID], "test_alpha must be hinted")
	assert.True(t, hinted[beta.ID], "test_beta must be hinted")
}

func TestRootHintsJavaMain(t *testing.T) {
	src := `
public class App {
    public static void main(String[] args) {
    }
}
`
	batch := extractString(t, src, "App.java")

	require.NotEmpty(t, batch.RootHints)
	hint := batch.RootHints[0]
	assert.Equal(t, models.RootMainFunction, hint.Kind)

	main := findSymbol(batch, "main")
	require.NotNil(t, main)
	assert.Equal(t, main.ID, hint.SymbolID)
}

func TestRootHintsRespectToggles(t *testing.T) {
	registry := parser.NewRegistry()
	t.Cleanup(registry.Close)
	psr := parser.New()
	t.Cleanup(psr.Close)

	cfg := config.DefaultConfig()
	cfg.Roots.DetectTests = false
	ex := New(registry, cfg)

	batch, err := ex.ExtractSource(context.Background(), psr, []byte("def test_a():\n    pass\n"), "t.py")
	require.NoError(t, err)
	assert.Empty(t, batch.RootHints)
}

func TestExtractContextWindow(t *testing.T) {
	src := "alpha; aaaaaaaaaaaaaaaaaaaa target(x) bbbbbbbbbbbbbbbbbbbb ;omega"
	start := uint32(strings.Index(src, "target"))
	end := start + uint32(len("target"))

	ctx := extractContext([]byte(src), start, end)
	assert.Contains(t, ctx, "target(x)")
	assert.NotContains(t, ctx, "alpha")
	assert.NotContains(t, ctx, "omega")
}

func TestExtractContextBounds(t *testing.T) {
	source := []byte("x()")
	assert.Equal(t, "x()", extractContext(source, 0, 1))
}
