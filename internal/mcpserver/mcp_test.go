package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
)

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
}

// TestServerCreationEmptyVersion verifies empty version defaults to "dev".
func TestServerCreationEmptyVersion(t *testing.T) {
	server := NewServer("")
	if server == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

// TestToolDescriptions verifies all description functions return non-empty strings.
func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"zombies":     describeZombies,
		"graph":       describeGraph,
		"querySymbol": describeQuerySymbol,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			if desc == "" {
				t.Errorf("%s description is empty", name)
			}
			if !strings.Contains(desc, "USE WHEN:") {
				t.Errorf("%s description missing USE WHEN section", name)
			}
			if !strings.Contains(desc, "INTERPRETING RESULTS:") {
				t.Errorf("%s description missing INTERPRETING RESULTS section", name)
			}
			if !strings.Contains(desc, "METRICS RETURNED:") {
				t.Errorf("%s description missing METRICS RETURNED section", name)
			}
		})
	}
}

// TestGetPath verifies path handling logic.
func TestGetPath(t *testing.T) {
	if got := getPath(AnalyzeInput{}); got != "." {
		t.Errorf("getPath(empty) = %q, want %q", got, ".")
	}
	if got := getPath(AnalyzeInput{Path: "/foo/bar"}); got != "/foo/bar" {
		t.Errorf("getPath() = %q, want %q", got, "/foo/bar")
	}
}

// TestGetFormat verifies format parsing logic.
func TestGetFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected output.Format
	}{
		{"empty defaults to toon", "", output.FormatTOON},
		{"json format", "json", output.FormatJSON},
		{"markdown format", "markdown", output.FormatMarkdown},
		{"md alias", "md", output.FormatMarkdown},
		{"unknown defaults to toon", "xml", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getFormat(AnalyzeInput{Format: tt.format})
			if result != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.format, result, tt.expected)
			}
		})
	}
}

// TestToolError verifies error result formatting.
func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("toolError returned nil result")
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if len(result.Content) == 0 {
		t.Fatal("toolError result has no content")
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("toolError content is not TextContent: %T", result.Content[0])
	}
	if textContent.Text != "Error: test error message" {
		t.Errorf("toolError text = %q, want %q", textContent.Text, "Error: test error message")
	}
}

// TestToolResult verifies successful result formatting.
func TestToolResult(t *testing.T) {
	data := map[string]any{
		"key": "value",
		"num": 42,
	}
	result, _, err := toolResult(data, output.FormatTOON)
	if err != nil {
		t.Fatalf("toolResult returned error: %v", err)
	}
	if result == nil {
		t.Fatal("toolResult returned nil")
	}
	if result.IsError {
		t.Error("toolResult.IsError should be false")
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("toolResult content is not TextContent: %T", result.Content[0])
	}
	if textContent.Text == "" {
		t.Error("toolResult text is empty")
	}
}

// TestFormatOutput verifies output formatting works for all formats.
func TestFormatOutput(t *testing.T) {
	data := map[string]any{
		"name":  "test",
		"value": 123,
	}

	formats := []output.Format{output.FormatTOON, output.FormatJSON, output.FormatMarkdown}
	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			text, err := formatOutput(data, format)
			if err != nil {
				t.Errorf("formatOutput failed for format %q: %v", format, err)
			}
			if text == "" {
				t.Errorf("formatOutput returned empty string for format %q", format)
			}
		})
	}
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return textContent.Text
}

// TestHandleAnalyzeZombies tests the zombie classification tool handler.
func TestHandleAnalyzeZombies(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"app.py": "def main():\n    helper()\n\nif __name__ == \"__main__\":\n    main()\n",
		"lib.py": "def helper():\n    pass\n\ndef forgotten():\n    pass\n",
	})

	input := ZombiesInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
		NoGit:        true,
	}

	result, _, err := handleAnalyzeZombies(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleAnalyzeZombies returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleAnalyzeZombies returned error result: %s", text)
	}
	if !strings.Contains(text, "forgotten") {
		t.Errorf("expected result to mention forgotten symbol, got: %s", text)
	}
}

// TestHandleAnalyzeZombiesEmptyDir verifies empty directories return an error result.
func TestHandleAnalyzeZombiesEmptyDir(t *testing.T) {
	dir := t.TempDir()

	input := ZombiesInput{
		AnalyzeInput: AnalyzeInput{Path: dir},
		NoGit:        true,
	}

	result, _, err := handleAnalyzeZombies(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleAnalyzeZombies returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for directory with no source files")
	}
}

// TestHandleAnalyzeGraph tests the graph tool handler.
func TestHandleAnalyzeGraph(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"main.py": "def main():\n    helper()\n",
		"util.py": "def helper():\n    pass\n",
	})

	input := GraphInput{
		AnalyzeInput:      AnalyzeInput{Path: dir, Format: "json"},
		IncludeCentrality: true,
		CentralityTop:     5,
	}

	result, _, err := handleAnalyzeGraph(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleAnalyzeGraph returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleAnalyzeGraph returned error result: %s", text)
	}
	if !strings.Contains(text, "centrality") {
		t.Errorf("expected centrality in output, got: %s", text)
	}
	if !strings.Contains(text, "helper") {
		t.Errorf("expected helper symbol in output, got: %s", text)
	}
}

// TestHandleQuerySymbol tests the symbol query tool handler.
func TestHandleQuerySymbol(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"main.py": "def main():\n    helper()\n",
		"util.py": "def helper():\n    pass\n",
	})

	input := QuerySymbolInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
		Name:         "helper",
	}

	result, _, err := handleQuerySymbol(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleQuerySymbol returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleQuerySymbol returned error result: %s", text)
	}
	if !strings.Contains(text, "main") {
		t.Errorf("expected dependent main in output, got: %s", text)
	}
}

// TestHandleQuerySymbolNotFound verifies unknown names return an error result.
func TestHandleQuerySymbolNotFound(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"main.py": "def main():\n    pass\n",
	})

	input := QuerySymbolInput{
		AnalyzeInput: AnalyzeInput{Path: dir},
		Name:         "does_not_exist",
	}

	result, _, err := handleQuerySymbol(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleQuerySymbol returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for unknown symbol name")
	}
}

// TestHandleQuerySymbolMissingName verifies the name argument is required.
func TestHandleQuerySymbolMissingName(t *testing.T) {
	result, _, err := handleQuerySymbol(context.Background(), nil, QuerySymbolInput{})
	if err != nil {
		t.Fatalf("handleQuerySymbol returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError when name is empty")
	}
}

// TestParseFrontmatter verifies frontmatter extraction from prompt files.
func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDesc string
		wantBody string
	}{
		{
			name:     "valid frontmatter",
			content:  "---\ndescription: a prompt\n---\n\nbody text",
			wantDesc: "a prompt",
			wantBody: "body text",
		},
		{
			name:     "no frontmatter",
			content:  "just body",
			wantDesc: "",
			wantBody: "just body",
		},
		{
			name:     "unterminated frontmatter",
			content:  "---\ndescription: broken",
			wantDesc: "",
			wantBody: "---\ndescription: broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, body := parseFrontmatter([]byte(tt.content))
			if desc != tt.wantDesc {
				t.Errorf("description = %q, want %q", desc, tt.wantDesc)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// TestEmbeddedPrompts verifies the embedded prompt files are well formed.
func TestEmbeddedPrompts(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatalf("failed to read embedded prompts: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded prompt files found")
	}

	for _, entry := range entries {
		t.Run(entry.Name(), func(t *testing.T) {
			content, err := promptFiles.ReadFile(filepath.Join("prompts", entry.Name()))
			if err != nil {
				t.Fatalf("failed to read %s: %v", entry.Name(), err)
			}
			desc, body := parseFrontmatter(content)
			if desc == "" {
				t.Errorf("%s has no description frontmatter", entry.Name())
			}
			if strings.TrimSpace(body) == "" {
				t.Errorf("%s has no body", entry.Name())
			}
		})
	}
}

// TestGenerateManifest verifies the manifest is valid JSON with expected fields.
func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest returned error: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Name != "io.github.c2j/czi" {
		t.Errorf("manifest name = %q", manifest.Name)
	}
	if manifest.Version != "1.2.3" {
		t.Errorf("manifest version = %q", manifest.Version)
	}
	if len(manifest.Packages) == 0 {
		t.Error("manifest has no packages")
	}
}

// TestGenerateManifestEmptyVersion verifies empty version defaults to 0.0.0.
func TestGenerateManifestEmptyVersion(t *testing.T) {
	data, err := GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest returned error: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Version != "0.0.0" {
		t.Errorf("manifest version = %q, want 0.0.0", manifest.Version)
	}
}
