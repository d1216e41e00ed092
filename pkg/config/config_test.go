package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "default", cfg.Analysis.RepoID)
	assert.Equal(t, int64(1024*1024), cfg.Analysis.MaxFileSize)
	assert.Equal(t, 10, cfg.Analysis.ParseTimeoutSeconds)
	assert.True(t, cfg.Roots.DetectMain)
	assert.True(t, cfg.Signals.Git)
	assert.Equal(t, 365, cfg.Signals.StalenessHorizonDays)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.Contains(t, cfg.Exclude.Dirs, "node_modules")
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 168, cfg.Cache.TTLHours)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "czi.toml")
	content := `
[analysis]
repo_id = "billing"
workers = 4
min_confidence = 0.5

[roots]
detect_tests = false

[[roots.overrides]]
matcher = "Legacy*"

[signals]
staleness_horizon_days = 90
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Analysis.RepoID)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, 0.5, cfg.Analysis.MinConfidence)
	assert.False(t, cfg.Roots.DetectTests)
	// Untouched sections keep defaults.
	assert.True(t, cfg.Roots.DetectMain)
	require.Len(t, cfg.Roots.Overrides, 1)
	assert.Equal(t, "Legacy*", cfg.Roots.Overrides[0].Matcher)
	assert.Equal(t, 90, cfg.Signals.StalenessHorizonDays)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "czi.yaml")

	doc := map[string]any{
		"analysis": map[string]any{
			"repo_id": "frontend",
		},
		"signals": map[string]any{
			"git": false,
		},
	}
	raw, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "frontend", cfg.Analysis.RepoID)
	assert.False(t, cfg.Signals.Git)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/czi.toml")
	assert.Error(t, err)
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"node_modules/lib/index.js", true},
		{"src/node_modules/lib/index.js", true},
		{"src/app.js", false},
		{"bundle.min.js", true},
		{"deps.lock", true},
		{"src/Main.java", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ShouldExclude(filepath.FromSlash(tt.path)))
		})
	}
}
