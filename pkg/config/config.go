package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for czi.
type Config struct {
	// Analysis limits and identity
	Analysis AnalysisConfig `koanf:"analysis"`

	// Root node definitions seeding reachability
	Roots RootsConfig `koanf:"roots"`

	// External signal collaborators
	Signals SignalsConfig `koanf:"signals"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Graph snapshot caching
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig bounds a run.
type AnalysisConfig struct {
	RepoID              string  `koanf:"repo_id"`
	Workers             int     `koanf:"workers"` // 0 means 2x NumCPU
	MaxFileSize         int64   `koanf:"max_file_size"`
	ParseTimeoutSeconds int     `koanf:"parse_timeout_seconds"`
	MinConfidence       float64 `koanf:"min_confidence"`
}

// RootsConfig declares how the reachability seed set is assembled.
type RootsConfig struct {
	// DetectMain, DetectExported, DetectTests, DetectCli toggle structural
	// root-hint detection during extraction.
	DetectMain     bool `koanf:"detect_main"`
	DetectExported bool `koanf:"detect_exported"`
	DetectTests    bool `koanf:"detect_tests"`
	DetectCli      bool `koanf:"detect_cli"`

	// Manual overrides pin roots by symbol id or name matcher.
	Overrides []RootOverride `koanf:"overrides"`
}

// RootOverride is one manually configured root.
type RootOverride struct {
	SymbolID string `koanf:"symbol_id"`
	Matcher  string `koanf:"matcher"` // glob matched against name and qualified scope
}

// SignalsConfig controls the optional external classifiers inputs.
type SignalsConfig struct {
	Git                  bool `koanf:"git"`
	StalenessHorizonDays int  `koanf:"staleness_horizon_days"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// CacheConfig controls graph snapshot caching between runs.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Dir      string `koanf:"dir"`
	TTLHours int    `koanf:"ttl_hours"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			RepoID:              "default",
			Workers:             0,
			MaxFileSize:         1024 * 1024,
			ParseTimeoutSeconds: 10,
			MinConfidence:       0.0,
		},
		Roots: RootsConfig{
			DetectMain:     true,
			DetectExported: true,
			DetectTests:    true,
			DetectCli:      true,
		},
		Signals: SignalsConfig{
			Git:                  true,
			StalenessHorizonDays: 365,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
			},
			Extensions: []string{
				".lock",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".czi",
				"dist",
				"build",
				"target",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled:  false,
			Dir:      filepath.Join(".czi", "cache"),
			TTLHours: 168,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"czi.toml",
		"czi.yaml",
		"czi.yml",
		"czi.json",
		".czi.toml",
		".czi.yaml",
		".czi.yml",
		".czi.json",
	}

	searchDirs := []string{".", ".czi"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
