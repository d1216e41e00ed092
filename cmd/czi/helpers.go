package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/progress"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/remote"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/scanner"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/service/analysis"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
)

// getPathArg returns the first positional argument, defaulting to the
// current directory.
func getPathArg(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig resolves configuration from the --config flag or the standard
// search locations, then applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.LoadOrDefault()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// resolveSource turns a path argument into a local directory, cloning remote
// references (owner/repo shorthand or git URLs) into a temp directory. The
// returned cleanup removes any clone.
func resolveSource(c *cli.Context, path string) (string, func(), error) {
	src := remote.Parse(path)
	if src == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		return abs, func() {}, nil
	}

	dir, err := src.Clone(c.Context)
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// newFormatter builds a formatter from the global flags.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	colored := !c.Bool("no-color")
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), colored)
}

// newTracker returns a progress bar for text output and a silent tracker for
// machine-readable formats, where stderr noise is unwelcome.
func newTracker(c *cli.Context, label string, total int) *progress.Tracker {
	if output.ParseFormat(c.String("format")) != output.FormatText {
		return progress.NewQuiet(label)
	}
	return progress.NewTracker(label, total)
}

// newSpinner is newTracker for phases with no known total, like walking
// git history.
func newSpinner(c *cli.Context, label string) *progress.Tracker {
	if output.ParseFormat(c.String("format")) != output.FormatText {
		return progress.NewQuiet(label)
	}
	return progress.NewSpinner(label)
}

// buildGraphAt scans a directory (cloning it first when remote) and links
// its dependency graph, reporting progress on the tracker appropriate for
// the output format.
func buildGraphAt(c *cli.Context, path string) (*graph.BuildResult, error) {
	dir, cleanup, err := resolveSource(c, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	defer svc.Close()

	files, err := scanner.NewScanner(cfg).ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	files, _ = scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)

	tracker := newTracker(c, "Building graph...", len(files))
	result, err := svc.BuildGraphFromFiles(c.Context, files, analysis.GraphOptions{
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, fmt.Errorf("graph build failed: %w", err)
	}
	tracker.FinishSuccess()
	return result, nil
}
