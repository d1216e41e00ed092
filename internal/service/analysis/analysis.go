// Package analysis orchestrates the full pipeline: discover files, extract
// in parallel, link the graph, gather signals, classify.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/analyzer"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/cache"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/extractor"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/fileproc"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/graph"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/scanner"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/vcs"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/parser"
)

// Service orchestrates analysis operations. One service serves one session;
// Close releases the shared query registry.
type Service struct {
	config   *config.Config
	registry *parser.Registry
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates an analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config:   config.LoadOrDefault(),
		registry: parser.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config exposes the effective configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Close releases session resources.
func (s *Service) Close() {
	s.registry.Close()
}

// GraphOptions configures graph construction.
type GraphOptions struct {
	OnProgress func()
}

// BuildGraph scans root, extracts every supported file in parallel and
// links the dependency graph. Per-file failures are recorded on the result,
// not returned; only setup failures error out.
func (s *Service) BuildGraph(ctx context.Context, root string, opts GraphOptions) (*graph.BuildResult, error) {
	files, err := scanner.NewScanner(s.config).ScanDir(root)
	if err != nil {
		return nil, err
	}
	files, _ = scanner.FilterBySize(files, s.config.Analysis.MaxFileSize)

	fingerprint := s.fingerprintFiles(ctx, files)
	if cached := s.cachedResult(root, fingerprint); cached != nil {
		return cached, nil
	}

	result, err := s.BuildGraphFromFiles(ctx, files, opts)
	if err != nil {
		return nil, err
	}
	s.storeResult(root, fingerprint, result)
	return result, nil
}

// cachedResult restores a snapshot from the cache. Any failure is a miss.
func (s *Service) cachedResult(root, fingerprint string) *graph.BuildResult {
	if !s.config.Cache.Enabled {
		return nil
	}
	c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTLHours, true)
	if err != nil {
		return nil
	}
	data, ok := c.Get(root, fingerprint)
	if !ok {
		return nil
	}
	var snapshot graph.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}
	result, err := snapshot.Restore()
	if err != nil {
		return nil
	}
	return result
}

// storeResult saves a snapshot of the built graph. Storage is best effort.
func (s *Service) storeResult(root, fingerprint string, result *graph.BuildResult) {
	if !s.config.Cache.Enabled {
		return
	}
	c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTLHours, true)
	if err != nil {
		return
	}
	data, err := json.Marshal(graph.NewSnapshot(result, ""))
	if err != nil {
		return
	}
	c.Set(root, fingerprint, data)
}

// fingerprintFiles hashes the identity, size, and mtime of every scanned
// file, so any change to the tree invalidates cache entries. Files are
// stat'd in parallel and the lines sorted before hashing, keeping the
// fingerprint independent of completion order.
func (s *Service) fingerprintFiles(ctx context.Context, files []string) string {
	workers := fileproc.Workers(s.config.Analysis.Workers)
	lines, _ := fileproc.ForEachFile(ctx, files, workers, func(path string) (string, error) {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Sprintf("%s|missing", path), nil
		}
		return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
	}, nil)
	sort.Strings(lines)
	return cache.HashBytes([]byte(strings.Join(lines, "\n")))
}

// BuildGraphFromFiles extracts and links an explicit file list.
func (s *Service) BuildGraphFromFiles(ctx context.Context, files []string, opts GraphOptions) (*graph.BuildResult, error) {
	ex := extractor.New(s.registry, s.config)
	workers := fileproc.Workers(s.config.Analysis.Workers)

	batches, procErrs := fileproc.MapFiles(ctx, files, workers,
		func(p *parser.Parser, path string) (*extractor.FileBatch, error) {
			return ex.ExtractFile(ctx, p, path)
		}, opts.OnProgress)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(s.config)
	for _, batch := range batches {
		builder.Add(batch)
	}
	if procErrs != nil && procErrs.HasErrors() {
		for _, procErr := range procErrs.Errors {
			builder.AddError(models.ParseError{
				File:    procErr.Path,
				Message: procErr.Err.Error(),
			})
		}
	}
	return builder.Build(), nil
}

// ZombieOptions configures classification.
type ZombieOptions struct {
	GraphOptions

	// NoGit skips version-control signal collection even when configured on.
	NoGit bool
}

// AnalyzeZombies runs the whole pipeline against a directory.
func (s *Service) AnalyzeZombies(ctx context.Context, root string, opts ZombieOptions) (*models.ZombieReport, error) {
	result, err := s.BuildGraph(ctx, root, opts.GraphOptions)
	if err != nil {
		return nil, err
	}
	return s.ClassifyGraph(ctx, root, result, opts)
}

// ClassifyGraph classifies a built graph, optionally enriched with git
// signals for the files it references.
func (s *Service) ClassifyGraph(ctx context.Context, root string, result *graph.BuildResult, opts ZombieOptions) (*models.ZombieReport, error) {
	var signals map[string]analyzer.FileSignal
	if s.config.Signals.Git && !opts.NoGit {
		signals = s.collectSignals(ctx, root, result, opts.OnProgress)
	}
	return analyzer.NewClassifier(s.config).Classify(ctx, result, signals)
}

// collectSignals maps git activity onto the graph's file paths. Signal
// collection is best effort; outside a repository it just returns nothing.
func (s *Service) collectSignals(ctx context.Context, root string, result *graph.BuildResult, onProgress func()) map[string]analyzer.FileSignal {
	collector, err := vcs.Open(root)
	if err != nil {
		return nil
	}

	paths := make(map[string]string)
	for _, sym := range result.Graph.Symbols() {
		if _, ok := paths[sym.FilePath]; ok {
			continue
		}
		if rel, ok := repoRelative(collector.Root(), sym.FilePath); ok {
			paths[sym.FilePath] = rel
		}
	}

	wanted := make([]string, 0, len(paths))
	for _, rel := range paths {
		wanted = append(wanted, rel)
	}

	activity, err := collector.FileSignals(ctx, wanted, 0, onProgress)
	if err != nil {
		return nil
	}

	signals := make(map[string]analyzer.FileSignal, len(paths))
	for path, rel := range paths {
		if act, ok := activity[rel]; ok {
			signals[path] = analyzer.FileSignal{
				LastModified:       act.LastModified,
				PrimaryContributor: act.PrimaryContributor,
			}
		}
	}
	return signals
}

func repoRelative(repoRoot, path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(os.PathSeparator) {
		return "", false
	}
	return rel, true
}
