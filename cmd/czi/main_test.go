package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/config"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// TestDefaultConfigTemplateLoads verifies the init template parses back into
// the default configuration.
func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "czi.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("template did not parse: %v", err)
	}

	defaults := config.DefaultConfig()
	if cfg.Analysis.RepoID != defaults.Analysis.RepoID {
		t.Errorf("repo_id = %q, want %q", cfg.Analysis.RepoID, defaults.Analysis.RepoID)
	}
	if cfg.Analysis.MaxFileSize != defaults.Analysis.MaxFileSize {
		t.Errorf("max_file_size = %d, want %d", cfg.Analysis.MaxFileSize, defaults.Analysis.MaxFileSize)
	}
	if cfg.Signals.StalenessHorizonDays != defaults.Signals.StalenessHorizonDays {
		t.Errorf("staleness_horizon_days = %d, want %d",
			cfg.Signals.StalenessHorizonDays, defaults.Signals.StalenessHorizonDays)
	}
	if !cfg.Roots.DetectMain || !cfg.Roots.DetectTests {
		t.Error("root detection toggles should default to true")
	}
	if !cfg.Exclude.Gitignore {
		t.Error("gitignore exclusion should default to true")
	}
}

// TestZombieRows verifies row formatting for the analyze table.
func TestZombieRows(t *testing.T) {
	dist := uint32(2)
	items := []models.ZombieCodeItem{
		{
			Name:              "forgotten",
			Location:          "lib.py:4",
			ZombieType:        models.ZombieDeadCode,
			Confidence:        0.85,
			IsolationDistance: &dist,
		},
		{
			Name:       "orphan",
			Location:   "old.py:1",
			ZombieType: models.ZombieUnreachable,
			Confidence: 0.6,
		},
	}

	rows := zombieRows(items, false)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][3] != "2" {
		t.Errorf("isolation = %q, want %q", rows[0][3], "2")
	}
	if rows[0][4] != "85%" {
		t.Errorf("confidence = %q, want %q", rows[0][4], "85%")
	}
	if rows[1][3] != "-" {
		t.Errorf("orphan isolation = %q, want %q", rows[1][3], "-")
	}
	if rows[1][2] != "unreachable" {
		t.Errorf("zombie type = %q, want %q", rows[1][2], "unreachable")
	}
}

// TestRenderZombieReport verifies the text rendering path end to end.
func TestRenderZombieReport(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.txt")
	formatter, err := output.NewFormatter(output.FormatText, outPath, false)
	if err != nil {
		t.Fatalf("failed to create formatter: %v", err)
	}

	report := &models.ZombieReport{
		Items: []models.ZombieCodeItem{
			{Name: "forgotten", Location: "lib.py:4", ZombieType: models.ZombieDeadCode, Confidence: 0.7},
		},
		Metrics:   models.GraphMetrics{TotalNodes: 5, UnresolvedReferences: 1},
		Reachable: 4,
		Roots:     1,
		FileErrors: []models.ParseError{
			{File: "broken.py", Message: "parse failed"},
		},
	}

	if err := renderZombieReport(formatter, report, 1, true); err != nil {
		t.Fatalf("renderZombieReport returned error: %v", err)
	}
	formatter.Close()

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	text := string(data)

	for _, want := range []string{"forgotten", "lib.py:4", "Summary:", "broken.py"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

// TestRenderZombieReportClean verifies the no-findings path.
func TestRenderZombieReportClean(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.txt")
	formatter, err := output.NewFormatter(output.FormatText, outPath, false)
	if err != nil {
		t.Fatalf("failed to create formatter: %v", err)
	}

	report := &models.ZombieReport{
		Metrics:   models.GraphMetrics{TotalNodes: 3},
		Reachable: 3,
		Roots:     1,
	}

	if err := renderZombieReport(formatter, report, 0, false); err != nil {
		t.Fatalf("renderZombieReport returned error: %v", err)
	}
	formatter.Close()

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "No zombie code found") {
		t.Errorf("expected clean message, got:\n%s", string(data))
	}
}
