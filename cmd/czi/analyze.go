package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/output"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/scanner"
	"github.com/c2j/CodeZombiesInvestigator-sub001/internal/service/analysis"
	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"zombies"},
		Usage:     "Detect zombie code: symbols unreachable from any entry point",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "min-confidence",
				Usage: "Minimum confidence threshold (0.0-1.0)",
			},
			&cli.BoolFlag{
				Name:  "no-git",
				Usage: "Skip git history signals",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show only the N highest-confidence items (0 = all)",
			},
			&cli.StringFlag{
				Name:  "repo-id",
				Usage: "Repository identifier baked into symbol ids",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	path, cleanup, err := resolveSource(c, getPathArg(c))
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("min-confidence") {
		cfg.Analysis.MinConfidence = c.Float64("min-confidence")
	}
	if repoID := c.String("repo-id"); repoID != "" {
		cfg.Analysis.RepoID = repoID
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	defer svc.Close()

	files, err := scanner.NewScanner(cfg).ScanDir(path)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	files, skipped := scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := newTracker(c, "Analyzing...", len(files))
	result, err := svc.BuildGraphFromFiles(c.Context, files, analysis.GraphOptions{
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	spinner := newSpinner(c, "Classifying...")
	report, err := svc.ClassifyGraph(c.Context, path, result, analysis.ZombieOptions{
		NoGit:        c.Bool("no-git"),
		GraphOptions: analysis.GraphOptions{OnProgress: spinner.Tick},
	})
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("classification failed: %w", err)
	}
	spinner.FinishSuccess()

	if top := c.Int("top"); top > 0 && len(report.Items) > top {
		report.Items = report.Items[:top]
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText {
		return formatter.Output(report)
	}

	return renderZombieReport(formatter, report, skipped, c.Bool("verbose"))
}

func renderZombieReport(formatter *output.Formatter, report *models.ZombieReport, skipped int, verbose bool) error {
	if len(report.Items) > 0 {
		table := output.NewTable(
			"Zombie Code",
			[]string{"Location", "Symbol", "Type", "Isolation", "Confidence"},
			zombieRows(report.Items, formatter.Colored()),
			nil,
			report.Items,
		)
		if err := formatter.Output(table); err != nil {
			return err
		}
	} else {
		formatter.Success("No zombie code found")
	}

	w := formatter.Writer()
	fmt.Fprintf(w, "Summary: %d zombies across %d symbols (%d reachable from %d roots, %d unresolved references)\n",
		len(report.Items),
		report.Metrics.TotalNodes,
		report.Reachable,
		report.Roots,
		report.Metrics.UnresolvedReferences)
	if skipped > 0 {
		formatter.Warning("%d files skipped (over size limit)", skipped)
	}

	if len(report.FileErrors) > 0 {
		formatter.Warning("%d files failed to parse", len(report.FileErrors))
		if verbose {
			for _, fe := range report.FileErrors {
				fmt.Fprintf(w, "  %s: %s\n", fe.File, fe.Message)
			}
		}
	}

	return nil
}

func zombieRows(items []models.ZombieCodeItem, colored bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		confStr := fmt.Sprintf("%.0f%%", item.Confidence*100)
		if colored {
			confStr = output.ConfidenceColor(item.Confidence, confStr)
		}

		isolation := "-"
		if item.IsolationDistance != nil {
			isolation = fmt.Sprintf("%d", *item.IsolationDistance)
		}

		rows = append(rows, []string{
			item.Location,
			item.Name,
			string(item.ZombieType),
			isolation,
			confStr,
		})
	}
	return rows
}
