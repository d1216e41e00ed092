package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

const defaultConfigTemplate = `# czi configuration

[analysis]
# Identifier baked into symbol ids. Change it when analyzing several
# repositories into a shared store.
repo_id = "default"
# 0 means 2x the number of CPUs.
workers = 0
max_file_size = 1048576
parse_timeout_seconds = 10
# Drop findings below this confidence from reports.
min_confidence = 0.0

[roots]
detect_main = true
detect_exported = true
detect_tests = true
detect_cli = true

# Pin extra entry points by symbol id or glob matcher:
# [[roots.overrides]]
# matcher = "Scheduler.nightly_*"

[signals]
git = true
staleness_horizon_days = 365

[exclude]
patterns = ["*.min.js"]
extensions = [".lock"]
dirs = ["vendor", "node_modules", ".git", ".czi", "dist", "build", "target", "__pycache__"]
gitignore = true

[cache]
# Reuse graph snapshots between runs when the tree is unchanged.
enabled = false
dir = ".czi/cache"
ttl_hours = 168

[output]
format = "text"
color = true
verbose = false
`

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a czi.toml configuration file with defaults",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Value:   "czi.toml",
				Usage:   "Where to write the config file",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	path := c.String("path")

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Config written to %s", path)
	return nil
}
