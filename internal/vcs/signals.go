// Package vcs collects version-control evidence for classification: when a
// file last changed and who touched it most.
package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// DefaultMaxCommits bounds the log walk. Signals only need recent history;
// walking a decade of commits buys nothing.
const DefaultMaxCommits = 1000

// FileActivity summarizes one file's commit history.
type FileActivity struct {
	LastModified       time.Time
	PrimaryContributor string
	Commits            int
}

// Collector reads activity signals from a git repository.
type Collector struct {
	repo *git.Repository
	root string
}

// Open locates the repository containing path, searching parent directories
// for .git the way the git CLI does.
func Open(path string) (*Collector, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Collector{repo: repo, root: root}, nil
}

// Root returns the worktree root. Analysis paths must be made relative to
// it before lookup, since commit stats are repo-relative.
func (c *Collector) Root() string {
	return c.root
}

// FileSignals walks the log newest-first and aggregates per-file activity.
// files filters collection when non-empty; maxCommits <= 0 applies the
// default bound. onProgress, when non-nil, is called once per commit
// walked, so callers can render a spinner over long histories.
func (c *Collector) FileSignals(ctx context.Context, files []string, maxCommits int, onProgress func()) (map[string]FileActivity, error) {
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}

	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[f] = true
	}

	iter, err := c.repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	type tally struct {
		last    time.Time
		commits int
		authors map[string]int
	}
	tallies := make(map[string]*tally)

	seen := 0
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen++
		if seen > maxCommits {
			return storer.ErrStop
		}
		if onProgress != nil {
			onProgress()
		}

		stats, err := commit.Stats()
		if err != nil {
			// Stats fail on some merge commits; skip rather than abort.
			return nil
		}
		for _, stat := range stats {
			if len(wanted) > 0 && !wanted[stat.Name] {
				continue
			}
			t := tallies[stat.Name]
			if t == nil {
				t = &tally{authors: make(map[string]int)}
				tallies[stat.Name] = t
			}
			when := commit.Author.When
			if when.After(t.last) {
				t.last = when
			}
			t.commits++
			t.authors[commit.Author.Name]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]FileActivity, len(tallies))
	for path, t := range tallies {
		out[path] = FileActivity{
			LastModified:       t.last,
			PrimaryContributor: topAuthor(t.authors),
			Commits:            t.commits,
		}
	}
	return out, nil
}

func topAuthor(counts map[string]int) string {
	best := ""
	bestCount := 0
	for author, count := range counts {
		if count > bestCount || (count == bestCount && author < best) {
			best = author
			bestCount = count
		}
	}
	return best
}
