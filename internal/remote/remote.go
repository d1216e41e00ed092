// Package remote resolves repository references that are not local paths
// and clones them for analysis.
package remote

import (
	"context"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL string // normalized git URL
	Ref string // branch or tag (empty = default branch)
}

// Parse detects whether a path is a remote reference. A path that exists on
// the filesystem takes precedence and returns nil.
func Parse(path string) *Source {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// path@ref pins a branch or tag
	ref := ""
	if idx := strings.LastIndex(path, "@"); idx > 0 {
		ref = path[idx+1:]
		path = path[:idx]
	}

	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "git@") {
		return &Source{URL: path, Ref: ref}
	}

	if isGitHubShorthand(path) {
		return &Source{URL: "https://github.com/" + path, Ref: ref}
	}

	return nil
}

// isGitHubShorthand returns true if path matches the owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash indicates a domain, not an owner
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone performs a shallow clone into a temporary directory and returns the
// directory path. The caller removes it when done.
func (s *Source) Clone(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "czi-remote-*")
	if err != nil {
		return "", err
	}

	opts := &git.CloneOptions{
		URL:          s.URL,
		Depth:        1,
		SingleBranch: true,
	}

	if s.Ref == "" {
		if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("failed to clone %s: %w", s.URL, err)
		}
		return dir, nil
	}

	// Try the ref as a branch first, then as a tag.
	opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err == nil {
		return dir, nil
	}
	os.RemoveAll(dir)

	dir, err = os.MkdirTemp("", "czi-remote-*")
	if err != nil {
		return "", err
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(s.Ref)
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to clone %s at %s: %w", s.URL, s.Ref, err)
	}
	return dir, nil
}
