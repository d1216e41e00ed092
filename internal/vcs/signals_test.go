package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, wt *git.Worktree, dir, name, content, author string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: author, Email: author + "@example.com", When: when},
	})
	require.NoError(t, err)
}

func initRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return dir, wt
}

func TestFileSignals(t *testing.T) {
	dir, wt := initRepo(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	commitFile(t, wt, dir, "app.py", "v1", "alice", base)
	commitFile(t, wt, dir, "app.py", "v2", "bob", base.Add(24*time.Hour))
	commitFile(t, wt, dir, "app.py", "v3", "bob", base.Add(48*time.Hour))
	commitFile(t, wt, dir, "other.py", "x", "carol", base.Add(72*time.Hour))

	collector, err := Open(dir)
	require.NoError(t, err)

	var walked int
	signals, err := collector.FileSignals(context.Background(), []string{"app.py"}, 0, func() { walked++ })
	require.NoError(t, err)
	assert.Equal(t, 4, walked)

	require.Contains(t, signals, "app.py")
	assert.NotContains(t, signals, "other.py")

	activity := signals["app.py"]
	assert.Equal(t, "bob", activity.PrimaryContributor)
	assert.Equal(t, 3, activity.Commits)
	assert.True(t, activity.LastModified.Equal(base.Add(48*time.Hour)))
}

func TestFileSignalsUnfiltered(t *testing.T) {
	dir, wt := initRepo(t)
	commitFile(t, wt, dir, "a.py", "a", "alice", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	commitFile(t, wt, dir, "b.py", "b", "alice", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	collector, err := Open(dir)
	require.NoError(t, err)

	signals, err := collector.FileSignals(context.Background(), nil, 0, nil)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
}

func TestOpenNonRepo(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestFileSignalsCancelled(t *testing.T) {
	dir, wt := initRepo(t)
	commitFile(t, wt, dir, "a.py", "a", "alice", time.Now())

	collector, err := Open(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = collector.FileSignals(ctx, nil, 0, nil)
	assert.Error(t, err)
}
