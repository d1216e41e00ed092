package fileproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/parser"
)

func writeFiles(t *testing.T, names map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func TestMapFilesCollectsResults(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "def a(): pass\n",
		"b.py": "def b(): pass\n",
		"c.py": "def c(): pass\n",
	})

	results, errs := MapFiles(context.Background(), paths, 2, func(p *parser.Parser, path string) (string, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		res, err := p.Parse(context.Background(), src, path)
		if err != nil {
			return "", err
		}
		defer res.Close()
		return filepath.Base(path), nil
	}, nil)

	assert.Nil(t, errs)
	sort.Strings(results)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, results)
}

func TestMapFilesIndividualFailureDoesNotAbortBatch(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "def a(): pass\n",
		"b.py": "def b(): pass\n",
	})

	boom := errors.New("boom")
	results, errs := MapFiles(context.Background(), paths, 1, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "a.py" {
			return "", boom
		}
		return filepath.Base(path), nil
	}, nil)

	require.NotNil(t, errs)
	assert.Len(t, errs.Errors, 1)
	assert.Equal(t, []string{"b.py"}, results)
}

func TestMapFilesProgressCalledPerFile(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
	})

	var ticks atomic.Int32
	MapFiles(context.Background(), paths, 2, func(p *parser.Parser, path string) (struct{}, error) {
		return struct{}{}, nil
	}, func() { ticks.Add(1) })

	assert.Equal(t, int32(2), ticks.Load())
}

func TestMapFilesCancelledContext(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := MapFiles(ctx, paths, 1, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	}, nil)

	require.NotNil(t, errs)
	assert.True(t, errs.HasErrors())
	assert.LessOrEqual(t, len(results), len(paths))
}

func TestForEachFile(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.txt": "aa",
		"b.txt": "bbb",
	})

	sizes, errs := ForEachFile(context.Background(), paths, 0, func(path string) (int, error) {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return int(info.Size()), nil
	}, nil)

	assert.Nil(t, errs)
	sort.Ints(sizes)
	assert.Equal(t, []int{2, 3}, sizes)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 4, Workers(4))
	assert.Greater(t, Workers(0), 0)
}
