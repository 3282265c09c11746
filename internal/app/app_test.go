package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callsight/internal/config"
)

func createTestProject(t *testing.T, root string) {
	calcPy := `class Calculator:
    def add(self, a, b):
        return a + b

def run():
    calc = Calculator()
    return calc.add(1, 2)
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "calc.py"), []byte(calcPy), 0644))

	mainPy := `from math import sqrt

def main(x: int) -> float:
    return sqrt(x)

main(4)
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte(mainPy), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "__pycache__"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "__pycache__", "stale.py"), []byte("x = 1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("docs"), 0644))
}

func newTestApp(t *testing.T, root string) *App {
	cfg := config.Default()
	cfg.ScanPaths = []string{root}
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestScanDirectories(t *testing.T) {
	root := t.TempDir()
	createTestProject(t, root)
	a := newTestApp(t, root)

	files, err := a.ScanDirectories()
	require.NoError(t, err)

	assert.Len(t, files, 2)
	for _, f := range files {
		assert.NotContains(t, f, "__pycache__")
		assert.Contains(t, f, ".py")
	}
}

func TestRunOnce(t *testing.T) {
	root := t.TempDir()
	createTestProject(t, root)
	a := newTestApp(t, root)

	result, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Snapshot.FileCount)
	assert.NotEmpty(t, result.Snapshot.RunID)

	targets := map[string]bool{}
	for _, res := range result.Resolutions {
		for _, call := range res.Calls {
			if call.Resolved() {
				targets[call.Target] = true
			}
		}
	}
	assert.True(t, targets["Calculator.add"], "calc.add must attribute to Calculator.add")
	assert.True(t, targets["Calculator.__init__"], "Calculator() must attribute to the constructor")

	// sqrt comes from another module; it stays unresolved by design.
	assert.Greater(t, result.Snapshot.CrossModuleCount, 0)

	// Calculator.add is called and unannotated; it must outrank main.
	require.NotEmpty(t, result.Scores)
	assert.Equal(t, "Calculator.add", result.Scores[0].QualifiedName)

	snapshots, err := a.RecentSnapshots(5)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, result.Snapshot.RunID, snapshots[0].RunID)
}

func TestProcessFileReplacesCachedResolution(t *testing.T) {
	root := t.TempDir()
	createTestProject(t, root)
	a := newTestApp(t, root)

	_, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	path := filepath.Join(root, "calc.py")
	require.NoError(t, os.WriteFile(path, []byte("def solo():\n    pass\n"), 0644))
	require.NoError(t, a.ProcessFile(path))

	result, err := a.buildResult()
	require.NoError(t, err)

	for _, res := range result.Resolutions {
		if res.File.Path == path {
			assert.True(t, res.Functions["solo"])
			assert.False(t, res.Classes["Calculator"], "old resolution must be replaced")
		}
	}
}
