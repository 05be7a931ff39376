package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mtime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type trees struct {
	srcBase, srcTarget, dstBase, dstTarget string
}

func (tr trees) args(mode string, extra ...string) []string {
	return append([]string{mode, tr.srcBase, tr.srcTarget, tr.dstBase, tr.dstTarget}, extra...)
}

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// newTrees builds snapshots where a.txt moved to sub/b.txt, gone.txt was
// deleted and new.txt added. It also isolates the test from any user
// config file.
func newTrees(t *testing.T) trees {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	tr := trees{
		srcBase:   filepath.Join(dir, "src-base"),
		srcTarget: filepath.Join(dir, "src-target"),
		dstBase:   filepath.Join(dir, "dst-base"),
		dstTarget: filepath.Join(dir, "dst-target"),
	}
	for _, root := range []string{tr.srcBase, tr.dstBase} {
		put(t, root, "a.txt", "hello")
		put(t, root, "gone.txt", "old stuff")
	}
	put(t, tr.srcTarget, "sub/b.txt", "hello")
	put(t, tr.srcTarget, "new.txt", "a brand new file")
	require.NoError(t, os.MkdirAll(tr.dstTarget, 0o755))
	return tr
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"unknown mode", []string{"copy", "a", "b", "c", "d"}},
		{"too few paths", []string{"dry-run", "a", "b", "c"}},
		{"too many paths", []string{"apply", "a", "b", "c", "d", "e"}},
		{"unknown flag", []string{"dry-run", "--bogus", "a", "b", "c", "d"}},
		{"bad verify mode", []string{"dry-run", "--verify", "sha1", "a", "b", "c", "d"}},
		{"bad exclude pattern", []string{"dry-run", "--exclude", "/", "a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stdout, "Replay likely moves as reflink copies")
		})
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "reflink-diff dev\n", stdout)
}

func TestDryRunPrintsArrowLines(t *testing.T) {
	tr := newTrees(t)

	code, stdout, stderr := runCLI(t, tr.args("dry-run")...)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "a.txt -> sub/b.txt\n", stdout)
	assert.Contains(t, stderr, "done ✓")
	assert.Contains(t, stderr, "planned 1")

	_, err := os.Stat(filepath.Join(tr.dstTarget, "sub", "b.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDryRunQuiet(t *testing.T) {
	tr := newTrees(t)

	code, stdout, stderr := runCLI(t, tr.args("dry-run", "-q")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "a.txt -> sub/b.txt\n", stdout)
	assert.Empty(t, stderr)
}

func TestChangesListing(t *testing.T) {
	tr := newTrees(t)

	code, stdout, _ := runCLI(t, tr.args("dry-run", "--changes", "-q")...)
	require.Equal(t, 0, code)
	assert.Equal(t, `C a.txt -> sub/b.txt
D a.txt
D gone.txt
A new.txt
a.txt -> sub/b.txt
`, stdout)
}

func TestExcludeFlag(t *testing.T) {
	tr := newTrees(t)

	code, stdout, _ := runCLI(t, tr.args("dry-run", "--changes", "-q", "--exclude", "*.txt", "--include", "sub/")...)
	require.Equal(t, 0, code)
	// Directories are never excluded by *.txt; sub/b.txt itself is.
	assert.Empty(t, stdout)
}

func TestNoFallbackFlags(t *testing.T) {
	tr := newTrees(t)
	// Touch the moved file so only the size fallback can find it.
	later := mtime.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(tr.srcTarget, "sub", "b.txt"), later, later))

	code, stdout, _ := runCLI(t, tr.args("dry-run", "-q")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "a.txt -> sub/b.txt\n", stdout)

	code, stdout, _ = runCLI(t, tr.args("dry-run", "-q", "--no-size-fallback")...)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestRunFailureExitsTwo(t *testing.T) {
	tr := newTrees(t)
	tr.srcTarget = filepath.Join(tr.srcTarget, "missing")

	code, stdout, stderr := runCLI(t, tr.args("dry-run")...)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "run failed")
	assert.Contains(t, stderr, "done ✗")
}

func TestApplyClonesOrFailsCleanly(t *testing.T) {
	tr := newTrees(t)

	code, stdout, stderr := runCLI(t, tr.args("apply")...)
	switch code {
	case 0:
		assert.Equal(t, "a.txt -> sub/b.txt\n", stdout)
		data, err := os.ReadFile(filepath.Join(tr.dstTarget, "sub", "b.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	case 2:
		// No reflink support under the temp dir: nothing reported as done.
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "run failed")
	default:
		t.Fatalf("unexpected exit code %d: %s", code, stderr)
	}
}

func TestConfigDefaults(t *testing.T) {
	tr := newTrees(t)
	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
[defaults]
verify = "hash"
max_open = 4
exclude = ["new.txt"]
`), 0o644))

	code, stdout, _ := runCLI(t, tr.args("dry-run", "-q", "--changes", "--config", cfgFile)...)
	require.Equal(t, 0, code)
	assert.NotContains(t, stdout, "A new.txt")
	assert.Contains(t, stdout, "C a.txt -> sub/b.txt")
}

func TestConfigFromXDG(t *testing.T) {
	tr := newTrees(t)
	xdg := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "reflink-diff"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "reflink-diff", "config.toml"), []byte(`
[defaults]
verify = "sha1"
`), 0o644))

	// A bad config default is rejected like a bad flag.
	code, _, _ := runCLI(t, tr.args("dry-run", "-q")...)
	assert.Equal(t, 1, code)

	// An explicit flag wins over the config value.
	code, stdout, _ := runCLI(t, tr.args("dry-run", "-q", "--verify", "bytes")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "a.txt -> sub/b.txt\n", stdout)
}

func TestBrokenConfigExitsTwo(t *testing.T) {
	tr := newTrees(t)
	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[defaults\n"), 0o644))

	code, _, stderr := runCLI(t, tr.args("dry-run", "--config", cfgFile)...)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "load config failed")
}

func TestUsageErrorLeavesLogFileAlone(t *testing.T) {
	tr := newTrees(t)
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.jsonl")
	code, _, _ := runCLI(t, tr.args("dry-run", "--verify", "bogus", "--log", fresh)...)
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, fresh)

	previous := filepath.Join(dir, "previous.jsonl")
	require.NoError(t, os.WriteFile(previous, []byte("earlier run\n"), 0o644))
	cfgFile := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[defaults]\nexclude = [\"/\"]\n"), 0o644))

	code, _, _ = runCLI(t, tr.args("dry-run", "--config", cfgFile, "--log", previous)...)
	assert.Equal(t, 1, code)
	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\n", string(data))
}

func TestFilterFileMatchesBeforeConfigExcludes(t *testing.T) {
	tr := newTrees(t)
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[defaults]\nexclude = [\"new.txt\"]\n"), 0o644))
	rules := filepath.Join(dir, "rules")
	require.NoError(t, os.WriteFile(rules, []byte("+ new.txt\n"), 0o644))

	code, stdout, _ := runCLI(t, tr.args("dry-run", "-q", "--changes", "--config", cfgFile, "--filter", rules)...)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "A new.txt")
}

func TestJSONLogFile(t *testing.T) {
	tr := newTrees(t)
	logFile := filepath.Join(t.TempDir(), "run.jsonl")

	code, _, _ := runCLI(t, tr.args("dry-run", "-q", "--log", logFile)...)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)

	runIDs := map[string]bool{}
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		id, ok := rec["run"].(string)
		require.True(t, ok, "record without run id: %s", line)
		runIDs[id] = true
	}
	assert.Len(t, runIDs, 1)
}

func TestGenDocs(t *testing.T) {
	dir := t.TempDir()
	code, _, stderr := runCLI(t, "gen-docs", "--format", "markdown", "--dir", dir)
	require.Equal(t, 0, code, stderr)

	_, err := os.Stat(filepath.Join(dir, "reflink-diff.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "reflink-diff_dry-run.md"))
	require.NoError(t, err)
}
