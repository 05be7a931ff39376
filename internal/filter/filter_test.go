package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"*.log", "app.log", false, true},
		{"*.log", "sub/debug.log", false, true},
		{"*.log", "app.log.bak", false, false},
		{"*.log", "app.txt", false, false},
		{"**/*.go", "main.go", false, true},
		{"**/*.go", "cmd/tool/main.go", false, true},
		{"**/*.go", "main.txt", false, false},
		{"/root.txt", "root.txt", false, true},
		{"/root.txt", "sub/root.txt", false, false},
		{"docs/*.md", "docs/a.md", false, true},
		{"docs/*.md", "x/docs/a.md", false, false},
		{"docs/*.md", "docs/sub/a.md", false, false},
		{"file?.txt", "file1.txt", false, true},
		{"file?.txt", "file12.txt", false, false},
		{"[ab].txt", "a.txt", false, true},
		{"[!ab].txt", "a.txt", false, false},
		{"[!ab].txt", "c.txt", false, true},
		{"build/", "build", true, true},
		{"build/", "build", false, false},
		{"a+b(1).txt", "a+b(1).txt", false, true},
		{"a.txt", "aXtxt", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.path, func(t *testing.T) {
			r, err := NewRule(tt.pattern, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Matches(tt.path, tt.isDir))
		})
	}
}

func TestNewRuleEmpty(t *testing.T) {
	_, err := NewRule("", false)
	require.Error(t, err)

	_, err = NewRule("/", false)
	require.Error(t, err)
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("+ *.go")
	require.NoError(t, err)
	assert.True(t, r.Include)
	assert.Equal(t, "*.go", r.Pattern)
	assert.Equal(t, "+ *.go", r.String())

	r, err = ParseRule("- *.log")
	require.NoError(t, err)
	assert.False(t, r.Include)
	assert.Equal(t, "- *.log", r.String())

	r, err = ParseRule("bare.txt")
	require.NoError(t, err)
	assert.False(t, r.Include)
	assert.Equal(t, "bare.txt", r.Pattern)
}

func TestNilAndEmptyChain(t *testing.T) {
	var nilChain *Chain
	assert.True(t, nilChain.Empty())
	assert.False(t, nilChain.Excluded("any/file.txt", false))

	c := NewChain()
	assert.True(t, c.Empty())
	assert.False(t, c.Excluded("any/file.txt", false))
	assert.False(t, c.Excluded("any/dir", true))
}

func TestFirstMatchWins(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("important.log"))
	require.NoError(t, c.AddExclude("*.log"))

	assert.False(t, c.Excluded("important.log", false))
	assert.True(t, c.Excluded("debug.log", false))
	assert.False(t, c.Excluded("notes.txt", false))

	// Reversed order: the exclude shadows the include.
	c = NewChain()
	require.NoError(t, c.AddExclude("*.log"))
	require.NoError(t, c.AddInclude("important.log"))
	assert.True(t, c.Excluded("important.log", false))
	assert.Len(t, c.Rules(), 2)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	rulesFile := filepath.Join(dir, "filter.rules")

	content := `# comment
+ *.go
- *.log

- build/
noprefix.txt
`
	require.NoError(t, os.WriteFile(rulesFile, []byte(content), 0o644))

	c := NewChain()
	require.NoError(t, c.LoadFile(rulesFile))

	require.Len(t, c.Rules(), 4)
	assert.True(t, c.Rules()[0].Include)
	assert.False(t, c.Rules()[3].Include)

	assert.False(t, c.Excluded("main.go", false))
	assert.True(t, c.Excluded("app.log", false))
	assert.True(t, c.Excluded("build", true))
	assert.True(t, c.Excluded("noprefix.txt", false))
}

func TestLoadFileMissing(t *testing.T) {
	c := NewChain()
	err := c.LoadFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open filter file")
}

func TestLoadFileBadLine(t *testing.T) {
	dir := t.TempDir()
	rulesFile := filepath.Join(dir, "filter.rules")
	require.NoError(t, os.WriteFile(rulesFile, []byte("*.txt\n- /\n"), 0o644))

	err := NewChain().LoadFile(rulesFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
