package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/reflink-diff/internal/event"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// writeFile creates dir/rel with content, creating parents, and returns its
// path.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeFileAt is writeFile with a fixed modification time.
func writeFileAt(t *testing.T, dir, rel, content string, mtime time.Time) string {
	t.Helper()
	path := writeFile(t, dir, rel, content)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

// scanCatalogT scans root and indexes it with chain.
func scanCatalogT(t *testing.T, root string, chain Chain) *Catalog {
	t.Helper()
	entries, err := NewScanner(ScannerConfig{Root: root}).Scan()
	require.NoError(t, err)
	return BuildCatalog(root, entries, chain)
}

type recorder struct {
	events []event.Event
}

func (r *recorder) Handle(e event.Event) { r.events = append(r.events, e) }

func (r *recorder) ofType(typ event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
