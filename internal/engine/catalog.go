package engine

import (
	"cmp"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FileKey is the metadata identity of a file. Two files with equal keys are
// the strongest move signal the differ has short of reading them.
type FileKey struct {
	Size    int64
	ModTime int64 // Unix nanoseconds
}

// KeyOf builds the FileKey for info.
func KeyOf(info fs.FileInfo) FileKey {
	return FileKey{Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

// Compare orders keys by size, then modification time.
func (k FileKey) Compare(o FileKey) int {
	if c := cmp.Compare(k.Size, o.Size); c != 0 {
		return c
	}
	return cmp.Compare(k.ModTime, o.ModTime)
}

// Entry is one regular file found by a scan, with its path relative to the
// scanned root.
type Entry struct {
	Path string
	Key  FileKey
}

func byPath(a, b Entry) int {
	return strings.Compare(a.Path, b.Path)
}

// Catalog indexes the entries of one scanned tree. It is immutable once
// built, apart from Drain.
type Catalog struct {
	exact  map[FileKey][]Entry
	bySize map[int64][]Entry
	byName map[string][]Entry
	root   string
	chain  Chain
	n      int
}

// BuildCatalog indexes entries found under root. The exact index is always
// built; the size and name indices only when chain uses them. Every bucket is
// sorted by path.
func BuildCatalog(root string, entries []Entry, chain Chain) *Catalog {
	c := &Catalog{
		root:  root,
		chain: chain,
		exact: make(map[FileKey][]Entry),
		n:     len(entries),
	}
	if chain.Has(SizeMatch) {
		c.bySize = make(map[int64][]Entry)
	}
	if chain.Has(NameMatch) {
		c.byName = make(map[string][]Entry)
	}

	for _, e := range entries {
		c.exact[e.Key] = append(c.exact[e.Key], e)
		if c.bySize != nil {
			c.bySize[e.Key.Size] = append(c.bySize[e.Key.Size], e)
		}
		if c.byName != nil {
			name := filepath.Base(e.Path)
			c.byName[name] = append(c.byName[name], e)
		}
	}

	sortBuckets(c.exact)
	sortBuckets(c.bySize)
	sortBuckets(c.byName)
	return c
}

func sortBuckets[K comparable](index map[K][]Entry) {
	for _, bucket := range index {
		slices.SortFunc(bucket, byPath)
	}
}

// Root returns the directory the catalog was scanned from.
func (c *Catalog) Root() string { return c.root }

// Abs joins rel onto the catalog root.
func (c *Catalog) Abs(rel string) string { return filepath.Join(c.root, rel) }

// Len returns the number of entries held.
func (c *Catalog) Len() int { return c.n }

// Chain returns the lookup strategies Find evaluates.
func (c *Catalog) Chain() Chain { return c.chain }

// Find runs the catalog's strategy chain for a file at path with key and
// returns the first non-empty bucket along with the strategy that produced
// it. It returns (0, nil) when no strategy finds anything.
func (c *Catalog) Find(path string, key FileKey) (Strategy, []Entry) {
	for _, s := range c.chain {
		if hits := s.Lookup(c, path, key); len(hits) > 0 {
			return s, hits
		}
	}
	return 0, nil
}

// Contains reports whether the exact bucket for key holds path.
func (c *Catalog) Contains(key FileKey, path string) bool {
	_, found := slices.BinarySearchFunc(c.exact[key], path, func(e Entry, p string) int {
		return strings.Compare(e.Path, p)
	})
	return found
}

// Entries returns every entry, sorted by path.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, c.n)
	for _, bucket := range c.exact {
		out = append(out, bucket...)
	}
	slices.SortFunc(out, byPath)
	return out
}

// Drain hands over every entry, sorted by path, and leaves the catalog
// empty. Root and Abs keep working.
func (c *Catalog) Drain() []Entry {
	out := c.Entries()
	clear(c.exact)
	clear(c.bySize)
	clear(c.byName)
	c.n = 0
	return out
}
