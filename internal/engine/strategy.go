package engine

import (
	"path/filepath"
	"slices"
	"strings"
)

// Strategy is one way of finding move candidates for a target file in a
// base catalog.
type Strategy int

const (
	// ExactMatch looks up files with the same size and modification time.
	ExactMatch Strategy = iota + 1
	// SizeMatch looks up files with the same size.
	SizeMatch
	// NameMatch looks up files with the same base name, whatever their size.
	NameMatch
)

var strategyNames = [...]string{
	ExactMatch: "exact",
	SizeMatch:  "size",
	NameMatch:  "name",
}

func (s Strategy) String() string {
	if s > 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "none"
}

// Lookup returns the candidates c holds for a file at path with key. A
// catalog built without the strategy's index yields nothing.
func (s Strategy) Lookup(c *Catalog, path string, key FileKey) []Entry {
	switch s {
	case ExactMatch:
		return c.exact[key]
	case SizeMatch:
		return c.bySize[key.Size]
	case NameMatch:
		return c.byName[filepath.Base(path)]
	default:
		return nil
	}
}

// Chain is an ordered list of strategies; the first one to find candidates
// wins.
type Chain []Strategy

// DefaultChain tries exact metadata, then size, then name.
var DefaultChain = Chain{ExactMatch, SizeMatch, NameMatch}

// ChainFor returns DefaultChain with the size and name fallbacks toggled.
func ChainFor(sizeFallback, nameFallback bool) Chain {
	ch := Chain{ExactMatch}
	if sizeFallback {
		ch = append(ch, SizeMatch)
	}
	if nameFallback {
		ch = append(ch, NameMatch)
	}
	return ch
}

// Has reports whether s is part of the chain.
func (ch Chain) Has(s Strategy) bool {
	return slices.Contains(ch, s)
}

func (ch Chain) String() string {
	names := make([]string, len(ch))
	for i, s := range ch {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}
