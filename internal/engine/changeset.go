package engine

import (
	"slices"
	"strings"
)

// Copy is an inferred move: the base file Src is believed to hold the content
// of the target file Dst.
type Copy struct {
	Src string
	Dst string
}

// ChangeSet is the logical difference between a base and a target tree.
//
// Deletes and Copies come from independent passes and overlap on purpose: the
// old path of a moved file is listed in Deletes and is also the Src of a
// Copy. Consumers must replay copies before removing anything.
//
// Copies are sorted by Dst, Adds and Deletes by path. A target path appears
// at most once across Adds and Copies.
type ChangeSet struct {
	Copies  []Copy
	Adds    []string
	Deletes []string
}

// Empty reports whether the trees were identical.
func (cs ChangeSet) Empty() bool {
	return len(cs.Copies) == 0 && len(cs.Adds) == 0 && len(cs.Deletes) == 0
}

func (cs *ChangeSet) sort() {
	slices.SortFunc(cs.Copies, func(a, b Copy) int {
		if c := strings.Compare(a.Dst, b.Dst); c != 0 {
			return c
		}
		return strings.Compare(a.Src, b.Src)
	})
	slices.Sort(cs.Adds)
	slices.Sort(cs.Deletes)
}
