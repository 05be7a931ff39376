package ui

import "github.com/bamsammich/reflink-diff/internal/stats"

// quietPresenter still prints arrow lines, which are the program's output,
// but has no summary.
type quietPresenter struct {
	*plainPresenter
}

func (p *quietPresenter) Summary(stats.Snapshot, bool) string {
	return ""
}
