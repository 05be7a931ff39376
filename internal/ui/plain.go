package ui

import (
	"fmt"
	"io"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// plainPresenter prints one arrow line per planned or created clone.
type plainPresenter struct {
	w      io.Writer
	theme  Theme
	dryRun bool
}

func (p *plainPresenter) Handle(ev event.Event) {
	switch ev.Type {
	case event.ClonePlanned, event.CloneCreated:
		fmt.Fprintln(p.w, p.theme.ArrowLine(ev.Src, ev.Path))
	}
}

func (p *plainPresenter) Summary(snap stats.Snapshot, failed bool) string {
	return CompletionSummary(snap, p.dryRun, failed)
}
