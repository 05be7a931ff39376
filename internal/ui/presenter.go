package ui

import (
	"io"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// Presenter receives engine events as they happen and renders the run.
type Presenter interface {
	event.Handler
	// Summary returns the final summary line, or "" when none is wanted.
	Summary(snap stats.Snapshot, failed bool) string
}

// Config configures a Presenter.
type Config struct {
	Writer io.Writer
	Theme  Theme
	DryRun bool
	Quiet  bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	p := &plainPresenter{w: cfg.Writer, theme: cfg.Theme, dryRun: cfg.DryRun}
	if cfg.Quiet {
		return &quietPresenter{plainPresenter: p}
	}
	return p
}
