package engine

import (
	"fmt"
	"log/slog"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/filter"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// Config describes one run: diff SrcBase against SrcTarget, then replay the
// inferred moves from DstBase onto DstTarget.
type Config struct {
	Events    event.Handler
	Logger    *slog.Logger
	Filter    *filter.Chain
	Clone     CloneFunc // defaults to platform.Reflink
	OnChanges func(ChangeSet)
	SrcBase   string
	SrcTarget string
	DstBase   string
	DstTarget string
	Mode      Mode
	Verify    VerifyMode
	MaxOpen   int

	SizeFallback bool
	NameFallback bool
}

// Result is the outcome of a run.
type Result struct {
	Err     error
	Changes ChangeSet
	Stats   stats.Snapshot
}

// Run executes a run, blocking until complete.
func Run(cfg Config) Result {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	collector := stats.NewCollector()

	chain := ChainFor(cfg.SizeFallback, cfg.NameFallback)
	log.Debug("starting run", "mode", cfg.Mode, "verify", cfg.Verify, "chain", chain, "filtered", !cfg.Filter.Empty())

	base, err := scanCatalog(cfg, cfg.SrcBase, chain, collector, log)
	if err != nil {
		return Result{Err: fmt.Errorf("scan base: %w", err), Stats: collector.Snapshot()}
	}
	// The target is only looked up by exact key.
	target, err := scanCatalog(cfg, cfg.SrcTarget, Chain{ExactMatch}, collector, log)
	if err != nil {
		return Result{Err: fmt.Errorf("scan target: %w", err), Stats: collector.Snapshot()}
	}

	differ := &Differ{
		Verifier: NewVerifier(cfg.Verify),
		Logger:   log,
		Stats:    collector,
		Events:   cfg.Events,
	}
	cs, err := differ.Diff(base, target)
	if err != nil {
		return Result{Err: fmt.Errorf("diff: %w", err), Stats: collector.Snapshot()}
	}
	log.Debug("diff complete", "copies", len(cs.Copies), "adds", len(cs.Adds), "deletes", len(cs.Deletes))
	if hv, ok := differ.Verifier.(*HashVerifier); ok {
		log.Debug("hash verifier", "files_hashed", hv.Reads())
	}

	if cfg.OnChanges != nil {
		cfg.OnChanges(cs)
	}

	err = Replay(ReplayConfig{
		Clone:      cfg.Clone,
		Events:     cfg.Events,
		Logger:     log,
		Stats:      collector,
		BaseRoot:   cfg.DstBase,
		TargetRoot: cfg.DstTarget,
		Mode:       cfg.Mode,
	}, cs.Copies)

	return Result{Err: err, Changes: cs, Stats: collector.Snapshot()}
}

func scanCatalog(
	cfg Config,
	root string,
	chain Chain,
	collector *stats.Collector,
	log *slog.Logger,
) (*Catalog, error) {
	entries, err := NewScanner(ScannerConfig{
		Root:    root,
		Filter:  cfg.Filter,
		Events:  cfg.Events,
		Logger:  log,
		Stats:   collector,
		MaxOpen: cfg.MaxOpen,
	}).Scan()
	if err != nil {
		return nil, err
	}
	cat := BuildCatalog(root, entries, chain)
	log.Debug("catalog built", "path", root, "files", cat.Len(), "chain", cat.Chain())
	return cat, nil
}
