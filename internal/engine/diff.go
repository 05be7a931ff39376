package engine

import (
	"fmt"
	"log/slog"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// Differ infers moves between a base and a target catalog.
type Differ struct {
	// Verifier confirms candidates. A nil Verifier accepts the first
	// candidate on metadata alone.
	Verifier Verifier
	Logger   *slog.Logger
	Stats    *stats.Collector
	Events   event.Handler
}

// Diff computes the change set turning base into target. The target
// catalog is drained. A verifier I/O error aborts the diff.
func (d *Differ) Diff(base, target *Catalog) (ChangeSet, error) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	st := d.Stats
	if st == nil {
		st = stats.NewCollector()
	}

	var cs ChangeSet

	for _, e := range base.Entries() {
		if !target.Contains(e.Key, e.Path) {
			cs.Deletes = append(cs.Deletes, e.Path)
		}
	}

	for _, e := range target.Drain() {
		if base.Contains(e.Key, e.Path) {
			st.AddUnchanged(1)
			continue
		}

		strategy, candidates := base.Find(e.Path, e.Key)
		src, ok, err := d.pick(log, st, base, target, e, candidates)
		if err != nil {
			return ChangeSet{}, err
		}
		if !ok {
			cs.Adds = append(cs.Adds, e.Path)
			continue
		}

		log.Debug("inferred move", "src", src.Path, "dst", e.Path, "strategy", strategy)
		cs.Copies = append(cs.Copies, Copy{Src: src.Path, Dst: e.Path})
		switch strategy {
		case ExactMatch:
			st.AddExactMatches(1)
		case SizeMatch:
			st.AddSizeMatches(1)
		case NameMatch:
			st.AddNameMatches(1)
		}
	}

	cs.sort()
	st.AddCopies(int64(len(cs.Copies)))
	st.AddAdds(int64(len(cs.Adds)))
	st.AddDeletes(int64(len(cs.Deletes)))

	event.Emit(d.Events, event.Event{
		Type:  event.DiffComplete,
		Total: int64(len(cs.Copies) + len(cs.Adds) + len(cs.Deletes)),
	})
	return cs, nil
}

// pick returns the first candidate confirmed as holding e's content.
func (d *Differ) pick(
	log *slog.Logger,
	st *stats.Collector,
	base, target *Catalog,
	e Entry,
	candidates []Entry,
) (Entry, bool, error) {
	for _, cand := range candidates {
		if d.Verifier == nil {
			return cand, true, nil
		}
		if cand.Key.Size != e.Key.Size {
			d.reject(log, st, cand, e, "size differs")
			continue
		}

		same, err := d.Verifier.Same(base.Abs(cand.Path), target.Abs(e.Path))
		if err != nil {
			return Entry{}, false, fmt.Errorf("verify %s against %s: %w", e.Path, cand.Path, err)
		}
		st.AddBytesCompared(e.Key.Size)
		if same {
			return cand, true, nil
		}
		d.reject(log, st, cand, e, "content differs")
	}
	return Entry{}, false, nil
}

func (d *Differ) reject(log *slog.Logger, st *stats.Collector, cand, e Entry, reason string) {
	st.AddCandidatesRejected(1)
	log.Debug("rejected candidate", "src", cand.Path, "dst", e.Path, "reason", reason)
	event.Emit(d.Events, event.Event{
		Type: event.CandidateRejected,
		Src:  cand.Path,
		Path: e.Path,
		Size: e.Key.Size,
	})
}
