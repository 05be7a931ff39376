package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/platform"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// Mode selects whether copies are cloned or only reported.
type Mode int

const (
	DryRun Mode = iota
	Apply
)

func (m Mode) String() string {
	switch m {
	case DryRun:
		return "dry-run"
	case Apply:
		return "apply"
	default:
		return "unknown"
	}
}

// ParseMode parses "apply" or "dry-run".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "dry-run":
		return DryRun, nil
	case "apply":
		return Apply, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// CloneFunc clones src onto dst.
type CloneFunc func(src, dst string) (platform.CloneMethod, error)

// ReplayConfig describes where inferred copies are replayed.
type ReplayConfig struct {
	Clone      CloneFunc // defaults to platform.Reflink
	Events     event.Handler
	Logger     *slog.Logger
	Stats      *stats.Collector
	BaseRoot   string
	TargetRoot string
	Mode       Mode
}

// Replay runs copies in order, each cloning BaseRoot/Src onto
// TargetRoot/Dst. The first failure stops the replay; clones already made
// are left in place.
func Replay(cfg ReplayConfig, copies []Copy) error {
	clone := cfg.Clone
	if clone == nil {
		clone = platform.Reflink
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	st := cfg.Stats
	if st == nil {
		st = stats.NewCollector()
	}

	for _, c := range copies {
		src := filepath.Join(cfg.BaseRoot, c.Src)
		dst := filepath.Join(cfg.TargetRoot, c.Dst)

		if cfg.Mode == DryRun {
			st.AddClonesPlanned(1)
			event.Emit(cfg.Events, event.Event{Type: event.ClonePlanned, Src: c.Src, Path: c.Dst})
			continue
		}

		size, method, err := cloneOne(clone, src, dst)
		if err != nil {
			event.Emit(cfg.Events, event.Event{Type: event.CloneFailed, Src: c.Src, Path: c.Dst, Error: err})
			return err
		}

		st.AddClonesCreated(1)
		st.AddBytesCloned(size)
		log.Debug("cloned", "src", src, "dst", dst, "method", method, "size", size)
		event.Emit(cfg.Events, event.Event{Type: event.CloneCreated, Src: c.Src, Path: c.Dst, Size: size})
	}
	return nil
}

func cloneOne(clone CloneFunc, src, dst string) (int64, platform.CloneMethod, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, platform.NoClone, fmt.Errorf("stat %s: %w", src, err)
	}
	method, err := clone(src, dst)
	if err != nil {
		return 0, method, fmt.Errorf("clone %s: %w", dst, err)
	}
	return info.Size(), method, nil
}
