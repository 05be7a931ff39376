package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/reflink-diff/internal/event"
	"github.com/bamsammich/reflink-diff/internal/filter"
	"github.com/bamsammich/reflink-diff/internal/stats"
)

// DefaultMaxOpen is the default cap on directory handles a scan holds open.
const DefaultMaxOpen = 128

const readDirBatch = 64

// ScannerConfig controls scanner behavior.
type ScannerConfig struct {
	Root    string
	Filter  *filter.Chain
	Events  event.Handler
	Logger  *slog.Logger
	Stats   *stats.Collector
	MaxOpen int
}

// Scanner walks one directory tree depth-first and records its regular files.
// It never leaves the root's filesystem and never follows symlinks below the
// root. A symlinked root is resolved.
type Scanner struct {
	cfg   ScannerConfig
	log   *slog.Logger
	devOf func(fs.FileInfo) uint64
	stack []*dirFrame
	dev   uint64
	open  int
	peak  int
}

type dirFrame struct {
	f       *os.File // nil once the frame has been spilled
	path    string
	pending []fs.DirEntry
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.MaxOpen <= 0 {
		cfg.MaxOpen = DefaultMaxOpen
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	cfg.Root = filepath.Clean(cfg.Root)

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{cfg: cfg, log: log.With("root", cfg.Root), devOf: deviceID}
}

// Scan walks the tree. Any stat, open or readdir failure aborts the walk
// and no entries are returned.
func (s *Scanner) Scan() ([]Entry, error) {
	event.Emit(s.cfg.Events, event.Event{Type: event.ScanStarted, Path: s.cfg.Root})
	defer s.closeAll()

	info, err := os.Stat(s.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", s.cfg.Root)
	}
	s.dev = s.devOf(info)

	if err := s.push(s.cfg.Root); err != nil {
		return nil, err
	}

	var (
		entries []Entry
		bytes   int64
	)
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		de, err := s.next(top)
		if err != nil {
			return nil, err
		}
		if de == nil {
			s.pop()
			continue
		}

		full := filepath.Join(top.path, de.Name())
		info, err := os.Lstat(full)
		if err != nil {
			return nil, fmt.Errorf("lstat %s: %w", full, err)
		}
		rel := s.rel(full)

		switch {
		case info.IsDir():
			if s.cfg.Filter.Excluded(rel, true) {
				s.log.Debug("excluded directory", "path", rel)
				continue
			}
			if dev := s.devOf(info); dev != s.dev {
				s.log.Debug("not crossing filesystem boundary", "path", rel, "dev", formatDev(dev))
				continue
			}
			if err := s.push(full); err != nil {
				return nil, err
			}
		case info.Mode().IsRegular():
			if s.cfg.Filter.Excluded(rel, false) {
				continue
			}
			entries = append(entries, Entry{Path: rel, Key: KeyOf(info)})
			bytes += info.Size()
			s.cfg.Stats.AddFilesScanned(1)
			s.cfg.Stats.AddBytesScanned(info.Size())
		}
	}

	s.log.Debug("scan complete", "files", len(entries), "bytes", bytes, "peak_open", s.peak)
	event.Emit(s.cfg.Events, event.Event{
		Type:      event.ScanComplete,
		Path:      s.cfg.Root,
		Total:     int64(len(entries)),
		TotalSize: bytes,
	})
	return entries, nil
}

// push opens dir and makes it the current frame. When the open-handle cap
// is reached the oldest open frame is spilled first.
func (s *Scanner) push(dir string) error {
	if s.open >= s.cfg.MaxOpen {
		if err := s.spillOldest(); err != nil {
			return err
		}
	}
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	s.stack = append(s.stack, &dirFrame{f: f, path: dir})
	s.open++
	s.peak = max(s.peak, s.open)
	return nil
}

// spillOldest reads the rest of the shallowest open directory into memory
// and closes its handle.
func (s *Scanner) spillOldest() error {
	for _, fr := range s.stack {
		if fr.f == nil {
			continue
		}
		rest, err := fr.f.ReadDir(-1)
		if err != nil {
			return fmt.Errorf("readdir %s: %w", fr.path, err)
		}
		fr.pending = append(fr.pending, rest...)
		_ = fr.f.Close()
		fr.f = nil
		s.open--
		return nil
	}
	return nil
}

// next returns the frame's next directory entry, or nil when it is
// exhausted.
func (s *Scanner) next(fr *dirFrame) (fs.DirEntry, error) {
	if len(fr.pending) == 0 && fr.f != nil {
		batch, err := fr.f.ReadDir(readDirBatch)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("readdir %s: %w", fr.path, err)
		}
		fr.pending = batch
	}
	if len(fr.pending) == 0 {
		return nil, nil
	}
	de := fr.pending[0]
	fr.pending = fr.pending[1:]
	return de, nil
}

func (s *Scanner) pop() {
	fr := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if fr.f != nil {
		_ = fr.f.Close()
		s.open--
	}
}

func (s *Scanner) closeAll() {
	for len(s.stack) > 0 {
		s.pop()
	}
}

func (s *Scanner) rel(full string) string {
	rel, err := filepath.Rel(s.cfg.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		panic(fmt.Sprintf("scanner: %s escapes root %s", full, s.cfg.Root))
	}
	return rel
}
