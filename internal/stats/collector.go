package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks scan, diff and clone statistics using atomic counters.
// The pipeline is single-threaded; atomics keep the collector safe to read
// from a logging hook or a test while a run is in progress.
type Collector struct {
	startTime          time.Time
	filesScanned       atomic.Int64
	bytesScanned       atomic.Int64
	unchanged          atomic.Int64
	copies             atomic.Int64
	adds               atomic.Int64
	deletes            atomic.Int64
	exactMatches       atomic.Int64
	sizeMatches        atomic.Int64
	nameMatches        atomic.Int64
	candidatesRejected atomic.Int64
	bytesCompared      atomic.Int64
	clonesPlanned      atomic.Int64
	clonesCreated      atomic.Int64
	bytesCloned        atomic.Int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesScanned       int64
	BytesScanned       int64
	Unchanged          int64
	Copies             int64
	Adds               int64
	Deletes            int64
	ExactMatches       int64
	SizeMatches        int64
	NameMatches        int64
	CandidatesRejected int64
	BytesCompared      int64
	ClonesPlanned      int64
	ClonesCreated      int64
	BytesCloned        int64
	Elapsed            time.Duration
}

func (c *Collector) AddFilesScanned(n int64)       { c.filesScanned.Add(n) }
func (c *Collector) AddBytesScanned(n int64)       { c.bytesScanned.Add(n) }
func (c *Collector) AddUnchanged(n int64)          { c.unchanged.Add(n) }
func (c *Collector) AddCopies(n int64)             { c.copies.Add(n) }
func (c *Collector) AddAdds(n int64)               { c.adds.Add(n) }
func (c *Collector) AddDeletes(n int64)            { c.deletes.Add(n) }
func (c *Collector) AddExactMatches(n int64)       { c.exactMatches.Add(n) }
func (c *Collector) AddSizeMatches(n int64)        { c.sizeMatches.Add(n) }
func (c *Collector) AddNameMatches(n int64)        { c.nameMatches.Add(n) }
func (c *Collector) AddCandidatesRejected(n int64) { c.candidatesRejected.Add(n) }
func (c *Collector) AddBytesCompared(n int64)      { c.bytesCompared.Add(n) }
func (c *Collector) AddClonesPlanned(n int64)      { c.clonesPlanned.Add(n) }
func (c *Collector) AddClonesCreated(n int64)      { c.clonesCreated.Add(n) }
func (c *Collector) AddBytesCloned(n int64)        { c.bytesCloned.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesScanned:       c.filesScanned.Load(),
		BytesScanned:       c.bytesScanned.Load(),
		Unchanged:          c.unchanged.Load(),
		Copies:             c.copies.Load(),
		Adds:               c.adds.Load(),
		Deletes:            c.deletes.Load(),
		ExactMatches:       c.exactMatches.Load(),
		SizeMatches:        c.sizeMatches.Load(),
		NameMatches:        c.nameMatches.Load(),
		CandidatesRejected: c.candidatesRejected.Load(),
		BytesCompared:      c.bytesCompared.Load(),
		ClonesPlanned:      c.clonesPlanned.Load(),
		ClonesCreated:      c.clonesCreated.Load(),
		BytesCloned:        c.bytesCloned.Load(),
		Elapsed:            c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"scanned=%d unchanged=%d copies=%d adds=%d deletes=%d rejected=%d clones=%d cloned_bytes=%d",
		s.FilesScanned, s.Unchanged, s.Copies, s.Adds, s.Deletes,
		s.CandidatesRejected, s.ClonesCreated, s.BytesCloned,
	)
}
