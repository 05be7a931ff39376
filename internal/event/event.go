package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	CandidateRejected
	DiffComplete
	ClonePlanned
	CloneCreated
	CloneFailed
)

var typeNames = [...]string{
	ScanStarted:       "ScanStarted",
	ScanComplete:      "ScanComplete",
	CandidateRejected: "CandidateRejected",
	DiffComplete:      "DiffComplete",
	ClonePlanned:      "ClonePlanned",
	CloneCreated:      "CloneCreated",
	CloneFailed:       "CloneFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Timestamp time.Time
	Error     error
	Src       string // relative source path (clone and candidate events)
	Path      string // relative path, or tree root for scan events
	Size      int64  // file size
	Total     int64  // file count (ScanComplete, DiffComplete)
	TotalSize int64  // byte count (ScanComplete)
	Type      Type
}

// Handler receives events synchronously, in the order they happen.
type Handler interface {
	Handle(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) Handle(e Event) { f(e) }

// Emit stamps e and delivers it to h. A nil h drops the event.
func Emit(h Handler, e Event) {
	if h == nil {
		return
	}
	e.Timestamp = time.Now()
	h.Handle(e)
}
