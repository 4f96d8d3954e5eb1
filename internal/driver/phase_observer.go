package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a driver phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary ("list", "load", "parse").
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted by the driver entry points.
type PhaseObserver func(PhaseEvent)

// FileStatus is the lifecycle of one file in a directory run.
type FileStatus uint8

const (
	FileQueued FileStatus = iota
	FileParsing
	FileDone
	FileFailed
)

func (s FileStatus) String() string {
	switch s {
	case FileQueued:
		return "queued"
	case FileParsing:
		return "parsing"
	case FileDone:
		return "done"
	case FileFailed:
		return "error"
	default:
		return "unknown"
	}
}

// FileEvent сообщает о смене статуса файла. Index — позиция в отсортированном
// списке, Total — размер списка.
type FileEvent struct {
	Path        string
	Index       int
	Total       int
	Status      FileStatus
	Diagnostics int
	HasErrors   bool
	Cached      bool
	Elapsed     time.Duration
}

// EventSink receives file events. It is called from worker goroutines and
// must be safe for concurrent use.
type EventSink func(FileEvent)

func (o Options) emit(ev FileEvent) {
	if o.Events != nil {
		o.Events(ev)
	}
}

// ChannelSink forwards events into ch. The receiver must keep draining ch
// until the driver call returns.
func ChannelSink(ch chan<- FileEvent) EventSink {
	return func(ev FileEvent) {
		if ch != nil {
			ch <- ev
		}
	}
}
