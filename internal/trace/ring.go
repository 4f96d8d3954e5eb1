package trace

import (
	"io"
	"slices"
	"sync"
)

// RingTracer keeps the last N events in memory for a dump at exit.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // позиция следующей записи
	n     int // сколько событий хранится
	level Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.Allows(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = *ev
	t.buf[t.next].Seq = NextSeq()
	t.next = (t.next + 1) % len(t.buf)
	if t.n < len(t.buf) {
		t.n++
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.n)
	start := (t.next - t.n + len(t.buf)) % len(t.buf)
	for i := range t.n {
		out = append(out, t.buf[(start+i)%len(t.buf)])
	}
	return out
}

// FailedFiles lists, sorted, the files with a failed event still in the ring.
func (t *RingTracer) FailedFiles() []string {
	var files []string
	for _, ev := range t.Snapshot() {
		if ev.File != "" && ev.Scope != ScopeRun && ev.Failed() && !slices.Contains(files, ev.File) {
			files = append(files, ev.File)
		}
	}
	slices.Sort(files)
	return files
}

// Dump writes all stored events.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return t.dump(w, format, t.Snapshot())
}

// DumpFailed writes the run-wide events plus every event about a file
// that failed, so a post-mortem shows only what went wrong.
func (t *RingTracer) DumpFailed(w io.Writer, format Format) error {
	failed := t.FailedFiles()
	events := t.Snapshot()
	keep := events[:0]
	for _, ev := range events {
		if ev.Scope == ScopeRun || slices.Contains(failed, ev.File) {
			keep = append(keep, ev)
		}
	}
	return t.dump(w, format, keep)
}

func (t *RingTracer) dump(w io.Writer, format Format, events []Event) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
