package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes every event to w as soon as it arrives. A write
// error never reaches the parser: it is kept and returned from Close.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	err    error
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.Allows(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	ev.Seq = NextSeq()
	if _, err := t.w.Write(FormatEvent(ev, t.format)); err != nil {
		t.err = err
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil && t.err == nil {
			t.err = err
		}
	}
	return t.err
}

// Close flushes and closes w unless it is a standard stream.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.w == os.Stderr || t.w == os.Stdout {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
