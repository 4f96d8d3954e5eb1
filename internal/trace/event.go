package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindRecovery  // parser recovery step
	KindNote      // instant driver event, e.g. a cache write failure
	KindHeartbeat // periodic report of files still in flight
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindRecovery:  "recovery",
	KindNote:      "note",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeRun covers one CLI command: parse, parse-dir, tokenize.
	ScopeRun Scope = iota + 1
	// ScopeFile is work on a single file: the driver's per-file span and
	// the parser's lex+parse span.
	ScopeFile
	// ScopeRecovery marks parser recovery steps inside a file.
	ScopeRecovery
)

var scopeNames = [...]string{
	ScopeRun:      "run",
	ScopeFile:     "file",
	ScopeRecovery: "recovery",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Recovery says what the parser did to get past a syntax error.
type Recovery uint8

const (
	RecoverNone      Recovery = iota
	RecoverMissing            // zero-width token synthesized
	RecoverResync             // tokens skipped into an Error node
	RecoverTooDeep            // subtree cut at the nesting limit
	RecoverCancelled          // context cancelled mid-file
)

var recoveryNames = [...]string{
	RecoverNone:      "none",
	RecoverMissing:   "missing",
	RecoverResync:    "resync",
	RecoverTooDeep:   "too-deep",
	RecoverCancelled: "cancelled",
}

func (r Recovery) String() string {
	if int(r) < len(recoveryNames) {
		return recoveryNames[r]
	}
	return "unknown"
}

// Fatal reports whether part of the input was left unparsed.
func (r Recovery) Fatal() bool {
	return r == RecoverTooDeep || r == RecoverCancelled
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	GID      uint64
	Name     string // "parse-dir", "lex+parse", recovery name...
	File     string // path the event is about; empty for run-wide events
	Offset   uint32 // byte offset of a recovery step
	Recovery Recovery
	Tokens   int // tokens consumed, on span ends
	Diags    int // diagnostics produced, on span ends
	Errors   int // of which errors or fatal
	Detail   string
	Extra    map[string]string
}

// Failed reports whether the event closes work that produced errors or
// records a recovery that dropped input.
func (ev *Event) Failed() bool {
	switch ev.Kind {
	case KindSpanEnd:
		return ev.Errors > 0
	case KindRecovery:
		return ev.Recovery.Fatal()
	}
	return false
}

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// goroutineID читает номер горутины из заголовка runtime.Stack:
// "goroutine 123 [running]:". Нужен только чтобы развести параллельные
// файлы в выводе.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if end := bytes.IndexByte(line, ' '); end > 0 {
		if id, err := strconv.ParseUint(string(line[:end]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}
