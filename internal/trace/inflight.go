package trace

import (
	"slices"
	"sync"
	"time"
)

// Inflight tracks the files being parsed right now. A nil *Inflight
// accepts every call and tracks nothing.
type Inflight struct {
	mu    sync.Mutex
	since map[string]time.Time
}

func NewInflight() *Inflight {
	return &Inflight{since: make(map[string]time.Time)}
}

// Enter marks path as in flight; the returned func removes it.
func (f *Inflight) Enter(path string) (leave func()) {
	if f == nil {
		return func() {}
	}
	f.mu.Lock()
	f.since[path] = time.Now()
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.since, path)
		f.mu.Unlock()
	}
}

// Busy is one file in flight and how long it has been parsing.
type Busy struct {
	Path string
	For  time.Duration
}

// Snapshot lists files in flight, longest-running first.
func (f *Inflight) Snapshot(now time.Time) []Busy {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	out := make([]Busy, 0, len(f.since))
	for path, t := range f.since {
		out = append(out, Busy{Path: path, For: now.Sub(t)})
	}
	f.mu.Unlock()
	slices.SortFunc(out, func(a, b Busy) int {
		if a.For != b.For {
			if a.For > b.For {
				return -1
			}
			return 1
		}
		if a.Path < b.Path {
			return -1
		}
		if a.Path > b.Path {
			return 1
		}
		return 0
	})
	return out
}
