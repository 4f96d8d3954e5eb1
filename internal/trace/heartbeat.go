package trace

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Heartbeat periodically reports which files are still being parsed, so
// a file that hangs the parser shows up by name.
type Heartbeat struct {
	tracer   Tracer
	files    *Inflight
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts beating every interval. It returns nil (a valid
// no-op) when tracing is off or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration, files *Inflight) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   t,
		files:    files,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case now := <-ticker.C:
			ev := h.beat(n, now)
			h.tracer.Emit(&ev)
		case <-h.stop:
			return
		}
	}
}

// beat builds heartbeat number n. File is the longest-running file.
func (h *Heartbeat) beat(n int, now time.Time) Event {
	busy := h.files.Snapshot(now)
	ev := Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeRun,
		Name:   "heartbeat",
		Detail: "#" + strconv.Itoa(n) + " idle",
		Extra:  map[string]string{"inflight": strconv.Itoa(len(busy))},
	}
	if len(busy) > 0 {
		ev.File = busy[0].Path
		parts := make([]string, len(busy))
		for i, b := range busy {
			parts[i] = b.Path + " (" + b.For.Round(time.Millisecond).String() + ")"
		}
		ev.Detail = "#" + strconv.Itoa(n) + " parsing " + strings.Join(parts, ", ")
	}
	return ev
}

// Stop ends the heartbeat and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
