package driver

import (
	"time"
)

// phase opens a named phase on the timer and the observer; the returned
// function closes it with an optional note.
func (o Options) phase(name string) func(note string) {
	idx := o.Timer.Begin(name)
	started := time.Now()
	if o.Phases != nil {
		o.Phases(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return func(note string) {
		o.Timer.End(idx, note)
		if o.Phases != nil {
			o.Phases(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
		}
	}
}
