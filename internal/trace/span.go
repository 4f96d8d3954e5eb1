package trace

import (
	"time"
)

// Span is an open piece of work. The zero Span (returned when tracing is
// off) ignores every call.
type Span struct {
	tracer  Tracer
	ev      Event // шаблон end-события
	started time.Time
	open    bool
}

// Begin opens a span about file (empty for run-wide work) under parent.
func Begin(t Tracer, scope Scope, name, file string, parent uint64) *Span {
	if t == nil || !t.Enabled() {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		open:    true,
		ev: Event{
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			GID:      goroutineID(),
			Name:     name,
			File:     file,
		},
	}
	begin := s.ev
	begin.Kind = KindSpanBegin
	begin.Time = s.started
	if t.Level().Allows(&begin) {
		t.Emit(&begin)
	}
	return s
}

// Count records how much the span produced; the numbers go on the end
// event and decide whether it counts as a failure.
func (s *Span) Count(tokens, diags, errors int) *Span {
	if s == nil || !s.open {
		return s
	}
	s.ev.Tokens, s.ev.Diags, s.ev.Errors = tokens, diags, errors
	return s
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.open {
		return s
	}
	if s.ev.Extra == nil {
		s.ev.Extra = make(map[string]string, 2)
	}
	s.ev.Extra[key] = value
	return s
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil || !s.open {
		return 0
	}
	return s.ev.SpanID
}

// End closes the span once and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !s.open {
		return 0
	}
	s.open = false
	end := s.ev
	end.Kind = KindSpanEnd
	end.Time = time.Now()
	end.Detail = detail
	if s.tracer.Level().Allows(&end) {
		s.tracer.Emit(&end)
	}
	return end.Time.Sub(s.started)
}

// Recover records a parser recovery step at offset in file.
func Recover(t Tracer, kind Recovery, file string, offset uint32, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	ev := Event{
		Time:     time.Now(),
		Kind:     KindRecovery,
		Scope:    ScopeRecovery,
		Name:     kind.String(),
		File:     file,
		Offset:   offset,
		Recovery: kind,
		Detail:   detail,
	}
	if !t.Level().Allows(&ev) {
		return
	}
	ev.GID = goroutineID()
	t.Emit(&ev)
}

// Note records an instant event such as a failed cache write.
func Note(t Tracer, scope Scope, name, file, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	ev := Event{Time: time.Now(), Kind: KindNote, Scope: scope, Name: name, File: file, Detail: detail}
	if t.Level().Allows(&ev) {
		ev.GID = goroutineID()
		t.Emit(&ev)
	}
}
