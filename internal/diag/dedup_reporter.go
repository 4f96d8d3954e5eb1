package diag

import "lunar/internal/source"

// identity — то, по чему две диагностики считаются одной: код, основной
// span и текст. Severity не входит: один и тот же пропуск не должен
// появиться дважды с разной важностью.
type identity struct {
	code Code
	span source.Span
	msg  string
}

func identityOf(code Code, primary source.Span, msg string) identity {
	return identity{code: code, span: primary, msg: msg}
}

// DedupReporter forwards each distinct diagnostic once, using the same
// identity as Bag.Dedup, so an external sink sees exactly the list that
// ends up in the tree.
type DedupReporter struct {
	next       Reporter
	seen       map[identity]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[identity]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil {
		return
	}
	id := identityOf(code, primary, msg)
	if _, dup := r.seen[id]; dup {
		r.suppressed++
		return
	}
	r.seen[id] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

// Suppressed returns how many repeats were dropped.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}
